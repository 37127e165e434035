package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/izdhan/examcenter/internal/apperr"
	"github.com/izdhan/examcenter/internal/dto"
	"github.com/izdhan/examcenter/internal/middleware"
	"github.com/izdhan/examcenter/internal/service"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	examSvc    service.ExamService
	attemptSvc service.AttemptService
	rankingSvc service.RankingService
}

func NewExamController(examSvc service.ExamService, attemptSvc service.AttemptService, rankingSvc service.RankingService) *ExamController {
	return &ExamController{examSvc: examSvc, attemptSvc: attemptSvc, rankingSvc: rankingSvc}
}

func respondError(ctx *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Request failed")
	}
	ctx.JSON(status, dto.ErrorResponse{Code: string(code), Message: apperr.MessageOf(err)})
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// ListExams godoc
// @Summary List published exams
// @Tags Exams
// @Produce json
// @Success 200 {array} dto.ExamSummaryResponse
// @Router /exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	exams, err := c.examSvc.ListPublished()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// StartExam godoc
// @Summary Start an attempt on a published exam
// @Tags Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 201 {object} dto.StartExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /exams/{exam_id}/start [post]
func (c *ExamController) StartExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	studentID, _ := middleware.Identity(ctx)
	resp, err := c.attemptSvc.StartExam(examID, studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// SubmitExam godoc
// @Summary Submit answers for an in-progress attempt
// @Tags Exams
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param submission body dto.SubmitExamRequest true "Answers"
// @Success 200 {object} dto.SubmitExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id}/submit [post]
func (c *ExamController) SubmitExam(ctx *gin.Context) {
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}
	var req dto.SubmitExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	studentID, _ := middleware.Identity(ctx)
	resp, err := c.attemptSvc.SubmitExam(attemptID, req, studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAttempt godoc
// @Summary Get one attempt with its answers
// @Tags Exams
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id} [get]
func (c *ExamController) GetAttempt(ctx *gin.Context) {
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}
	userID, role := middleware.Identity(ctx)
	attempt, err := c.attemptSvc.GetAttempt(attemptID, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// MyAttempts godoc
// @Summary List the caller's attempts across exams
// @Tags Exams
// @Produce json
// @Success 200 {array} dto.AttemptResponse
// @Router /attempts [get]
func (c *ExamController) MyAttempts(ctx *gin.Context) {
	studentID, _ := middleware.Identity(ctx)
	attempts, err := c.attemptSvc.GetStudentAttempts(studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// MyRanking godoc
// @Summary Get the caller's ranking on an exam
// @Tags Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.RankingResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /exams/{exam_id}/my-ranking [get]
func (c *ExamController) MyRanking(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	studentID, _ := middleware.Identity(ctx)
	ranking, err := c.rankingSvc.GetStudentRanking(examID, studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	var resp dto.RankingResponse
	copier.Copy(&resp, ranking)
	ctx.JSON(http.StatusOK, resp)
}
