package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/izdhan/examcenter/internal/dto"
	"github.com/izdhan/examcenter/internal/middleware"
	"github.com/izdhan/examcenter/internal/service"
	"github.com/jinzhu/copier"
)

type GradingController struct {
	gradingSvc service.GradingService
	rankingSvc service.RankingService
}

func NewGradingController(gradingSvc service.GradingService, rankingSvc service.RankingService) *GradingController {
	return &GradingController{gradingSvc: gradingSvc, rankingSvc: rankingSvc}
}

// ListSubmissions godoc
// @Summary (Admin/Teacher) List an exam's attempts for grading
// @Tags Admin - Grading
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {array} dto.AttemptResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/attempts [get]
func (c *GradingController) ListSubmissions(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	userID, role := middleware.Identity(ctx)
	attempts, err := c.gradingSvc.ListSubmissions(examID, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// GradeAnswer godoc
// @Summary (Admin/Teacher) Assign marks to a manually graded answer
// @Tags Admin - Grading
// @Accept json
// @Produce json
// @Param answer_id path int true "Answer ID"
// @Param grade body dto.GradeAnswerRequest true "Marks and comments"
// @Success 200 {object} dto.GradeAnswerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/answers/{answer_id}/grade [post]
func (c *GradingController) GradeAnswer(ctx *gin.Context) {
	answerID, ok := pathID(ctx, "answer_id")
	if !ok {
		return
	}
	var req dto.GradeAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	graded, err := c.gradingSvc.GradeAnswer(answerID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, graded)
}

// AutoAssignMarks godoc
// @Summary (Admin/Teacher) Assign one mark value to a question's answers in bulk
// @Tags Admin - Grading
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param assignment body dto.AutoAssignMarksRequest true "Question and marks"
// @Success 200 {object} dto.AutoAssignMarksResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/auto-assign-marks [post]
func (c *GradingController) AutoAssignMarks(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.AutoAssignMarksRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	result, err := c.gradingSvc.AutoAssignMarks(examID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// PublishResults godoc
// @Summary (Admin/Teacher) Publish exam results to students
// @Tags Admin - Grading
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/publish-results [post]
func (c *GradingController) PublishResults(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	userID, role := middleware.Identity(ctx)
	if err := c.gradingSvc.PublishResults(examID, userID, role); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Results published"})
}

// GetRankings godoc
// @Summary (Admin/Teacher) View the full ranking table for an exam
// @Tags Admin - Grading
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {array} dto.RankingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/rankings [get]
func (c *GradingController) GetRankings(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	rankings, err := c.rankingSvc.GetRankingsForExam(examID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	var resp []dto.RankingResponse
	copier.Copy(&resp, &rankings)
	ctx.JSON(http.StatusOK, resp)
}

// RecalculateRankings godoc
// @Summary (Admin) Trigger a ranking recalculation for an exam
// @Tags Admin - Grading
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/rankings/recalculate [post]
func (c *GradingController) RecalculateRankings(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	if err := c.rankingSvc.CalculateRankingsForExam(examID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Rankings recalculated"})
}
