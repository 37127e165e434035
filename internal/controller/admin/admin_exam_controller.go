package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/izdhan/examcenter/internal/apperr"
	"github.com/izdhan/examcenter/internal/dto"
	"github.com/izdhan/examcenter/internal/middleware"
	"github.com/izdhan/examcenter/internal/service"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	examSvc     service.ExamService
	questionSvc service.QuestionService
}

func NewExamController(examSvc service.ExamService, questionSvc service.QuestionService) *ExamController {
	return &ExamController{examSvc: examSvc, questionSvc: questionSvc}
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

// CreateExam godoc
// @Summary (Admin/Teacher) Create a new exam
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam body dto.CreateExamRequest true "Exam definition"
// @Success 201 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req dto.CreateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, _ := middleware.Identity(ctx)
	exam, err := c.examSvc.CreateExam(req, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, exam)
}

// GetExam godoc
// @Summary (Admin/Teacher) Get an exam with its questions
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	exam, err := c.examSvc.GetExam(examID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// ListMyExams godoc
// @Summary (Admin/Teacher) List exams created by the caller
// @Tags Admin - Exams
// @Produce json
// @Success 200 {array} dto.ExamSummaryResponse
// @Router /admin/exams [get]
func (c *ExamController) ListMyExams(ctx *gin.Context) {
	userID, _ := middleware.Identity(ctx)
	exams, err := c.examSvc.ListByCreator(userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// UpdateExam godoc
// @Summary (Admin/Teacher) Update exam metadata and timing
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param exam body dto.UpdateExamRequest true "Fields to update"
// @Success 200 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.UpdateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	exam, err := c.examSvc.UpdateExam(examID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// ApproveExam godoc
// @Summary (Admin) Approve a pending exam
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/approve [post]
func (c *ExamController) ApproveExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	userID, role := middleware.Identity(ctx)
	exam, err := c.examSvc.ApproveExam(examID, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// RejectExam godoc
// @Summary (Admin) Reject a pending exam with a reason
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param rejection body dto.RejectExamRequest true "Rejection reason"
// @Success 200 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/reject [post]
func (c *ExamController) RejectExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.RejectExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	exam, err := c.examSvc.RejectExam(examID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// PublishExam godoc
// @Summary (Admin/Teacher) Publish an exam to students
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/publish [post]
func (c *ExamController) PublishExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	userID, role := middleware.Identity(ctx)
	exam, err := c.examSvc.PublishExam(examID, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// ForceCloseExam godoc
// @Summary (Admin) Force-close an active exam
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/force-close [post]
func (c *ExamController) ForceCloseExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	userID, role := middleware.Identity(ctx)
	if err := c.examSvc.ForceCloseExam(examID, userID, role); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Exam force-closed"})
}

// DeleteExam godoc
// @Summary (Admin/Teacher) Delete an exam
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	userID, role := middleware.Identity(ctx)
	if err := c.examSvc.DeleteExam(examID, userID, role); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Exam deleted"})
}

// AddQuestion godoc
// @Summary (Admin/Teacher) Add a question to an exam
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param question body dto.CreateQuestionRequest true "Question definition"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/questions [post]
func (c *ExamController) AddQuestion(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	question, err := c.questionSvc.AddQuestion(examID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, question)
}

// BulkAddQuestions godoc
// @Summary (Admin/Teacher) Add multiple questions in one call
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param questions body dto.BulkAddQuestionsRequest true "Questions"
// @Success 201 {array} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/questions/bulk [post]
func (c *ExamController) BulkAddQuestions(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.BulkAddQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	questions, err := c.questionSvc.BulkAddQuestions(examID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, questions)
}

// UpdateQuestion godoc
// @Summary (Admin/Teacher) Update a question
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param question_id path int true "Question ID"
// @Param question body dto.UpdateQuestionRequest true "Fields to update"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/questions/{question_id} [put]
func (c *ExamController) UpdateQuestion(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "question_id")
	if !ok {
		return
	}
	var req dto.UpdateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	question, err := c.questionSvc.UpdateQuestion(questionID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// RemoveQuestion godoc
// @Summary (Admin/Teacher) Remove a question
// @Tags Admin - Questions
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/questions/{question_id} [delete]
func (c *ExamController) RemoveQuestion(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "question_id")
	if !ok {
		return
	}
	userID, role := middleware.Identity(ctx)
	if err := c.questionSvc.RemoveQuestion(questionID, userID, role); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Question removed"})
}

// ReorderQuestions godoc
// @Summary (Admin/Teacher) Reorder questions within an exam
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param items body dto.ReorderQuestionsRequest true "New ordering"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/questions/reorder [post]
func (c *ExamController) ReorderQuestions(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.ReorderQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	if err := c.questionSvc.ReorderQuestions(examID, req, userID, role); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Questions reordered"})
}

// AddSection godoc
// @Summary (Admin/Teacher) Add a section to a hierarchical exam
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param section body dto.CreateSectionRequest true "Section definition"
// @Success 201 {object} model.ExamSection
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/sections [post]
func (c *ExamController) AddSection(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.CreateSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	section, err := c.questionSvc.AddSection(examID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, section)
}

// AddGroup godoc
// @Summary (Admin/Teacher) Add a question group to a section
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param group body dto.CreateGroupRequest true "Group definition"
// @Success 201 {object} model.QuestionGroup
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/groups [post]
func (c *ExamController) AddGroup(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID, role := middleware.Identity(ctx)
	group, err := c.questionSvc.AddGroup(examID, req, userID, role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, group)
}

// GetQuestions godoc
// @Summary (Admin/Teacher) List an exam's questions, grouped hierarchically
// @Tags Admin - Questions
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param part query int false "Restrict to one exam part (1 or 2)"
// @Success 200 {object} dto.QuestionHierarchyResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/questions [get]
func (c *ExamController) GetQuestions(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	if partStr := ctx.Query("part"); partStr != "" {
		part, err := strconv.Atoi(partStr)
		if err != nil || (part != 1 && part != 2) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid part, must be 1 or 2"})
			return
		}
		questions, err := c.questionSvc.GetQuestionsByPart(examID, part)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, questions)
		return
	}
	questions, err := c.questionSvc.GetQuestions(examID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}
