package dto

import (
	"time"

	"github.com/izdhan/examcenter/internal/model"
)

type CreateExamRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Type        model.ExamType `json:"type" binding:"required,oneof=MCQ MIXED"`

	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     time.Time  `json:"end_time" binding:"required"`
	WindowStart *time.Time `json:"window_start"`
	WindowEnd   *time.Time `json:"window_end"`
	Duration    int        `json:"duration" binding:"required,min=1"` // minutes

	PassingMarks    float64 `json:"passing_marks" binding:"min=0"`
	AttemptsAllowed int     `json:"attempts_allowed" binding:"required,min=1"`

	EnableRanking            bool `json:"enable_ranking"`
	UseHierarchicalStructure bool `json:"use_hierarchical_structure"`

	ClassID   *uint `json:"class_id"`
	SubjectID *uint `json:"subject_id"`
	GradeID   *uint `json:"grade_id"`
	MediumID  *uint `json:"medium_id"`
}

type UpdateExamRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	WindowStart *time.Time `json:"window_start"`
	WindowEnd   *time.Time `json:"window_end"`
	Duration    *int       `json:"duration"`

	PassingMarks    *float64 `json:"passing_marks"`
	AttemptsAllowed *int     `json:"attempts_allowed"`
	EnableRanking   *bool    `json:"enable_ranking"`
}

type RejectExamRequest struct {
	Reason   string `json:"reason" binding:"required"`
	Feedback string `json:"feedback"`
}

type ExamResponse struct {
	ID              uint                 `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	Type            model.ExamType       `json:"type"`
	Status          model.ExamStatus     `json:"status"`
	ApprovalStatus  model.ApprovalStatus `json:"approval_status"`
	RejectionReason string               `json:"rejection_reason,omitempty"`

	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	Duration    int        `json:"duration"`

	TotalMarks      float64 `json:"total_marks"`
	PassingMarks    float64 `json:"passing_marks"`
	AttemptsAllowed int     `json:"attempts_allowed"`

	EnableRanking            bool `json:"enable_ranking"`
	UseHierarchicalStructure bool `json:"use_hierarchical_structure"`
	ShowResults              bool `json:"show_results"`

	ClassID     *uint `json:"class_id,omitempty"`
	SubjectID   uint  `json:"subject_id"`
	GradeID     uint  `json:"grade_id"`
	MediumID    uint  `json:"medium_id"`
	CreatedByID uint  `json:"created_by_id"`

	Questions []QuestionResponse `json:"questions,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type ExamSummaryResponse struct {
	ID              uint             `json:"id"`
	Title           string           `json:"title"`
	Type            model.ExamType   `json:"type"`
	Status          model.ExamStatus `json:"status"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         time.Time        `json:"end_time"`
	Duration        int              `json:"duration"`
	TotalMarks      float64          `json:"total_marks"`
	AttemptsAllowed int              `json:"attempts_allowed"`
}
