package dto

import "github.com/izdhan/examcenter/internal/model"

type CreateQuestionRequest struct {
	Type          model.QuestionType `json:"type" binding:"required,oneof=mcq matching fill_blank essay"`
	Question      string             `json:"question" binding:"required"`
	Options       string             `json:"options"` // JSON payload shaped per question type
	CorrectAnswer string             `json:"correct_answer"`
	Points        float64            `json:"points" binding:"required,gt=0"`
	Order         int                `json:"order" binding:"min=0"`
	ExamPart      int                `json:"exam_part" binding:"omitempty,oneof=1 2"`
	SectionID     *uint              `json:"section_id"`
	GroupID       *uint              `json:"group_id"`
}

type BulkAddQuestionsRequest struct {
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

type UpdateQuestionRequest struct {
	Question      *string  `json:"question"`
	Options       *string  `json:"options"`
	CorrectAnswer *string  `json:"correct_answer"`
	Points        *float64 `json:"points"`
	Order         *int     `json:"order"`
	SectionID     *uint    `json:"section_id"`
	GroupID       *uint    `json:"group_id"`
}

type ReorderQuestionItem struct {
	QuestionID uint  `json:"question_id" binding:"required"`
	Order      int   `json:"order" binding:"min=0"`
	SectionID  *uint `json:"section_id"`
	GroupID    *uint `json:"group_id"`
}

type ReorderQuestionsRequest struct {
	Items []ReorderQuestionItem `json:"items" binding:"required,min=1,dive"`
}

type CreateSectionRequest struct {
	Title    string `json:"title" binding:"required"`
	Order    int    `json:"order" binding:"min=0"`
	ExamPart int    `json:"exam_part" binding:"omitempty,oneof=1 2"`
}

type CreateGroupRequest struct {
	SectionID uint   `json:"section_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Order     int    `json:"order" binding:"min=0"`
	ExamPart  int    `json:"exam_part" binding:"omitempty,oneof=1 2"`
}

type QuestionResponse struct {
	ID            uint               `json:"id"`
	ExamID        uint               `json:"exam_id"`
	SectionID     *uint              `json:"section_id,omitempty"`
	GroupID       *uint              `json:"group_id,omitempty"`
	Type          model.QuestionType `json:"type"`
	Question      string             `json:"question"`
	Options       string             `json:"options,omitempty"`
	CorrectAnswer string             `json:"correct_answer,omitempty"`
	Points        float64            `json:"points"`
	Order         int                `json:"order"`
	ExamPart      int                `json:"exam_part"`
}

// StudentQuestionResponse is the answer-key-free view served to students
// taking an exam.
type StudentQuestionResponse struct {
	ID        uint               `json:"id"`
	SectionID *uint              `json:"section_id,omitempty"`
	GroupID   *uint              `json:"group_id,omitempty"`
	Type      model.QuestionType `json:"type"`
	Question  string             `json:"question"`
	Options   string             `json:"options,omitempty"`
	Points    float64            `json:"points"`
	Order     int                `json:"order"`
	ExamPart  int                `json:"exam_part"`
}

// Hierarchical retrieval buckets: part -> section -> group, order preserved
// within each bucket. Questions without a section or group land in the
// "no-section" / "no-group" buckets.

type GroupBucket struct {
	GroupID   string             `json:"group_id"`
	Questions []QuestionResponse `json:"questions"`
}

type SectionBucket struct {
	SectionID string        `json:"section_id"`
	Groups    []GroupBucket `json:"groups"`
}

type PartBucket struct {
	Part     int             `json:"part"`
	Sections []SectionBucket `json:"sections"`
}

type QuestionHierarchyResponse struct {
	ExamID uint         `json:"exam_id"`
	Parts  []PartBucket `json:"parts"`
}
