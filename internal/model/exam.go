package model

import (
	"time"

	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamDraft     ExamStatus = "DRAFT"
	ExamApproved  ExamStatus = "APPROVED"
	ExamPublished ExamStatus = "PUBLISHED"
	ExamActive    ExamStatus = "ACTIVE"
	ExamCompleted ExamStatus = "COMPLETED"
	ExamCancelled ExamStatus = "CANCELLED"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

type ExamType string

const (
	ExamTypeMCQ   ExamType = "MCQ"
	ExamTypeMixed ExamType = "MIXED"
)

type Exam struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description,omitempty"`
	Type        ExamType   `json:"type" gorm:"not null;default:'MCQ'"`
	Status      ExamStatus `json:"status" gorm:"not null;default:'DRAFT';index"`

	ApprovalStatus  ApprovalStatus `json:"approval_status" gorm:"not null;default:'PENDING'"`
	RejectionReason string         `json:"rejection_reason,omitempty"`

	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	Duration    int        `json:"duration"` // minutes

	TotalMarks      float64 `json:"total_marks" gorm:"not null;default:0"`
	PassingMarks    float64 `json:"passing_marks" gorm:"not null;default:0"`
	AttemptsAllowed int     `json:"attempts_allowed" gorm:"not null;default:1"`

	EnableRanking            bool `json:"enable_ranking" gorm:"default:false"`
	UseHierarchicalStructure bool `json:"use_hierarchical_structure" gorm:"default:false"`
	ShowResults              bool `json:"show_results" gorm:"default:false"`

	ClassID   *uint `json:"class_id,omitempty" gorm:"index"`
	SubjectID uint  `json:"subject_id"`
	GradeID   uint  `json:"grade_id"`
	MediumID  uint  `json:"medium_id"`

	CreatedByID uint `json:"created_by_id" gorm:"not null;index"`

	Questions []ExamQuestion `json:"questions,omitempty" gorm:"foreignKey:ExamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Sections  []ExamSection  `json:"sections,omitempty" gorm:"foreignKey:ExamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectiveStatus resolves the implicit ACTIVE state: a published exam whose
// start..end interval contains now is running even though the stored status
// stays PUBLISHED until completion.
func (e *Exam) EffectiveStatus(now time.Time) ExamStatus {
	if e.Status == ExamPublished && !now.Before(e.StartTime) && !now.After(e.EndTime) {
		return ExamActive
	}
	return e.Status
}
