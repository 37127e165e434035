package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
	AttemptGraded     AttemptStatus = "GRADED"
)

type ExamAttempt struct {
	ID        uint `gorm:"primarykey" json:"id"`
	ExamID    uint `json:"exam_id" gorm:"not null;index"`
	Exam      Exam `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	StudentID uint `json:"student_id" gorm:"not null;index"`
	Student   User `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	AttemptNumber int           `json:"attempt_number" gorm:"not null"`
	Status        AttemptStatus `json:"status" gorm:"not null;default:'IN_PROGRESS';index"`

	MaxScore   float64 `json:"max_score" gorm:"not null"`
	TotalScore float64 `json:"total_score" gorm:"not null;default:0"`
	Part1Score float64 `json:"part1_score" gorm:"not null;default:0"`
	Part2Score float64 `json:"part2_score" gorm:"not null;default:0"`
	Percentage float64 `json:"percentage" gorm:"not null;default:0"`
	Passed     bool    `json:"passed" gorm:"default:false"`

	StartedAt   time.Time  `json:"started_at" gorm:"autoCreateTime"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	Answers []ExamAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
