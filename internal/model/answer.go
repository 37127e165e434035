package model

import "time"

type ExamAnswer struct {
	ID         uint         `gorm:"primarykey" json:"id"`
	AttemptID  uint         `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint         `json:"question_id" gorm:"not null;index"`
	Question   ExamQuestion `json:"question,omitempty" gorm:"foreignKey:QuestionID"`

	Answer    string `json:"answer" gorm:"type:text"`
	IsCorrect bool   `json:"is_correct" gorm:"default:false"`
	// Nil until graded; manual-part answers stay nil after submission until a
	// teacher assigns marks.
	PointsAwarded  *float64 `json:"points_awarded,omitempty"`
	TimeSpent      int      `json:"time_spent" gorm:"default:0"` // seconds
	GraderComments string   `json:"grader_comments,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
