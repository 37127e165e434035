package dto

import (
	"time"

	"github.com/izdhan/examcenter/internal/model"
)

type StartExamRequest struct {
	// Reserved for client metadata (device info etc.); starting an exam needs
	// no body fields today.
}

type SubmittedAnswer struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"time_spent" binding:"min=0"` // seconds
}

type SubmitExamRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,min=1,dive"`
}

type AnswerResponse struct {
	ID             uint     `json:"id"`
	QuestionID     uint     `json:"question_id"`
	Answer         string   `json:"answer"`
	IsCorrect      bool     `json:"is_correct"`
	PointsAwarded  *float64 `json:"points_awarded,omitempty"`
	TimeSpent      int      `json:"time_spent"`
	GraderComments string   `json:"grader_comments,omitempty"`
}

type AttemptResponse struct {
	ID            uint                `json:"id"`
	ExamID        uint                `json:"exam_id"`
	StudentID     uint                `json:"student_id"`
	AttemptNumber int                 `json:"attempt_number"`
	Status        model.AttemptStatus `json:"status"`
	MaxScore      float64             `json:"max_score"`
	TotalScore    float64             `json:"total_score"`
	Part1Score    float64             `json:"part1_score"`
	Part2Score    float64             `json:"part2_score"`
	Percentage    float64             `json:"percentage"`
	Passed        bool                `json:"passed"`
	StartedAt     time.Time           `json:"started_at"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
	Answers       []AnswerResponse    `json:"answers,omitempty"`
}

type StartExamResponse struct {
	Attempt   AttemptResponse           `json:"attempt"`
	Exam      ExamResponse              `json:"exam"`
	Questions []StudentQuestionResponse `json:"questions"`
}

type SubmitExamResponse struct {
	Attempt    AttemptResponse `json:"attempt"`
	Score      float64         `json:"score"`
	MaxScore   float64         `json:"max_score"`
	Percentage float64         `json:"percentage"`
	Passed     bool            `json:"passed"`
}
