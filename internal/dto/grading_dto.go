package dto

import "time"

type GradeAnswerRequest struct {
	PointsAwarded float64 `json:"points_awarded" binding:"min=0"`
	Comments      string  `json:"comments"`
}

type AutoAssignMarksRequest struct {
	QuestionID      uint    `json:"question_id" binding:"required"`
	Points          float64 `json:"points" binding:"min=0"`
	ApplyToUngraded bool    `json:"apply_to_ungraded"`
}

type GradeAnswerResponse struct {
	Answer AnswerResponse `json:"answer"`
}

type AutoAssignMarksResponse struct {
	AnswersUpdated     int `json:"answers_updated"`
	AttemptsRecomputed int `json:"attempts_recomputed"`
}

type RankingResponse struct {
	StudentID     uint      `json:"student_id"`
	Score         float64   `json:"score"`
	Percentage    float64   `json:"percentage"`
	StudentType   string    `json:"student_type"`
	District      *string   `json:"district,omitempty"`
	IslandRank    int       `json:"island_rank"`
	TotalIsland   int       `json:"total_island"`
	DistrictRank  *int      `json:"district_rank,omitempty"`
	TotalDistrict *int      `json:"total_district,omitempty"`
	ZoneRank      *int      `json:"zone_rank,omitempty"`
	TotalZone     *int      `json:"total_zone,omitempty"`
	CalculatedAt  time.Time `json:"calculated_at"`
}
