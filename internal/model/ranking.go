package model

import "time"

type StudentType string

const (
	StudentInternal StudentType = "INTERNAL"
	StudentExternal StudentType = "EXTERNAL"
)

// ExamRanking holds one row per (exam, student), upserted on every ranking
// recalculation. Ranks are 1..N within their scope, ordered by descending
// score.
type ExamRanking struct {
	ID        uint `gorm:"primarykey" json:"id"`
	ExamID    uint `json:"exam_id" gorm:"not null;uniqueIndex:idx_exam_student"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_exam_student"`

	Score       float64     `json:"score" gorm:"not null"`
	Percentage  float64     `json:"percentage" gorm:"not null"`
	StudentType StudentType `json:"student_type" gorm:"not null"`

	District *string `json:"district,omitempty"`
	Zone     *string `json:"zone,omitempty"`

	IslandRank  int `json:"island_rank"`
	TotalIsland int `json:"total_island"`

	DistrictRank  *int `json:"district_rank,omitempty"`
	TotalDistrict *int `json:"total_district,omitempty"`

	// Zone ranking has no data source yet; these stay nil and are reset on
	// every recalculation.
	ZoneRank  *int `json:"zone_rank,omitempty"`
	TotalZone *int `json:"total_zone,omitempty"`

	CalculatedAt time.Time `json:"calculated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
