package repository

import (
	"github.com/izdhan/examcenter/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RankingRepository interface {
	Upsert(ranking *model.ExamRanking) error
	FindByExamID(examID uint) ([]model.ExamRanking, error)
	FindByExamAndStudent(examID, studentID uint) (*model.ExamRanking, error)
	ResetZoneRanks(examID uint) error
}

type rankingRepository struct {
	db *gorm.DB
}

func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

// Upsert writes the ranking row keyed by (exam_id, student_id), fully
// overwriting prior rank fields so recalculation stays idempotent.
func (r *rankingRepository) Upsert(ranking *model.ExamRanking) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score", "percentage", "student_type", "district", "zone",
			"island_rank", "total_island", "district_rank", "total_district",
			"zone_rank", "total_zone", "calculated_at", "updated_at",
		}),
	}).Create(ranking).Error
}

func (r *rankingRepository) FindByExamID(examID uint) ([]model.ExamRanking, error) {
	var rankings []model.ExamRanking
	err := r.db.Where("exam_id = ?", examID).Order("island_rank ASC").Find(&rankings).Error
	if err != nil {
		return nil, err
	}
	return rankings, nil
}

func (r *rankingRepository) FindByExamAndStudent(examID, studentID uint) (*model.ExamRanking, error) {
	var ranking model.ExamRanking
	err := r.db.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&ranking).Error
	if err != nil {
		return nil, err
	}
	return &ranking, nil
}

func (r *rankingRepository) ResetZoneRanks(examID uint) error {
	return r.db.Model(&model.ExamRanking{}).
		Where("exam_id = ?", examID).
		Updates(map[string]any{"zone_rank": nil, "total_zone": nil}).Error
}
