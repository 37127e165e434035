package repository

import (
	"fmt"
	"time"

	"github.com/izdhan/examcenter/internal/model"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(exam *model.Exam) error
	FindByID(id uint) (*model.Exam, error)
	FindByIDWithQuestions(id uint) (*model.Exam, error)
	FindByStatus(status model.ExamStatus) ([]model.Exam, error)
	FindByCreator(creatorID uint) ([]model.Exam, error)
	Update(exam *model.Exam) error
	CountQuestions(examID uint) (int64, error)
	ForceClose(examID uint, closedAt time.Time) error
	SoftDelete(id uint) error
	HardDelete(id uint) error
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	return r.db.Create(exam).Error
}

func (r *examRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("exam_questions.question_order ASC")
	}).First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByStatus(status model.ExamStatus) ([]model.Exam, error) {
	var exams []model.Exam
	if err := r.db.Where("status = ?", status).Order("start_time ASC").Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) FindByCreator(creatorID uint) ([]model.Exam, error) {
	var exams []model.Exam
	if err := r.db.Where("created_by_id = ?", creatorID).Order("created_at DESC").Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) Update(exam *model.Exam) error {
	return r.db.Save(exam).Error
}

func (r *examRepository) CountQuestions(examID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.ExamQuestion{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}

// ForceClose stamps every in-progress attempt submitted and completes the
// exam in one transaction, so a crash mid-close never leaves open attempts on
// a completed exam.
func (r *examRepository) ForceClose(examID uint, closedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ExamAttempt{}).
			Where("exam_id = ? AND status = ?", examID, model.AttemptInProgress).
			Updates(map[string]any{
				"status":       model.AttemptSubmitted,
				"submitted_at": closedAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to close in-progress attempts: %w", err)
		}
		if err := tx.Model(&model.Exam{}).Where("id = ?", examID).
			Update("status", model.ExamCompleted).Error; err != nil {
			return fmt.Errorf("failed to mark exam completed: %w", err)
		}
		return nil
	})
}

func (r *examRepository) SoftDelete(id uint) error {
	return r.db.Delete(&model.Exam{}, id).Error
}

// HardDelete removes the exam with its questions and sections for good.
func (r *examRepository) HardDelete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamSection{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Exam{}, id).Error
	})
}
