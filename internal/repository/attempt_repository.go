package repository

import (
	"github.com/izdhan/examcenter/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.ExamAttempt) error
	FindByID(id uint) (*model.ExamAttempt, error)
	FindByIDWithAnswers(id uint) (*model.ExamAttempt, error)
	FindByExamID(examID uint) ([]model.ExamAttempt, error)
	FindByExamAndStatus(examID uint, status model.AttemptStatus) ([]model.ExamAttempt, error)
	FindByStudent(studentID uint) ([]model.ExamAttempt, error)
	CountByExam(examID uint) (int64, error)
	CountByExamAndStudent(examID, studentID uint) (int64, error)
	Update(attempt *model.ExamAttempt) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.ExamAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithAnswers(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.db.Preload("Answers").Preload("Answers.Question").First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByExamID(examID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.db.Where("exam_id = ?", examID).Order("submitted_at ASC").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepository) FindByExamAndStatus(examID uint, status model.AttemptStatus) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.db.Preload("Student").
		Where("exam_id = ? AND status = ?", examID, status).
		Order("submitted_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepository) FindByStudent(studentID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.db.Preload("Exam").Where("student_id = ?", studentID).
		Order("started_at DESC").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepository) CountByExam(examID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.ExamAttempt{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}

func (r *attemptRepository) CountByExamAndStudent(examID, studentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.ExamAttempt{}).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Count(&count).Error
	return count, err
}

func (r *attemptRepository) Update(attempt *model.ExamAttempt) error {
	return r.db.Save(attempt).Error
}
