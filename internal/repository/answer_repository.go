package repository

import (
	"github.com/izdhan/examcenter/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	FindByID(id uint) (*model.ExamAnswer, error)
	FindByAttemptID(attemptID uint) ([]model.ExamAnswer, error)
	FindByQuestionID(questionID uint) ([]model.ExamAnswer, error)
	Update(answer *model.ExamAnswer) error
	UpdateBatch(answers []model.ExamAnswer) error
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) FindByID(id uint) (*model.ExamAnswer, error) {
	var answer model.ExamAnswer
	if err := r.db.Preload("Question").First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) FindByAttemptID(attemptID uint) ([]model.ExamAnswer, error) {
	var answers []model.ExamAnswer
	err := r.db.Preload("Question").Where("attempt_id = ?", attemptID).Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// FindByQuestionID returns every answer given to one question across all
// attempts of its exam.
func (r *answerRepository) FindByQuestionID(questionID uint) ([]model.ExamAnswer, error) {
	var answers []model.ExamAnswer
	err := r.db.Preload("Question").Where("question_id = ?", questionID).Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) Update(answer *model.ExamAnswer) error {
	return r.db.Save(answer).Error
}

// UpdateBatch saves a set of answers in one transaction.
func (r *answerRepository) UpdateBatch(answers []model.ExamAnswer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			if err := tx.Save(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
