package repository

import (
	"fmt"

	"github.com/izdhan/examcenter/internal/model"
	"gorm.io/gorm"
)

// QuestionPlacement positions one question within an exam during a reorder.
type QuestionPlacement struct {
	QuestionID uint
	Order      int
	SectionID  *uint
	GroupID    *uint
}

// QuestionRepository persists exam questions. The *WithMarks mutations pair
// the question write with the matching Exam.TotalMarks adjustment in one
// transaction: a question never exists without its points reflected in the
// exam total.
type QuestionRepository interface {
	FindByID(id uint) (*model.ExamQuestion, error)
	FindByExamID(examID uint) ([]model.ExamQuestion, error)
	FindByExamAndPart(examID uint, part int) ([]model.ExamQuestion, error)
	CreateWithMarks(question *model.ExamQuestion) error
	CreateBatchWithMarks(questions []model.ExamQuestion, totalPoints float64) error
	SaveWithMarks(question *model.ExamQuestion, marksDelta float64) error
	DeleteWithMarks(question *model.ExamQuestion) error
	Reorder(examID uint, placements []QuestionPlacement) error
	FindSectionsByExamID(examID uint) ([]model.ExamSection, error)
	CreateSection(section *model.ExamSection) error
	CreateGroup(group *model.QuestionGroup) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByID(id uint) (*model.ExamQuestion, error) {
	var question model.ExamQuestion
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByExamID(examID uint) ([]model.ExamQuestion, error) {
	var questions []model.ExamQuestion
	err := r.db.Where("exam_id = ?", examID).
		Order("exam_part ASC, question_order ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindByExamAndPart(examID uint, part int) ([]model.ExamQuestion, error) {
	var questions []model.ExamQuestion
	err := r.db.Where("exam_id = ? AND exam_part = ?", examID, part).
		Order("question_order ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) CreateWithMarks(question *model.ExamQuestion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return tx.Model(&model.Exam{}).Where("id = ?", question.ExamID).
			UpdateColumn("total_marks", gorm.Expr("total_marks + ?", question.Points)).Error
	})
}

func (r *questionRepository) CreateBatchWithMarks(questions []model.ExamQuestion, totalPoints float64) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return tx.Model(&model.Exam{}).Where("id = ?", questions[0].ExamID).
			UpdateColumn("total_marks", gorm.Expr("total_marks + ?", totalPoints)).Error
	})
}

func (r *questionRepository) SaveWithMarks(question *model.ExamQuestion, marksDelta float64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(question).Error; err != nil {
			return fmt.Errorf("failed to update question %d: %w", question.ID, err)
		}
		if marksDelta == 0 {
			return nil
		}
		return tx.Model(&model.Exam{}).Where("id = ?", question.ExamID).
			UpdateColumn("total_marks", gorm.Expr("total_marks + ?", marksDelta)).Error
	})
}

func (r *questionRepository) DeleteWithMarks(question *model.ExamQuestion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.ExamQuestion{}, question.ID).Error; err != nil {
			return fmt.Errorf("failed to delete question %d: %w", question.ID, err)
		}
		return tx.Model(&model.Exam{}).Where("id = ?", question.ExamID).
			UpdateColumn("total_marks", gorm.Expr("total_marks - ?", question.Points)).Error
	})
}

// Reorder updates order (and optionally section/group placement) for a batch
// of questions in one transaction. A question outside the exam fails the whole
// batch with a wrapped gorm.ErrRecordNotFound.
func (r *questionRepository) Reorder(examID uint, placements []QuestionPlacement) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range placements {
			updates := map[string]any{"question_order": p.Order}
			if p.SectionID != nil {
				updates["section_id"] = *p.SectionID
			}
			if p.GroupID != nil {
				updates["group_id"] = *p.GroupID
			}
			res := tx.Model(&model.ExamQuestion{}).
				Where("id = ? AND exam_id = ?", p.QuestionID, examID).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("question %d does not belong to exam %d: %w", p.QuestionID, examID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

func (r *questionRepository) FindSectionsByExamID(examID uint) ([]model.ExamSection, error) {
	var sections []model.ExamSection
	err := r.db.Preload("Groups", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_groups.group_order ASC")
	}).Where("exam_id = ?", examID).Order("section_order ASC").Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *questionRepository) CreateSection(section *model.ExamSection) error {
	return r.db.Create(section).Error
}

func (r *questionRepository) CreateGroup(group *model.QuestionGroup) error {
	return r.db.Create(group).Error
}
