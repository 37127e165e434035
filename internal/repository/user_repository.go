package repository

import (
	"github.com/izdhan/examcenter/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(id uint) (*model.User, error)
	FindClassByID(id uint) (*model.Class, error)
	HasActiveEnrollment(classID, studentID uint) (bool, error)
	FindActiveStudentIDs(classID uint) ([]uint, error)
	FindActiveAssignment(teacherID, subjectID, gradeID, mediumID uint, academicYear string) (*model.TeacherSubjectAssignment, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindClassByID(id uint) (*model.Class, error) {
	var class model.Class
	if err := r.db.First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *userRepository) HasActiveEnrollment(classID, studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Enrollment{}).
		Where("class_id = ? AND student_id = ? AND status = ?", classID, studentID, model.EnrollmentActive).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) FindActiveStudentIDs(classID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Enrollment{}).
		Where("class_id = ? AND status = ?", classID, model.EnrollmentActive).
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) FindActiveAssignment(teacherID, subjectID, gradeID, mediumID uint, academicYear string) (*model.TeacherSubjectAssignment, error) {
	var assignment model.TeacherSubjectAssignment
	err := r.db.Where(
		"teacher_id = ? AND subject_id = ? AND grade_id = ? AND medium_id = ? AND academic_year = ? AND active = ?",
		teacherID, subjectID, gradeID, mediumID, academicYear, true,
	).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
