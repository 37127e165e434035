package service

import "github.com/izdhan/examcenter/internal/model"

// CanManageExam is the single authorization rule for mutating an exam: the
// creator or an admin may act on it.
func CanManageExam(exam *model.Exam, userID uint, role model.Role) bool {
	return exam.CreatedByID == userID || role.IsAdmin()
}

// CanGradeExam extends CanManageExam to the teacher of the exam's class, who
// marks manual-part answers without owning the exam.
func CanGradeExam(exam *model.Exam, class *model.Class, userID uint, role model.Role) bool {
	if CanManageExam(exam, userID, role) {
		return true
	}
	return class != nil && class.TeacherID == userID
}
