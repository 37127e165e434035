package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleTeacher    Role = "TEACHER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) IsTeacher() bool {
	return r == RoleTeacher
}

type User struct {
	ID                     uint    `gorm:"primarykey" json:"id"`
	Name                   string  `json:"name" gorm:"not null"`
	Role                   Role    `json:"role" gorm:"not null;default:'STUDENT'"`
	DistrictID             *string `json:"district_id,omitempty"`
	IsExternalTransferOnly bool    `json:"is_external_transfer_only" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Class struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Name      string `json:"name" gorm:"not null"`
	TeacherID uint   `json:"teacher_id" gorm:"not null;index"`
	SubjectID uint   `json:"subject_id" gorm:"not null"`
	GradeID   uint   `json:"grade_id" gorm:"not null"`
	MediumID  uint   `json:"medium_id" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentInactive  EnrollmentStatus = "INACTIVE"
	EnrollmentWithdrawn EnrollmentStatus = "WITHDRAWN"
)

type Enrollment struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	ClassID   uint             `json:"class_id" gorm:"not null;index"`
	StudentID uint             `json:"student_id" gorm:"not null;index"`
	Status    EnrollmentStatus `json:"status" gorm:"not null;default:'ACTIVE'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeacherSubjectAssignment records which (subject, grade, medium) combinations
// a teacher may create exams for in a given academic year.
type TeacherSubjectAssignment struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	TeacherID    uint   `json:"teacher_id" gorm:"not null;index"`
	SubjectID    uint   `json:"subject_id" gorm:"not null"`
	GradeID      uint   `json:"grade_id" gorm:"not null"`
	MediumID     uint   `json:"medium_id" gorm:"not null"`
	AcademicYear string `json:"academic_year" gorm:"not null"`

	CanCreateExams bool `json:"can_create_exams" gorm:"default:false"`
	Active         bool `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcademicYear formats the school year containing t. The year rolls over in
// June.
func AcademicYear(t time.Time) string {
	year := t.Year()
	if t.Month() < time.June {
		return fmt.Sprintf("%d/%d", year-1, year)
	}
	return fmt.Sprintf("%d/%d", year, year+1)
}
