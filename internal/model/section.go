package model

import "time"

// ExamSection and QuestionGroup are optional hierarchical containers for
// questions; they exist only when the exam has UseHierarchicalStructure set.

type ExamSection struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	ExamID   uint   `json:"exam_id" gorm:"not null;index"`
	Title    string `json:"title" gorm:"not null"`
	Order    int    `json:"order" gorm:"column:section_order;not null"`
	ExamPart int    `json:"exam_part" gorm:"not null;default:1"`

	Groups []QuestionGroup `json:"groups,omitempty" gorm:"foreignKey:SectionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type QuestionGroup struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	SectionID uint   `json:"section_id" gorm:"not null;index"`
	Title     string `json:"title" gorm:"not null"`
	Order     int    `json:"order" gorm:"column:group_order;not null"`
	ExamPart  int    `json:"exam_part" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
