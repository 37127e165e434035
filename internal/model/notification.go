package model

import "time"

// Notification is the sink for best-effort exam event notifications
// (approve/reject/publish/results). Delivery to devices is handled elsewhere;
// the core only writes rows.
type Notification struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	UserID   uint   `json:"user_id" gorm:"not null;index"`
	Title    string `json:"title" gorm:"not null"`
	Message  string `json:"message" gorm:"type:text"`
	Type     string `json:"type" gorm:"not null"`
	Metadata string `json:"metadata,omitempty" gorm:"type:jsonb"`
	Read     bool   `json:"read" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
