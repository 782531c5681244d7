package model

import "time"

// AuditLog records admin actions (deal approval/rejection, tenant changes).
// Append-only.
type AuditLog struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Action      string `json:"action" gorm:"type:varchar(50);not null"`
	Entity      string `json:"entity" gorm:"type:varchar(50);not null"`
	EntityID    uint   `json:"entity_id" gorm:"not null;index"`
	Changes     string `json:"changes" gorm:"type:text"`
	PerformedBy uint   `json:"performed_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
}
