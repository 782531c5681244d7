package model

import (
	"time"

	"gorm.io/gorm"
)

// Category groups deals within a tenant. Slug is unique per tenant.
type Category struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	TenantID uint   `json:"tenant_id" gorm:"not null;uniqueIndex:idx_categories_slug_tenant"`
	Slug     string `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_slug_tenant"`
	Name     string `json:"name" gorm:"type:varchar(100);not null"`
	Icon     string `json:"icon" gorm:"type:varchar(20)"`
	Order    int    `json:"order" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
