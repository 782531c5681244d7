package model

import (
	"time"

	"gorm.io/gorm"
)

// Deal statuses
const (
	DealStatusPending  = "PENDING"
	DealStatusApproved = "APPROVED"
	DealStatusRejected = "REJECTED"
	DealStatusExpired  = "EXPIRED"
)

// Deal is an affiliate offer submitted by a user and owned by one tenant.
// Slug is unique within the tenant.
type Deal struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	TenantID uint   `json:"tenant_id" gorm:"not null;uniqueIndex:idx_deals_slug_tenant"`
	Slug     string `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex:idx_deals_slug_tenant"`
	UserID   uint   `json:"user_id" gorm:"not null;index"`

	Title         string  `json:"title" gorm:"type:varchar(255);not null"`
	Description   string  `json:"description" gorm:"type:text"`
	AffiliateURL  string  `json:"affiliate_url" gorm:"type:text;not null"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
	CategoryID    *uint   `json:"category_id,omitempty" gorm:"index"`

	Status     string     `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`

	// Lifetime counters, denormalized from the DealAnalytics daily buckets.
	// Mutated only through atomic relative-delta updates, in the same
	// transaction as the matching bucket upsert.
	Views       int64 `json:"views" gorm:"not null;default:0"`
	Clicks      int64 `json:"clicks" gorm:"not null;default:0"`
	Conversions int64 `json:"conversions" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
