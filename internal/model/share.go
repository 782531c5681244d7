package model

import "time"

// Share is a tenant-scoped short tracking link. ShortCode is unique within
// a tenant only, so two tenants may hand out the same code independently.
type Share struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TenantID  uint   `json:"tenant_id" gorm:"not null;uniqueIndex:idx_shares_code_tenant"`
	ShortCode string `json:"short_code" gorm:"type:varchar(16);not null;uniqueIndex:idx_shares_code_tenant"`

	OriginalURL string `json:"original_url" gorm:"type:text;not null"`
	UserID      *uint  `json:"user_id,omitempty" gorm:"index"`
	DealID      *uint  `json:"deal_id,omitempty" gorm:"index"`

	// Attribution
	Platform    string `json:"platform" gorm:"type:varchar(50);not null;default:'direct'"`
	UTMSource   string `json:"utm_source" gorm:"type:varchar(100)"`
	UTMMedium   string `json:"utm_medium" gorm:"type:varchar(100)"`
	UTMCampaign string `json:"utm_campaign" gorm:"type:varchar(100)"`

	// Clicks is the only mutable field after creation; incremented atomically
	// on resolution.
	Clicks int64 `json:"clicks" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
