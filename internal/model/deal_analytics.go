package model

import "time"

// Engagement kinds recorded into daily buckets.
const (
	EngagementView       = "view"
	EngagementClick      = "click"
	EngagementConversion = "conversion"
)

// DealAnalytics is one daily engagement bucket per deal and referral source.
// Date is always truncated to UTC midnight so bucket keys stay canonical.
// Rows are created lazily on the first event of the day and incremented
// afterwards via upsert-on-conflict.
type DealAnalytics struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	DealID         uint      `json:"deal_id" gorm:"not null;uniqueIndex:idx_analytics_deal_date_source"`
	Date           time.Time `json:"date" gorm:"not null;uniqueIndex:idx_analytics_deal_date_source;index"`
	ReferralSource string    `json:"referral_source" gorm:"type:varchar(50);not null;default:'direct';uniqueIndex:idx_analytics_deal_date_source"`

	Views       int64 `json:"views" gorm:"not null;default:0"`
	Clicks      int64 `json:"clicks" gorm:"not null;default:0"`
	Conversions int64 `json:"conversions" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the plural-free name the analytics queries use.
func (DealAnalytics) TableName() string { return "deal_analytics" }
