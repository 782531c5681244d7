package model

import "time"

// Point award reasons and their fixed amounts.
const (
	PointReasonDealApproved = "deal_approved"
	PointReasonVote         = "vote"
	PointReasonShare        = "share"
	PointReasonConversion   = "conversion"
	PointReasonComment      = "comment"
	PointReasonDailyLogin   = "daily_login"
)

// PointValues maps a reason to the amount awarded for it.
var PointValues = map[string]int{
	PointReasonDealApproved: 10,
	PointReasonVote:         1,
	PointReasonShare:        5,
	PointReasonConversion:   20,
	PointReasonComment:      2,
	PointReasonDailyLogin:   1,
}

// PointHistory is an append-only ledger entry. Rows are never updated or
// deleted; a user's balance is the sum of their entries and User.Points is
// just a cache of that sum. There is deliberately no UpdatedAt or DeletedAt.
type PointHistory struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	UserID      uint   `json:"user_id" gorm:"not null;index"`
	Points      int    `json:"points" gorm:"not null"` // signed: awards positive, deductions negative
	Reason      string `json:"reason" gorm:"type:varchar(50);not null"`
	Description string `json:"description" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at"`
}
