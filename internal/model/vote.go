package model

import "time"

// Vote values
const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote is a single user's ±1 on a deal. The (user_id, deal_id) unique index
// is the authority that keeps concurrent votes from double-counting: a
// duplicate-key error on insert means a racing request already voted.
type Vote struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_votes_user_deal"`
	DealID uint `json:"deal_id" gorm:"not null;uniqueIndex:idx_votes_user_deal;index"`
	Value  int  `json:"value" gorm:"not null"` // +1 or -1

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
