package repository

import (
	"context"
	"fmt"

	"dealhub/internal/model"

	"gorm.io/gorm"
)

// Vote outcomes.
const (
	VoteRecorded = "recorded"
	VoteRemoved  = "removed"
)

// VoteRepository owns the one-vote-per-user-per-deal invariant and the
// score computation.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository constructs a VoteRepository.
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast applies a ±1 vote by userID on dealID and returns VoteRecorded or
// VoteRemoved. State machine per (user, deal) pair:
//
//	no vote  + value          -> create row, award vote points
//	same value resubmitted    -> delete row (un-vote), no point change
//	opposite value resubmitted-> update value in place, no point change
//
// The unique (user_id, deal_id) index is what prevents racing requests from
// double-voting: a duplicate-key error on create means another request won,
// so we re-read and apply the existing-vote rules instead of failing.
func (r *VoteRepository) Cast(ctx context.Context, userID, dealID uint, value int) (string, error) {
	if value != model.VoteUp && value != model.VoteDown {
		return "", ErrInvalidVote
	}

	var outcome string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Vote
		err := tx.Where("user_id = ? AND deal_id = ?", userID, dealID).First(&existing).Error

		if notFound(err) {
			vote := model.Vote{UserID: userID, DealID: dealID, Value: value}
			createErr := tx.Create(&vote).Error
			if createErr == nil {
				outcome = VoteRecorded
				return appendLedger(tx, userID, model.PointValues[model.PointReasonVote],
					model.PointReasonVote, "Voted on a deal")
			}
			if !isDuplicate(createErr) {
				return fmt.Errorf("create vote: %w", createErr)
			}
			// A concurrent request created the row first; fall through to
			// the existing-vote rules against the fresh row.
			if err := tx.Where("user_id = ? AND deal_id = ?", userID, dealID).First(&existing).Error; err != nil {
				return fmt.Errorf("reread vote: %w", err)
			}
		} else if err != nil {
			return err
		}

		if existing.Value == value {
			// Same button pressed again: un-vote. Points stay; removal
			// never claws back the award.
			if err := tx.Delete(&model.Vote{}, existing.ID).Error; err != nil {
				return fmt.Errorf("remove vote: %w", err)
			}
			outcome = VoteRemoved
			return nil
		}

		// Flip in place.
		if err := tx.Model(&model.Vote{}).
			Where("id = ?", existing.ID).
			Update("value", value).Error; err != nil {
			return fmt.Errorf("flip vote: %w", err)
		}
		outcome = VoteRecorded
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// Score is the signed sum of all votes on a deal, recomputed on read so it
// can never drift from the vote rows.
func (r *VoteRepository) Score(ctx context.Context, dealID uint) (int, error) {
	var score int
	err := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("deal_id = ?", dealID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&score).Error
	if err != nil {
		return 0, err
	}
	return score, nil
}

// UserVote returns the user's current vote value on a deal, 0 when none.
func (r *VoteRepository) UserVote(ctx context.Context, userID, dealID uint) (int, error) {
	var vote model.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND deal_id = ?", userID, dealID).
		First(&vote).Error
	if notFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return vote.Value, nil
}
