package repository

import (
	"context"
	"fmt"

	"dealhub/internal/model"

	"gorm.io/gorm"
)

// LeaderboardEntry is one row of the public ranking.
type LeaderboardEntry struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// PointsRepository owns the append-only point ledger and the denormalized
// User.Points balance. The two are only ever written together, inside one
// transaction, so a crash can never leave them in disagreement.
type PointsRepository struct {
	db *gorm.DB
}

// NewPointsRepository constructs a PointsRepository.
func NewPointsRepository(db *gorm.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

// appendLedger writes one ledger row and applies the matching relative-delta
// balance update. Must run inside a transaction; callers that bundle a
// ledger write with another mutation (vote create, deal approval) pass
// their own tx so the whole action is atomic.
func appendLedger(tx *gorm.DB, userID uint, delta int, reason, description string) error {
	entry := model.PointHistory{
		UserID:      userID,
		Points:      delta,
		Reason:      reason,
		Description: description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	res := tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("update balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Award credits amount points to the user.
func (r *PointsRepository) Award(ctx context.Context, userID uint, amount int, reason, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return appendLedger(tx, userID, amount, reason, description)
	})
}

// Deduct debits amount points from the user. An insufficient balance is a
// business outcome: no ledger row is appended and the balance is untouched.
// The balance guard lives in the UPDATE's WHERE clause, so two concurrent
// deductions can never both pass a stale read and drive the balance
// negative.
func (r *PointsRepository) Deduct(ctx context.Context, userID uint, amount int, reason, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ? AND points >= ?", userID, amount).
			UpdateColumn("points", gorm.Expr("points - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("update balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&model.User{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return ErrUserNotFound
			}
			return ErrInsufficientPoints
		}
		entry := model.PointHistory{
			UserID:      userID,
			Points:      -amount,
			Reason:      reason,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append ledger: %w", err)
		}
		return nil
	})
}

// Balance reads the cached balance for a user.
func (r *PointsRepository) Balance(ctx context.Context, userID uint) (int, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select("points").First(&user, userID).Error
	if notFound(err) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return user.Points, nil
}

// History returns the newest ledger entries for a user.
func (r *PointsRepository) History(ctx context.Context, userID uint, limit int) ([]model.PointHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []model.PointHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Leaderboard returns the top-N users of a tenant by balance, excluding
// banned users and users who opted out of public ranking. Ties break on id
// ascending, which is stable but deliberately unadvertised.
func (r *PointsRepository) Leaderboard(ctx context.Context, tenantID uint, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []LeaderboardEntry
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("id AS user_id, name, points").
		Where("tenant_id = ? AND banned = ? AND show_on_leaderboard = ?", tenantID, false, true).
		Order("points DESC, id ASC").
		Limit(limit).
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
