package repository

import (
	"context"
	"fmt"
	"time"

	"dealhub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DayUTC truncates t to the start of its calendar day in UTC. Buckets are
// always keyed in one reference timezone, never tenant-local time.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyTotals is the per-day aggregate over a window.
type DailyTotals struct {
	Date        time.Time `json:"date"`
	Views       int64     `json:"views"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
}

// SourceTotals is the per-referral-source aggregate over a window.
type SourceTotals struct {
	ReferralSource string `json:"referral_source"`
	Views          int64  `json:"views"`
	Clicks         int64  `json:"clicks"`
	Conversions    int64  `json:"conversions"`
}

// Overview is the tenant-wide totals block of the admin analytics view.
type Overview struct {
	TotalDeals       int64 `json:"total_deals"`
	PendingDeals     int64 `json:"pending_deals"`
	TotalUsers       int64 `json:"total_users"`
	TotalViews       int64 `json:"total_views"`
	TotalClicks      int64 `json:"total_clicks"`
	TotalConversions int64 `json:"total_conversions"`
}

// AnalyticsRepository owns the per-day, per-referral-source engagement
// buckets and the matching deal lifetime counters.
type AnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs an AnalyticsRepository.
func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// kindColumn maps an engagement kind to its counter column.
func kindColumn(kind string) (string, bool) {
	switch kind {
	case model.EngagementView:
		return "views", true
	case model.EngagementClick:
		return "clicks", true
	case model.EngagementConversion:
		return "conversions", true
	}
	return "", false
}

// Record counts one engagement event: it upserts the (deal, day, source)
// bucket (insert with 1, or atomically increment the existing row) and
// bumps the deal's lifetime counter, all in one transaction so the bucket
// sums and the denormalized counter cannot diverge.
func (r *AnalyticsRepository) Record(ctx context.Context, dealID uint, at time.Time, referralSource, kind string) error {
	col, ok := kindColumn(kind)
	if !ok {
		return ErrInvalidKind
	}
	if referralSource == "" {
		referralSource = "direct"
	}
	day := DayUTC(at)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bucket := model.DealAnalytics{
			DealID:         dealID,
			Date:           day,
			ReferralSource: referralSource,
		}
		switch kind {
		case model.EngagementView:
			bucket.Views = 1
		case model.EngagementClick:
			bucket.Clicks = 1
		case model.EngagementConversion:
			bucket.Conversions = 1
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "deal_id"}, {Name: "date"}, {Name: "referral_source"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				col: gorm.Expr("deal_analytics." + col + " + 1"),
			}),
		}).Create(&bucket).Error; err != nil {
			return fmt.Errorf("upsert bucket: %w", err)
		}

		res := tx.Model(&model.Deal{}).
			Where("id = ?", dealID).
			UpdateColumn(col, gorm.Expr(col+" + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("bump deal counter: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDealNotFound
		}
		return nil
	})
}

// Daily sums buckets per day for a tenant's deals over [start, now]. No
// implicit timezone conversion happens; start is used as given.
func (r *AnalyticsRepository) Daily(ctx context.Context, tenantID uint, start time.Time) ([]DailyTotals, error) {
	var rows []DailyTotals
	err := r.db.WithContext(ctx).
		Model(&model.DealAnalytics{}).
		Select("deal_analytics.date AS date, SUM(deal_analytics.views) AS views, SUM(deal_analytics.clicks) AS clicks, SUM(deal_analytics.conversions) AS conversions").
		Joins("JOIN deals ON deals.id = deal_analytics.deal_id").
		Where("deals.tenant_id = ? AND deal_analytics.date >= ?", tenantID, start).
		Group("deal_analytics.date").
		Order("deal_analytics.date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BySource sums buckets per referral source for a tenant over [start, now].
func (r *AnalyticsRepository) BySource(ctx context.Context, tenantID uint, start time.Time) ([]SourceTotals, error) {
	var rows []SourceTotals
	err := r.db.WithContext(ctx).
		Model(&model.DealAnalytics{}).
		Select("deal_analytics.referral_source AS referral_source, SUM(deal_analytics.views) AS views, SUM(deal_analytics.clicks) AS clicks, SUM(deal_analytics.conversions) AS conversions").
		Joins("JOIN deals ON deals.id = deal_analytics.deal_id").
		Where("deals.tenant_id = ? AND deal_analytics.date >= ?", tenantID, start).
		Group("deal_analytics.referral_source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TenantOverview computes the tenant-wide totals block.
func (r *AnalyticsRepository) TenantOverview(ctx context.Context, tenantID uint) (*Overview, error) {
	var o Overview

	if err := r.db.WithContext(ctx).Model(&model.Deal{}).
		Where("tenant_id = ?", tenantID).Count(&o.TotalDeals).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Deal{}).
		Where("tenant_id = ? AND status = ?", tenantID, model.DealStatusPending).
		Count(&o.PendingDeals).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ?", tenantID).Count(&o.TotalUsers).Error; err != nil {
		return nil, err
	}

	type sums struct {
		Views       int64
		Clicks      int64
		Conversions int64
	}
	var s sums
	if err := r.db.WithContext(ctx).Model(&model.Deal{}).
		Select("COALESCE(SUM(views),0) AS views, COALESCE(SUM(clicks),0) AS clicks, COALESCE(SUM(conversions),0) AS conversions").
		Where("tenant_id = ?", tenantID).
		Scan(&s).Error; err != nil {
		return nil, err
	}
	o.TotalViews, o.TotalClicks, o.TotalConversions = s.Views, s.Clicks, s.Conversions

	return &o, nil
}

// TopDeals lists the tenant's approved deals with the most lifetime clicks.
func (r *AnalyticsRepository) TopDeals(ctx context.Context, tenantID uint, limit int) ([]model.Deal, error) {
	if limit <= 0 {
		limit = 10
	}
	var deals []model.Deal
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, model.DealStatusApproved).
		Order("clicks DESC").
		Limit(limit).
		Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}
