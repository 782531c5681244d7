package repository

import (
	"context"
	"fmt"
	"net/url"

	"dealhub/internal/model"
	"dealhub/pkg/shortcode"
	"dealhub/prometheus"

	"gorm.io/gorm"
)

// ShareAttribution carries the optional tracking fields for a short link.
type ShareAttribution struct {
	UserID      *uint
	DealID      *uint
	Platform    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// ShareRepository owns short-code allocation and redirect resolution.
type ShareRepository struct {
	db *gorm.DB
}

// NewShareRepository constructs a ShareRepository.
func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create allocates a short code for originalUrl within the tenant. Codes are
// drawn at random and inserted directly; a duplicate-key error from the
// (short_code, tenant_id) index is the collision signal and triggers a
// redraw. The loop is unbounded on purpose: with 62^6 codes per tenant the
// collision probability stays on the birthday bound and a fixed retry cap
// could fail legitimately under load.
func (r *ShareRepository) Create(ctx context.Context, originalURL string, tenantID uint, attr ShareAttribution) (*model.Share, error) {
	u, err := url.Parse(originalURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, ErrInvalidURL
	}

	platform := attr.Platform
	if platform == "" {
		platform = "direct"
	}

	for {
		share := &model.Share{
			TenantID:    tenantID,
			ShortCode:   shortcode.Generate(),
			OriginalURL: originalURL,
			UserID:      attr.UserID,
			DealID:      attr.DealID,
			Platform:    platform,
			UTMSource:   attr.UTMSource,
			UTMMedium:   attr.UTMMedium,
			UTMCampaign: attr.UTMCampaign,
		}

		err := r.db.WithContext(ctx).Create(share).Error
		if err == nil {
			return share, nil
		}
		if isDuplicate(err) {
			// code taken in this tenant, redraw
			prometheus.RecordShortCodeCollision()
			continue
		}
		return nil, fmt.Errorf("create share: %w", err)
	}
}

// Resolve returns the destination URL for a code within the tenant and
// counts the click as a side effect. The increment is a relative delta at
// the store so concurrent clicks are never lost.
func (r *ShareRepository) Resolve(ctx context.Context, code string, tenantID uint) (string, error) {
	var share model.Share
	err := r.db.WithContext(ctx).
		Where("short_code = ? AND tenant_id = ?", code, tenantID).
		First(&share).Error
	if notFound(err) {
		return "", ErrShareNotFound
	}
	if err != nil {
		return "", err
	}

	if err := r.db.WithContext(ctx).Model(&model.Share{}).
		Where("id = ?", share.ID).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error; err != nil {
		return "", fmt.Errorf("count click: %w", err)
	}

	return share.OriginalURL, nil
}

// ByCode fetches a share without counting a click.
func (r *ShareRepository) ByCode(ctx context.Context, code string, tenantID uint) (*model.Share, error) {
	var share model.Share
	err := r.db.WithContext(ctx).
		Where("short_code = ? AND tenant_id = ?", code, tenantID).
		First(&share).Error
	if notFound(err) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// ByDeal lists a deal's share links, most clicked first.
func (r *ShareRepository) ByDeal(ctx context.Context, dealID uint) ([]model.Share, error) {
	var shares []model.Share
	if err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("clicks DESC").
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

// BuildUTMURL appends UTM query parameters to base. Invalid bases surface
// ErrInvalidURL before any share row exists.
func BuildUTMURL(base, source, medium, campaign string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", ErrInvalidURL
	}
	q := u.Query()
	if source != "" {
		q.Set("utm_source", source)
	}
	if medium != "" {
		q.Set("utm_medium", medium)
	}
	if campaign != "" {
		q.Set("utm_campaign", campaign)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
