package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"dealhub/internal/model"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// DealRepository owns deal submission, tenant-scoped lookup, and the
// approval flow.
type DealRepository struct {
	db *gorm.DB
}

// NewDealRepository constructs a DealRepository.
func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

// Create inserts a pending deal, deriving its slug from the title. Slug
// uniqueness is per tenant and the unique index is the authority: on a
// duplicate-key error the slug gets a numeric suffix and the insert is
// retried, so two users submitting "50% off" concurrently both land.
func (r *DealRepository) Create(ctx context.Context, d *model.Deal) error {
	if u, err := url.Parse(d.AffiliateURL); err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidURL
	}
	if d.Status == "" {
		d.Status = model.DealStatusPending
	}

	base := slug.Make(d.Title)
	if base == "" {
		base = "deal"
	}

	d.Slug = base
	for attempt := 2; ; attempt++ {
		err := r.db.WithContext(ctx).Create(d).Error
		if err == nil {
			return nil
		}
		if !isDuplicate(err) {
			return fmt.Errorf("create deal: %w", err)
		}
		d.ID = 0
		d.Slug = fmt.Sprintf("%s-%d", base, attempt)
	}
}

// BySlug finds a deal by slug within the tenant. Lookups never cross the
// tenant boundary.
func (r *DealRepository) BySlug(ctx context.Context, tenantID uint, s string) (*model.Deal, error) {
	var d model.Deal
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND slug = ?", tenantID, s).
		First(&d).Error
	if notFound(err) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ByID finds a deal by primary key within the tenant.
func (r *DealRepository) ByID(ctx context.Context, tenantID, id uint) (*model.Deal, error) {
	var d model.Deal
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&d).Error
	if notFound(err) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns a tenant's deals filtered by status ("" for all), newest
// first.
func (r *DealRepository) List(ctx context.Context, tenantID uint, status string, limit int) ([]model.Deal, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var deals []model.Deal
	if err := q.Order("created_at DESC").Limit(limit).Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// SetStatus moves a deal to APPROVED or REJECTED. Approval awards the
// author the one-time submission points and writes the audit row in the
// same transaction as the status change, so a crash cannot apply one
// without the others.
func (r *DealRepository) SetStatus(ctx context.Context, tenantID, dealID uint, status string, performedBy uint) (*model.Deal, error) {
	if status != model.DealStatusApproved && status != model.DealStatusRejected {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	var deal model.Deal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, dealID).First(&deal).Error; err != nil {
			if notFound(err) {
				return ErrDealNotFound
			}
			return err
		}

		alreadyApproved := deal.Status == model.DealStatusApproved

		updates := map[string]interface{}{"status": status}
		if status == model.DealStatusApproved {
			now := time.Now()
			updates["approved_at"] = &now
			deal.ApprovedAt = &now
		} else {
			updates["approved_at"] = nil
			deal.ApprovedAt = nil
		}
		if err := tx.Model(&model.Deal{}).Where("id = ?", deal.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update deal status: %w", err)
		}
		deal.Status = status

		if status == model.DealStatusApproved && !alreadyApproved {
			if err := appendLedger(tx, deal.UserID, model.PointValues[model.PointReasonDealApproved],
				model.PointReasonDealApproved, "Deal approved: "+deal.Title); err != nil {
				return err
			}
		}

		audit := model.AuditLog{
			Action:      status,
			Entity:      "deal",
			EntityID:    deal.ID,
			Changes:     fmt.Sprintf(`{"status":%q}`, status),
			PerformedBy: performedBy,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deal, nil
}
