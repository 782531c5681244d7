package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"dealhub/internal/model"

	"gorm.io/gorm"
)

// Reserved subdomains that are never assignable to a tenant.
var reservedSubdomains = map[string]bool{
	"www": true, "api": true, "admin": true, "app": true, "mail": true,
	"ftp": true, "smtp": true, "pop": true, "imap": true, "blog": true,
	"shop": true, "store": true, "support": true, "help": true,
	"status": true, "staging": true, "dev": true,
}

// subdomainPattern: lowercase letters, digits and hyphens, no leading or
// trailing hyphen. Length is checked separately (1-63).
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidSubdomain reports whether s is an assignable tenant subdomain.
func ValidSubdomain(s string) bool {
	if len(s) < 1 || len(s) > 63 {
		return false
	}
	if reservedSubdomains[s] {
		return false
	}
	return subdomainPattern.MatchString(s)
}

// ExtractSubdomain pulls the tenant subdomain out of a request host.
// Returns "" when the host has no usable subdomain: bare domains,
// localhost, IPs, and the www prefix all resolve through other paths.
func ExtractSubdomain(host string) string {
	h := host
	if i := strings.IndexByte(h, ':'); i >= 0 {
		h = h[:i]
	}
	if h == "localhost" || h == "127.0.0.1" {
		return ""
	}
	parts := strings.Split(h, ".")
	if len(parts) < 3 {
		return ""
	}
	if parts[0] == "www" {
		return ""
	}
	return strings.ToLower(parts[0])
}

// StripPort returns the host without a port suffix, for custom-domain lookup.
func StripPort(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}

// TenantRepository owns tenant lookup and lifecycle. Resolution is a pure
// read; creation leans on the unique subdomain index as the authority.
type TenantRepository struct {
	db *gorm.DB

	// defaultSubdomain is resolved when the host yields nothing. Empty
	// disables the fallback.
	defaultSubdomain string
}

// NewTenantRepository constructs a TenantRepository.
func NewTenantRepository(db *gorm.DB, defaultSubdomain string) *TenantRepository {
	return &TenantRepository{db: db, defaultSubdomain: defaultSubdomain}
}

// ResolveHost maps an inbound request host to its owning active tenant.
// Order: subdomain, then custom domain, then the configured default
// subdomain. Callers must treat ErrTenantNotFound as a client error and
// never fall through to an unscoped query.
func (r *TenantRepository) ResolveHost(ctx context.Context, host string) (*model.Tenant, error) {
	if sub := ExtractSubdomain(host); sub != "" && !reservedSubdomains[sub] {
		t, err := r.BySubdomain(ctx, sub)
		if err == nil {
			return t, nil
		}
		if err != ErrTenantNotFound {
			return nil, err
		}
	}

	if domain := StripPort(host); domain != "" {
		t, err := r.ByCustomDomain(ctx, domain)
		if err == nil {
			return t, nil
		}
		if err != ErrTenantNotFound {
			return nil, err
		}
	}

	if r.defaultSubdomain != "" {
		return r.BySubdomain(ctx, r.defaultSubdomain)
	}

	return nil, ErrTenantNotFound
}

// BySubdomain finds an active tenant by subdomain.
func (r *TenantRepository) BySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	var t model.Tenant
	err := r.db.WithContext(ctx).
		Where("subdomain = ? AND status = ?", strings.ToLower(subdomain), model.TenantStatusActive).
		First(&t).Error
	if notFound(err) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ByCustomDomain finds an active tenant by its custom domain.
func (r *TenantRepository) ByCustomDomain(ctx context.Context, domain string) (*model.Tenant, error) {
	var t model.Tenant
	err := r.db.WithContext(ctx).
		Where("custom_domain = ? AND status = ?", strings.ToLower(domain), model.TenantStatusActive).
		First(&t).Error
	if notFound(err) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ByID finds a tenant by primary key regardless of status.
func (r *TenantRepository) ByID(ctx context.Context, id uint) (*model.Tenant, error) {
	var t model.Tenant
	err := r.db.WithContext(ctx).First(&t, id).Error
	if notFound(err) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// defaultCategories is seeded into every new tenant.
var defaultCategories = []model.Category{
	{Name: "Electronics", Slug: "electronics", Icon: "📱", Order: 1},
	{Name: "Fashion", Slug: "fashion", Icon: "👔", Order: 2},
	{Name: "Home & Garden", Slug: "home-garden", Icon: "🏡", Order: 3},
	{Name: "Beauty", Slug: "beauty", Icon: "💄", Order: 4},
	{Name: "Sports", Slug: "sports", Icon: "⚽", Order: 5},
	{Name: "Travel", Slug: "travel", Icon: "✈️", Order: 6},
}

// Create validates the subdomain, lowercases it, and inserts the tenant plus
// its default categories in one transaction. A duplicate-key error from the
// store is the canonical "taken" signal; the format check never substitutes
// for it.
func (r *TenantRepository) Create(ctx context.Context, t *model.Tenant) error {
	t.Subdomain = strings.ToLower(t.Subdomain)
	if !ValidSubdomain(t.Subdomain) {
		return ErrInvalidSubdomain
	}
	if t.CustomDomain != nil {
		d := strings.ToLower(*t.CustomDomain)
		t.CustomDomain = &d
	}
	if t.Status == "" {
		t.Status = model.TenantStatusActive
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			if isDuplicate(err) {
				return ErrSubdomainTaken
			}
			return fmt.Errorf("create tenant: %w", err)
		}
		for _, c := range defaultCategories {
			c.TenantID = t.ID
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
		return nil
	})
}

// Update applies branding/status changes. Subdomain changes revalidate and
// can surface ErrSubdomainTaken from the unique index.
func (r *TenantRepository) Update(ctx context.Context, t *model.Tenant) error {
	t.Subdomain = strings.ToLower(t.Subdomain)
	if !ValidSubdomain(t.Subdomain) {
		return ErrInvalidSubdomain
	}
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		if isDuplicate(err) {
			return ErrSubdomainTaken
		}
		return fmt.Errorf("update tenant: %w", err)
	}
	return nil
}

// List returns every tenant, newest first.
func (r *TenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// Delete soft-deletes a tenant. Tenant-owned rows stay scoped to the dead
// tenant id and become unreachable through resolution.
func (r *TenantRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Tenant{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	return nil
}
