package repository

import (
	"context"
	"strings"
	"testing"

	"dealhub/internal/model"
	"dealhub/internal/testutil"
)

func TestValidSubdomain(t *testing.T) {
	tests := []struct {
		name      string
		subdomain string
		want      bool
	}{
		{"simple", "acme", true},
		{"single char", "a", true},
		{"with digits", "deals24", true},
		{"with hyphen", "my-deals", true},
		{"max length", strings.Repeat("a", 63), true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", 64), false},
		{"leading hyphen", "-acme", false},
		{"trailing hyphen", "acme-", false},
		{"uppercase", "Acme", false},
		{"space", "my deals", false},
		{"dot", "a.b", false},
		{"reserved www", "www", false},
		{"reserved api", "api", false},
		{"reserved admin", "admin", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidSubdomain(tt.subdomain); got != tt.want {
				t.Errorf("ValidSubdomain(%q) = %v, want %v", tt.subdomain, got, tt.want)
			}
		})
	}
}

func TestExtractSubdomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"acme.example.com", "acme"},
		{"acme.example.com:8080", "acme"},
		{"ACME.example.com", "acme"},
		{"www.example.com", ""},
		{"example.com", ""},
		{"localhost", ""},
		{"localhost:3000", ""},
		{"127.0.0.1", ""},
		{"deep.acme.example.com", "deep"},
	}
	for _, tt := range tests {
		if got := ExtractSubdomain(tt.host); got != tt.want {
			t.Errorf("ExtractSubdomain(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestResolveHost(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()

	acme := testutil.SeedTenant(t, db, "acme")
	main := testutil.SeedTenant(t, db, "main")

	domain := "dealsite.io"
	branded := &model.Tenant{
		Name:         "Branded",
		Subdomain:    "branded",
		CustomDomain: &domain,
		Status:       model.TenantStatusActive,
	}
	if err := db.Create(branded).Error; err != nil {
		t.Fatalf("failed to seed branded tenant: %v", err)
	}

	inactive := &model.Tenant{
		Name:      "Gone",
		Subdomain: "gone",
		Status:    model.TenantStatusInactive,
	}
	if err := db.Create(inactive).Error; err != nil {
		t.Fatalf("failed to seed inactive tenant: %v", err)
	}

	repo := NewTenantRepository(db, "main")

	tests := []struct {
		name   string
		host   string
		wantID uint
	}{
		{"by subdomain", "acme.example.com", acme.ID},
		{"by subdomain with port", "acme.example.com:8080", acme.ID},
		{"by custom domain", "dealsite.io", branded.ID},
		{"by custom domain with port", "dealsite.io:443", branded.ID},
		{"bare domain falls back to default", "example.com", main.ID},
		{"localhost falls back to default", "localhost:8080", main.ID},
		{"www falls back to default", "www.example.com", main.ID},
		{"inactive subdomain falls back to default", "gone.example.com", main.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ResolveHost(ctx, tt.host)
			if err != nil {
				t.Fatalf("ResolveHost(%q) error: %v", tt.host, err)
			}
			if got.ID != tt.wantID {
				t.Errorf("ResolveHost(%q) = tenant %d, want %d", tt.host, got.ID, tt.wantID)
			}
		})
	}

	t.Run("no default yields not found", func(t *testing.T) {
		strict := NewTenantRepository(db, "")
		if _, err := strict.ResolveHost(ctx, "nobody.example.com"); err != ErrTenantNotFound {
			t.Errorf("expected ErrTenantNotFound, got %v", err)
		}
	})
}

func TestTenantCreate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	repo := NewTenantRepository(db, "")

	tenant := &model.Tenant{Name: "Acme Deals", Subdomain: "ACME"}
	if err := repo.Create(ctx, tenant); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tenant.Subdomain != "acme" {
		t.Errorf("subdomain not lowercased: %q", tenant.Subdomain)
	}
	if tenant.Status != model.TenantStatusActive {
		t.Errorf("status not defaulted: %q", tenant.Status)
	}

	var categories int64
	if err := db.Model(&model.Category{}).Where("tenant_id = ?", tenant.ID).Count(&categories).Error; err != nil {
		t.Fatalf("failed to count categories: %v", err)
	}
	if categories != 6 {
		t.Errorf("expected 6 default categories, got %d", categories)
	}

	t.Run("duplicate subdomain", func(t *testing.T) {
		err := repo.Create(ctx, &model.Tenant{Name: "Copycat", Subdomain: "acme"})
		if err != ErrSubdomainTaken {
			t.Errorf("expected ErrSubdomainTaken, got %v", err)
		}
	})

	t.Run("reserved subdomain", func(t *testing.T) {
		err := repo.Create(ctx, &model.Tenant{Name: "Bad", Subdomain: "www"})
		if err != ErrInvalidSubdomain {
			t.Errorf("expected ErrInvalidSubdomain, got %v", err)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		err := repo.Create(ctx, &model.Tenant{Name: "Bad", Subdomain: "-acme"})
		if err != ErrInvalidSubdomain {
			t.Errorf("expected ErrInvalidSubdomain, got %v", err)
		}
	})
}

func TestTenantDelete(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	repo := NewTenantRepository(db, "")

	tenant := testutil.SeedTenant(t, db, "doomed")
	if err := repo.Delete(ctx, tenant.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Soft-deleted tenants no longer resolve.
	if _, err := repo.BySubdomain(ctx, "doomed"); err != ErrTenantNotFound {
		t.Errorf("expected ErrTenantNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, tenant.ID); err != ErrTenantNotFound {
		t.Errorf("expected ErrTenantNotFound on double delete, got %v", err)
	}
}
