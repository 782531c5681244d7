// Package testutil provides shared helpers for repository and handler tests:
// an in-memory database wired the same way production is (TranslateError on,
// so duplicate-key detection behaves identically) plus seed helpers.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"dealhub/internal/model"
	"dealhub/pkg/config"
	"dealhub/pkg/jwtutil"
	"dealhub/prometheus"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var initOnce sync.Once

// InitTest initializes the process-wide pieces handlers depend on. Metrics
// registration must happen exactly once per process, hence the sync.Once.
func InitTest() {
	initOnce.Do(func() {
		prometheus.InitMetrics(&config.Config{
			Metrics: config.MetricsConfig{Prefix: "test"},
		})
		jwtutil.Initialize(&config.JWTConfig{
			SigningKey:      "test-signing-key",
			ExpirationHours: 1,
		})
	})
}

// OpenTestDB returns a fresh in-memory database with all models migrated.
// Connections are capped at one so concurrent test goroutines serialize on
// the same in-memory store instead of each opening an empty one.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Category{},
		&model.Deal{},
		&model.Vote{},
		&model.PointHistory{},
		&model.Share{},
		&model.DealAnalytics{},
		&model.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test models: %v", err)
	}

	return db
}

// SeedTenant inserts an active tenant reachable on the given subdomain.
func SeedTenant(t *testing.T, db *gorm.DB, subdomain string) *model.Tenant {
	t.Helper()

	tenant := &model.Tenant{
		Name:      subdomain,
		Subdomain: subdomain,
		Status:    model.TenantStatusActive,
	}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("failed to seed tenant %q: %v", subdomain, err)
	}
	return tenant
}

// SeedUser inserts a user with the password "password123".
func SeedUser(t *testing.T, db *gorm.DB, tenantID uint, email string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &model.User{
		TenantID:          tenantID,
		Email:             email,
		Name:              "Test User",
		Password:          string(hash),
		Role:              model.RoleUser,
		ShowOnLeaderboard: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %q: %v", email, err)
	}
	return user
}

// SeedDeal inserts an approved deal.
func SeedDeal(t *testing.T, db *gorm.DB, tenantID, userID uint, slug string) *model.Deal {
	t.Helper()

	deal := &model.Deal{
		TenantID:     tenantID,
		UserID:       userID,
		Slug:         slug,
		Title:        slug,
		AffiliateURL: "https://shop.example.com/" + slug,
		Status:       model.DealStatusApproved,
	}
	if err := db.Create(deal).Error; err != nil {
		t.Fatalf("failed to seed deal %q: %v", slug, err)
	}
	return deal
}

// NewJSONRequest builds an echo context for a JSON request. The returned
// recorder captures the response.
func NewJSONRequest(e *echo.Echo, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// DecodeBody unmarshals the recorded response body into out.
func DecodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// AuthHeader returns the Authorization header value for a token issued to
// the given user.
func AuthHeader(t *testing.T, user *model.User) string {
	t.Helper()
	InitTest()
	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.TenantID, user.Role)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token
}
