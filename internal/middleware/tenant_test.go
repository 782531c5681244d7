package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"dealhub/internal/model"
	"dealhub/internal/repository"
	"dealhub/internal/testutil"

	"github.com/labstack/echo/v4"
)

func TestTenantContext(t *testing.T) {
	testutil.InitTest()
	db := testutil.OpenTestDB(t)

	acme := testutil.SeedTenant(t, db, "acme")
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

	repo := repository.NewTenantRepository(db, "")
	e := echo.New()
	handler := TenantContext(repo)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"tenant_id": CurrentTenantID(c)})
	})

	run := func(host string, headers map[string]string) (*httptest.ResponseRecorder, echo.Context) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = host
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		return rec, c
	}

	t.Run("resolves by host", func(t *testing.T) {
		rec, c := run("acme.example.com", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := CurrentTenantID(c); got != acme.ID {
			t.Errorf("tenant_id = %d, want %d", got, acme.ID)
		}
		if tenant := CurrentTenant(c); tenant == nil || tenant.Subdomain != "acme" {
			t.Errorf("tenant = %+v", tenant)
		}
	})

	t.Run("subdomain header wins over host", func(t *testing.T) {
		_, c := run("branded.example.com", map[string]string{
			HeaderTenantSubdomain: "acme",
		})
		if got := CurrentTenantID(c); got != acme.ID {
			t.Errorf("tenant_id = %d, want %d", got, acme.ID)
		}
	})

	t.Run("domain header resolves custom domain", func(t *testing.T) {
		_, c := run("internal-lb.local", map[string]string{
			HeaderTenantDomain: "dealsite.io",
		})
		if got := CurrentTenantID(c); got != branded.ID {
			t.Errorf("tenant_id = %d, want %d", got, branded.ID)
		}
	})

	t.Run("unknown tenant is a 404", func(t *testing.T) {
		rec, _ := run("nobody.example.com", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
