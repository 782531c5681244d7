package middleware

import (
	"net/http"

	"dealhub/internal/model"
	"dealhub/internal/repository"
	"dealhub/pkg/logger"
	"dealhub/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Header names an upstream rewriting layer may use to hand us pre-parsed
// routing hints. When absent the Host header is parsed directly.
const (
	HeaderTenantSubdomain = "X-Tenant-Subdomain"
	HeaderTenantDomain    = "X-Tenant-Domain"
)

// TenantContext resolves the request host to its owning active tenant and
// stores it in the echo context. Resolution failure is a client error; no
// request ever falls through to an unscoped query.
func TenantContext(tenants *repository.TenantRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)
			ctx := c.Request().Context()

			var tenant *model.Tenant
			var err error

			// Pre-parsed hints win over raw Host parsing.
			if sub := c.Request().Header.Get(HeaderTenantSubdomain); sub != "" {
				tenant, err = tenants.BySubdomain(ctx, sub)
			} else if domain := c.Request().Header.Get(HeaderTenantDomain); domain != "" {
				tenant, err = tenants.ByCustomDomain(ctx, domain)
			} else {
				tenant, err = tenants.ResolveHost(ctx, c.Request().Host)
			}

			if err == repository.ErrTenantNotFound {
				prometheus.RecordTenantResolution("not_found")
				log.Warn("No tenant for host", zap.String("host", c.Request().Host))
				return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown tenant"})
			}
			if err != nil {
				prometheus.RecordTenantResolution("error")
				log.Error("Tenant resolution failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
			}

			prometheus.RecordTenantResolution("ok")
			c.Set("tenant", tenant)
			c.Set("tenant_id", tenant.ID)
			return next(c)
		}
	}
}

// CurrentTenant returns the resolved tenant from the context.
func CurrentTenant(c echo.Context) *model.Tenant {
	t, _ := c.Get("tenant").(*model.Tenant)
	return t
}

// CurrentTenantID returns the resolved tenant id from the context, 0 when
// resolution has not run.
func CurrentTenantID(c echo.Context) uint {
	id, _ := c.Get("tenant_id").(uint)
	return id
}
