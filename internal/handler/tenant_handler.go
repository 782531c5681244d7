package handler

import (
	"net/http"
	"strconv"
	"time"

	"dealhub/internal/middleware"
	"dealhub/internal/model"
	"dealhub/internal/repository"
	"dealhub/pkg/database"
	"dealhub/pkg/logger"
	"dealhub/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func tenantRepo() *repository.TenantRepository {
	return repository.NewTenantRepository(database.GetDB(), "")
}

// CurrentTenant returns the tenant resolved from the request host. The
// resolution itself happened in middleware; unknown hosts never reach here.
func CurrentTenant(c echo.Context) error {
	tenant := middleware.CurrentTenant(c)
	if tenant == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown tenant"})
	}
	return c.JSON(http.StatusOK, tenant)
}

// CreateTenant handles tenant creation (admin only)
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	var req struct {
		Name         string  `json:"name"`
		Subdomain    string  `json:"subdomain"`
		CustomDomain *string `json:"custom_domain,omitempty"`
		BrandName    string  `json:"brand_name"`
		Tagline      string  `json:"tagline"`
		Description  string  `json:"description"`
		OwnerEmail   string  `json:"owner_email"`
		OwnerName    string  `json:"owner_name"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Subdomain == "" || req.BrandName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, subdomain and brand_name are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tenant := model.Tenant{
		Name:         req.Name,
		Subdomain:    req.Subdomain,
		CustomDomain: req.CustomDomain,
		BrandName:    req.BrandName,
		Tagline:      req.Tagline,
		Description:  req.Description,
		OwnerEmail:   req.OwnerEmail,
		OwnerName:    req.OwnerName,
		Status:       model.TenantStatusActive,
	}

	err := tenantRepo().Create(c.Request().Context(), &tenant)
	switch err {
	case nil:
	case repository.ErrInvalidSubdomain:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subdomain format; use lowercase letters, numbers and hyphens"})
	case repository.ErrSubdomainTaken:
		return c.JSON(http.StatusConflict, echo.Map{"error": "subdomain is already taken"})
	default:
		log.Error("Failed to create tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	log.Info("Tenant created",
		zap.String("subdomain", tenant.Subdomain),
		zap.Uint("id", tenant.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tenant created successfully",
		"tenant":  tenant,
	})
}

// ListTenants lists every tenant (admin only)
func ListTenants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())

	tenants, err := tenantRepo().List(c.Request().Context())
	if err != nil {
		log.Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tenants": tenants})
}

// GetTenant retrieves tenant details by id (admin only)
func GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("access")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	tenant, err := tenantRepo().ByID(c.Request().Context(), uint(id))
	if err == repository.ErrTenantNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}
	if err != nil {
		log.Error("Failed to load tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenant"})
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant applies branding/status changes (admin only)
func UpdateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	repo := tenantRepo()
	tenant, err := repo.ByID(c.Request().Context(), uint(id))
	if err == repository.ErrTenantNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}
	if err != nil {
		log.Error("Failed to load tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenant"})
	}

	if err := c.Bind(tenant); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	tenant.ID = uint(id) // id comes from the path, never the body

	defer prometheus.TrackDBOperation("update")(time.Now())

	err = repo.Update(c.Request().Context(), tenant)
	switch err {
	case nil:
	case repository.ErrInvalidSubdomain:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subdomain format"})
	case repository.ErrSubdomainTaken:
		return c.JSON(http.StatusConflict, echo.Map{"error": "subdomain is already taken"})
	default:
		log.Error("Failed to update tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Tenant updated successfully",
		"tenant":  tenant,
	})
}

// DeleteTenant soft-deletes a tenant (admin only)
func DeleteTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	err = tenantRepo().Delete(c.Request().Context(), uint(id))
	if err == repository.ErrTenantNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}
	if err != nil {
		log.Error("Failed to delete tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant deletion failed"})
	}

	log.Info("Tenant deleted", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Tenant deleted successfully"})
}
