package handler

import (
	"net/http"
	"time"

	"dealhub/internal/middleware"
	"dealhub/internal/repository"
	"dealhub/pkg/database"
	"dealhub/pkg/jwtutil"
	"dealhub/pkg/logger"
	"dealhub/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Register handles tenant-scoped user registration. The same email may
// register independently under different tenants.
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)

	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	users := repository.NewUserRepository(database.GetDB())
	user, err := users.Register(c.Request().Context(), tenantID, req.Email, req.Name, req.Password)
	if err == repository.ErrDuplicateEmail {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}
	if err != nil {
		log.Error("Failed to register user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.Uint("tenant_id", tenantID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registered successfully",
		"user":    user,
	})
}

// Login authenticates a tenant-scoped user and issues a JWT carrying the
// identity fact consumed by the rest of the API.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	users := repository.NewUserRepository(database.GetDB())
	user, err := users.Authenticate(c.Request().Context(), tenantID, req.Email, req.Password)
	if err != nil {
		log.Warn("Login failed", zap.String("email", req.Email), zap.Uint("tenant_id", tenantID))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.TenantID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}
