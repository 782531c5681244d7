package handler

import (
	"net/http"
	"strconv"
	"time"

	"dealhub/internal/middleware"
	"dealhub/internal/repository"
	"dealhub/pkg/database"
	"dealhub/pkg/logger"
	"dealhub/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetMyPoints returns the authenticated user's balance and recent ledger
// entries.
func GetMyPoints(c echo.Context) error {
	log := logger.FromContext(c)
	userID := middleware.CurrentUserID(c)
	ctx := c.Request().Context()

	defer prometheus.TrackDBOperation("query")(time.Now())

	points := repository.NewPointsRepository(database.GetDB())
	balance, err := points.Balance(ctx, userID)
	if err == repository.ErrUserNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		log.Error("Failed to read balance", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve points"})
	}

	history, err := points.History(ctx, userID, 50)
	if err != nil {
		log.Error("Failed to read point history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve points"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"points":  balance,
		"history": history,
	})
}

// SpendPoints deducts points from the authenticated user's balance, e.g.
// for redeeming a perk. Insufficient balance is a normal business outcome.
func SpendPoints(c echo.Context) error {
	log := logger.FromContext(c)
	userID := middleware.CurrentUserID(c)

	var req struct {
		Amount      int    `json:"amount"`
		Reason      string `json:"reason"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	points := repository.NewPointsRepository(database.GetDB())
	err := points.Deduct(c.Request().Context(), userID, req.Amount, req.Reason, req.Description)
	switch err {
	case nil:
	case repository.ErrInvalidAmount:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	case repository.ErrInsufficientPoints:
		prometheus.InsufficientPointsCounter.Inc()
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient points"})
	case repository.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	default:
		log.Error("Failed to deduct points", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deduct points"})
	}

	prometheus.PointsDeductedCounter.Add(float64(req.Amount))

	balance, err := points.Balance(c.Request().Context(), userID)
	if err != nil {
		log.Error("Failed to read balance", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read balance"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Points deducted",
		"points":  balance,
	})
}

// GetLeaderboard returns the tenant's top users by balance.
func GetLeaderboard(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)

	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	points := repository.NewPointsRepository(database.GetDB())
	entries, err := points.Leaderboard(c.Request().Context(), tenantID, limit)
	if err != nil {
		log.Error("Failed to build leaderboard", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve leaderboard"})
	}
	return c.JSON(http.StatusOK, echo.Map{"leaderboard": entries})
}
