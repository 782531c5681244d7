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

// AdminAnalytics returns the tenant's engagement overview: lifetime totals,
// daily bucket sums over an explicit window, referral-source breakdown and
// the most-clicked deals.
func AdminAnalytics(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)
	ctx := c.Request().Context()

	days := 30
	if v := c.QueryParam("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 365 {
			days = n
		}
	}
	start := repository.DayUTC(time.Now().AddDate(0, 0, -days))

	defer prometheus.TrackDBOperation("query")(time.Now())

	analytics := repository.NewAnalyticsRepository(database.GetDB())

	overview, err := analytics.TenantOverview(ctx, tenantID)
	if err != nil {
		log.Error("Failed to compute overview", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve analytics"})
	}

	daily, err := analytics.Daily(ctx, tenantID, start)
	if err != nil {
		log.Error("Failed to compute daily analytics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve analytics"})
	}

	sources, err := analytics.BySource(ctx, tenantID, start)
	if err != nil {
		log.Error("Failed to compute referral sources", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve analytics"})
	}

	topDeals, err := analytics.TopDeals(ctx, tenantID, 10)
	if err != nil {
		log.Error("Failed to list top deals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve analytics"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"overview":         overview,
		"daily":            daily,
		"referral_sources": sources,
		"top_deals":        topDeals,
	})
}
