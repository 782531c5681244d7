package handler

import (
	"net/http"
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

// CreateShare builds a UTM-tagged destination URL and allocates a tenant-
// scoped short code for it. Authenticated users sharing a deal earn the
// fixed share points.
func CreateShare(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)
	ctx := c.Request().Context()

	var req struct {
		URL         string `json:"url"`
		DealID      *uint  `json:"deal_id,omitempty"`
		Platform    string `json:"platform"`
		UTMSource   string `json:"utm_source"`
		UTMMedium   string `json:"utm_medium"`
		UTMCampaign string `json:"utm_campaign"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse share request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url is required"})
	}

	platform := req.Platform
	if platform == "" {
		platform = "direct"
	}
	source := req.UTMSource
	if source == "" {
		source = platform
	}
	medium := req.UTMMedium
	if medium == "" {
		medium = "social"
	}
	campaign := req.UTMCampaign
	if campaign == "" {
		campaign = "deal_share"
	}

	utmURL, err := repository.BuildUTMURL(req.URL, source, medium, campaign)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url must be an absolute URL"})
	}

	var userID *uint
	if id := middleware.CurrentUserID(c); id != 0 {
		userID = &id
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	shares := repository.NewShareRepository(database.GetDB())
	share, err := shares.Create(ctx, utmURL, tenantID, repository.ShareAttribution{
		UserID:      userID,
		DealID:      req.DealID,
		Platform:    platform,
		UTMSource:   source,
		UTMMedium:   medium,
		UTMCampaign: campaign,
	})
	if err == repository.ErrInvalidURL {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url must be an absolute URL"})
	}
	if err != nil {
		log.Error("Failed to create share link", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create share link"})
	}
	prometheus.ShortLinkCreatedCounter.Inc()

	// Sharing a deal earns points, but only for signed-in users.
	if userID != nil && req.DealID != nil {
		points := repository.NewPointsRepository(database.GetDB())
		amount := model.PointValues[model.PointReasonShare]
		if err := points.Award(ctx, *userID, amount, model.PointReasonShare, "Shared a deal on "+platform); err != nil {
			log.Warn("Failed to award share points", zap.Error(err), zap.Uint("user_id", *userID))
		} else {
			prometheus.RecordPointsAwarded(model.PointReasonShare, amount)
		}
	}

	log.Info("Share link created",
		zap.String("short_code", share.ShortCode),
		zap.Uint("tenant_id", tenantID),
		zap.String("platform", platform))

	return c.JSON(http.StatusCreated, echo.Map{
		"short_code": share.ShortCode,
		"share":      share,
	})
}

// ResolveShortLink handles GET /s/:code. It redirects to the stored
// destination, counting the click; an unknown code redirects to the site
// root instead of surfacing an error page.
func ResolveShortLink(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)

	defer prometheus.TrackDBOperation("update")(time.Now())

	shares := repository.NewShareRepository(database.GetDB())
	target, err := shares.Resolve(c.Request().Context(), c.Param("code"), tenantID)
	if err == repository.ErrShareNotFound {
		prometheus.ShortLinkNotFoundCounter.Inc()
		return c.Redirect(http.StatusFound, "/")
	}
	if err != nil {
		log.Error("Failed to resolve short link", zap.Error(err))
		return c.Redirect(http.StatusFound, "/")
	}

	prometheus.ShortLinkClickCounter.Inc()
	return c.Redirect(http.StatusFound, target)
}

// ShareAnalytics lists a deal's share links with their click counts.
func ShareAnalytics(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)
	ctx := c.Request().Context()

	deals := repository.NewDealRepository(database.GetDB())
	deal, err := deals.BySlug(ctx, tenantID, c.Param("slug"))
	if err == repository.ErrDealNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	}
	if err != nil {
		log.Error("Failed to load deal", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve shares"})
	}

	shares := repository.NewShareRepository(database.GetDB())
	result, err := shares.ByDeal(ctx, deal.ID)
	if err != nil {
		log.Error("Failed to list shares", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve shares"})
	}
	return c.JSON(http.StatusOK, echo.Map{"shares": result})
}
