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

// referralSource reads the attribution channel for an engagement event.
func referralSource(c echo.Context) string {
	if ref := c.QueryParam("ref"); ref != "" {
		return ref
	}
	return "direct"
}

// CreateDeal handles deal submission by an authenticated user
func CreateDeal(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)
	userID := middleware.CurrentUserID(c)

	var req struct {
		Title         string  `json:"title"`
		Description   string  `json:"description"`
		AffiliateURL  string  `json:"affiliate_url"`
		Price         float64 `json:"price"`
		OriginalPrice float64 `json:"original_price"`
		CategoryID    *uint   `json:"category_id,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse deal submission", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" || req.AffiliateURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and affiliate_url are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	deal := model.Deal{
		TenantID:      tenantID,
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		AffiliateURL:  req.AffiliateURL,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		CategoryID:    req.CategoryID,
	}

	deals := repository.NewDealRepository(database.GetDB())
	if err := deals.Create(c.Request().Context(), &deal); err != nil {
		if err == repository.ErrInvalidURL {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "affiliate_url must be an absolute URL"})
		}
		log.Error("Failed to create deal", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deal submission failed"})
	}

	log.Info("Deal submitted",
		zap.Uint("deal_id", deal.ID),
		zap.String("slug", deal.Slug),
		zap.Uint("tenant_id", tenantID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Deal submitted for review",
		"deal":    deal,
	})
}

// ListDeals lists the tenant's deals, optionally filtered by status
func ListDeals(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)

	status := c.QueryParam("status")
	if status == "" {
		status = model.DealStatusApproved
	} else if status == "all" {
		status = ""
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	deals := repository.NewDealRepository(database.GetDB())
	result, err := deals.List(c.Request().Context(), tenantID, status, 50)
	if err != nil {
		log.Error("Failed to list deals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve deals"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deals": result})
}

// GetDeal returns a deal by slug, counting a view engagement as a side
// effect, together with its recomputed vote score.
func GetDeal(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)
	ctx := c.Request().Context()

	defer prometheus.TrackDBOperation("query")(time.Now())

	deals := repository.NewDealRepository(database.GetDB())
	deal, err := deals.BySlug(ctx, tenantID, c.Param("slug"))
	if err == repository.ErrDealNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	}
	if err != nil {
		log.Error("Failed to load deal", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve deal"})
	}

	analytics := repository.NewAnalyticsRepository(database.GetDB())
	if err := analytics.Record(ctx, deal.ID, time.Now(), referralSource(c), model.EngagementView); err != nil {
		// A lost view count must not break the page
		log.Warn("Failed to record view", zap.Error(err), zap.Uint("deal_id", deal.ID))
	} else {
		prometheus.RecordEngagement(model.EngagementView)
		deal.Views++
	}

	votes := repository.NewVoteRepository(database.GetDB())
	score, err := votes.Score(ctx, deal.ID)
	if err != nil {
		log.Error("Failed to compute score", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve deal"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"deal":  deal,
		"score": score,
	})
}

// ClickDeal counts a click engagement and returns the affiliate URL for the
// client to redirect to.
func ClickDeal(c echo.Context) error {
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
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to track click"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	analytics := repository.NewAnalyticsRepository(database.GetDB())
	if err := analytics.Record(ctx, deal.ID, time.Now(), referralSource(c), model.EngagementClick); err != nil {
		log.Error("Failed to record click", zap.Error(err), zap.Uint("deal_id", deal.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to track click"})
	}
	prometheus.RecordEngagement(model.EngagementClick)

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Click tracked",
		"redirect_url": deal.AffiliateURL,
	})
}

// ApproveDeal moves a deal to APPROVED or REJECTED (admin/moderator only).
// Approval awards the author submission points exactly once.
func ApproveDeal(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)
	adminID := middleware.CurrentUserID(c)

	var req struct {
		DealID uint   `json:"deal_id"`
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Status != model.DealStatusApproved && req.Status != model.DealStatusRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be APPROVED or REJECTED"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	deals := repository.NewDealRepository(database.GetDB())
	deal, err := deals.SetStatus(c.Request().Context(), tenantID, req.DealID, req.Status, adminID)
	if err == repository.ErrDealNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	}
	if err != nil {
		log.Error("Failed to update deal status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approval failed"})
	}

	if req.Status == model.DealStatusApproved {
		prometheus.RecordPointsAwarded(model.PointReasonDealApproved, model.PointValues[model.PointReasonDealApproved])
	}

	log.Info("Deal status changed",
		zap.Uint("deal_id", deal.ID),
		zap.String("status", req.Status),
		zap.Uint("performed_by", adminID))

	return c.JSON(http.StatusOK, deal)
}
