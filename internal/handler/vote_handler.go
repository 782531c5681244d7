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

// VoteDeal casts a ±1 vote on a deal for the authenticated user. The same
// value twice removes the vote; the opposite value flips it in place.
func VoteDeal(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := middleware.CurrentTenantID(c)
	userID := middleware.CurrentUserID(c)
	ctx := c.Request().Context()

	var req struct {
		Value int `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse vote request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Value != model.VoteUp && req.Value != model.VoteDown {
		prometheus.InvalidVoteCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vote value"})
	}

	deals := repository.NewDealRepository(database.GetDB())
	deal, err := deals.BySlug(ctx, tenantID, c.Param("slug"))
	if err == repository.ErrDealNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	}
	if err != nil {
		log.Error("Failed to load deal", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to vote"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	votes := repository.NewVoteRepository(database.GetDB())
	outcome, err := votes.Cast(ctx, userID, deal.ID, req.Value)
	if err == repository.ErrInvalidVote {
		prometheus.InvalidVoteCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vote value"})
	}
	if err != nil {
		log.Error("Failed to cast vote", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to vote"})
	}
	prometheus.RecordVote(outcome)

	score, err := votes.Score(ctx, deal.ID)
	if err != nil {
		log.Error("Failed to compute score", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to vote"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"outcome": outcome,
		"score":   score,
	})
}

// DealScore returns the recomputed vote score for a deal.
func DealScore(c echo.Context) error {
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
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve score"})
	}

	votes := repository.NewVoteRepository(database.GetDB())
	score, err := votes.Score(ctx, deal.ID)
	if err != nil {
		log.Error("Failed to compute score", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve score"})
	}
	return c.JSON(http.StatusOK, echo.Map{"score": score})
}
