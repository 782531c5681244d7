package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"dealhub/internal/model"
	"dealhub/internal/repository"
	"dealhub/internal/testutil"
	"dealhub/pkg/database"

	"github.com/labstack/echo/v4"
)

func TestAdminAnalyticsHandler(t *testing.T) {
	testutil.InitTest()
	db := testutil.OpenTestDB(t)
	database.SetDB(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	user := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	deal := testutil.SeedDeal(t, db, tenant.ID, user.ID, "great-offer")

	analytics := repository.NewAnalyticsRepository(db)
	ctx := context.Background()
	now := time.Now()
	if err := analytics.Record(ctx, deal.ID, now, "twitter", model.EngagementView); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := analytics.Record(ctx, deal.ID, now, "twitter", model.EngagementClick); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := analytics.Record(ctx, deal.ID, now.AddDate(0, 0, -60), "email", model.EngagementView); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	e := echo.New()
	c, rec := testutil.NewJSONRequest(e, http.MethodGet, "/api/admin/analytics?days=7", nil)
	c.Set("tenant_id", tenant.ID)

	if err := AdminAnalytics(c); err != nil {
		t.Fatalf("AdminAnalytics returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Overview        repository.Overview       `json:"overview"`
		Daily           []repository.DailyTotals  `json:"daily"`
		ReferralSources []repository.SourceTotals `json:"referral_sources"`
		TopDeals        []model.Deal              `json:"top_deals"`
	}
	testutil.DecodeBody(t, rec, &resp)

	// Overview spans lifetime, including the event outside the window.
	if resp.Overview.TotalViews != 2 || resp.Overview.TotalClicks != 1 {
		t.Errorf("overview totals = %+v", resp.Overview)
	}
	if resp.Overview.TotalDeals != 1 || resp.Overview.TotalUsers != 1 {
		t.Errorf("overview counts = %+v", resp.Overview)
	}

	// Daily and source breakdowns honor the 7-day window.
	if len(resp.Daily) != 1 {
		t.Errorf("len(daily) = %d, want 1", len(resp.Daily))
	}
	if len(resp.ReferralSources) != 1 || resp.ReferralSources[0].ReferralSource != "twitter" {
		t.Errorf("referral_sources = %+v", resp.ReferralSources)
	}

	if len(resp.TopDeals) != 1 || resp.TopDeals[0].ID != deal.ID {
		t.Errorf("top_deals = %+v", resp.TopDeals)
	}
}
