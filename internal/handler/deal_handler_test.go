package handler

import (
	"net/http"
	"testing"

	"dealhub/internal/model"
	"dealhub/internal/testutil"
	"dealhub/pkg/database"

	"github.com/labstack/echo/v4"
)

func TestCreateDealHandler(t *testing.T) {
	testutil.InitTest()
	db := testutil.OpenTestDB(t)
	database.SetDB(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	user := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")

	e := echo.New()
	submit := func(body map[string]interface{}) (int, map[string]interface{}) {
		c, rec := testutil.NewJSONRequest(e, http.MethodPost, "/api/deals", body)
		c.Set("tenant_id", tenant.ID)
		c.Set("user_id", user.ID)
		if err := CreateDeal(c); err != nil {
			t.Fatalf("CreateDeal returned error: %v", err)
		}
		var resp map[string]interface{}
		testutil.DecodeBody(t, rec, &resp)
		return rec.Code, resp
	}

	t.Run("valid submission is pending", func(t *testing.T) {
		code, resp := submit(map[string]interface{}{
			"title":         "Wireless Earbuds",
			"affiliate_url": "https://shop.example.com/earbuds",
			"price":         29.99,
		})
		if code != http.StatusCreated {
			t.Fatalf("status = %d", code)
		}
		deal := resp["deal"].(map[string]interface{})
		if deal["status"] != model.DealStatusPending {
			t.Errorf("status = %v, want pending", deal["status"])
		}
		if deal["slug"] != "wireless-earbuds" {
			t.Errorf("slug = %v", deal["slug"])
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		code, _ := submit(map[string]interface{}{"title": "No URL"})
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})

	t.Run("relative affiliate url", func(t *testing.T) {
		code, _ := submit(map[string]interface{}{
			"title":         "Bad Link",
			"affiliate_url": "/earbuds",
		})
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})
}

func TestGetDealCountsView(t *testing.T) {
	testutil.InitTest()
	db := testutil.OpenTestDB(t)
	database.SetDB(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	user := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	deal := testutil.SeedDeal(t, db, tenant.ID, user.ID, "great-offer")

	e := echo.New()
	c, rec := testutil.NewJSONRequest(e, http.MethodGet, "/api/deals/great-offer?ref=twitter", nil)
	c.Set("tenant_id", tenant.ID)
	c.SetParamNames("slug")
	c.SetParamValues("great-offer")

	if err := GetDeal(c); err != nil {
		t.Fatalf("GetDeal returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var reloaded model.Deal
	if err := db.First(&reloaded, deal.ID).Error; err != nil {
		t.Fatalf("failed to reload deal: %v", err)
	}
	if reloaded.Views != 1 {
		t.Errorf("views = %d, want 1", reloaded.Views)
	}

	var bucket model.DealAnalytics
	if err := db.Where("deal_id = ? AND referral_source = ?", deal.ID, "twitter").First(&bucket).Error; err != nil {
		t.Fatalf("expected a twitter bucket: %v", err)
	}
	if bucket.Views != 1 {
		t.Errorf("bucket views = %d, want 1", bucket.Views)
	}
}

func TestClickDealHandler(t *testing.T) {
	testutil.InitTest()
	db := testutil.OpenTestDB(t)
	database.SetDB(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	user := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	deal := testutil.SeedDeal(t, db, tenant.ID, user.ID, "great-offer")

	e := echo.New()
	c, rec := testutil.NewJSONRequest(e, http.MethodPost, "/api/deals/great-offer/click", nil)
	c.Set("tenant_id", tenant.ID)
	c.SetParamNames("slug")
	c.SetParamValues("great-offer")

	if err := ClickDeal(c); err != nil {
		t.Fatalf("ClickDeal returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]interface{}
	testutil.DecodeBody(t, rec, &resp)
	if resp["redirect_url"] != deal.AffiliateURL {
		t.Errorf("redirect_url = %v, want %s", resp["redirect_url"], deal.AffiliateURL)
	}

	var reloaded model.Deal
	if err := db.First(&reloaded, deal.ID).Error; err != nil {
		t.Fatalf("failed to reload deal: %v", err)
	}
	if reloaded.Clicks != 1 {
		t.Errorf("clicks = %d, want 1", reloaded.Clicks)
	}
}

func TestListDealsDefaultsToApproved(t *testing.T) {
	testutil.InitTest()
	db := testutil.OpenTestDB(t)
	database.SetDB(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	user := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	testutil.SeedDeal(t, db, tenant.ID, user.ID, "approved-offer")
	pending := testutil.SeedDeal(t, db, tenant.ID, user.ID, "pending-offer")
	if err := db.Model(pending).UpdateColumn("status", model.DealStatusPending).Error; err != nil {
		t.Fatalf("failed to reset status: %v", err)
	}

	e := echo.New()
	list := func(target string) []interface{} {
		c, rec := testutil.NewJSONRequest(e, http.MethodGet, target, nil)
		c.Set("tenant_id", tenant.ID)
		if err := ListDeals(c); err != nil {
			t.Fatalf("ListDeals returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp map[string]interface{}
		testutil.DecodeBody(t, rec, &resp)
		return resp["deals"].([]interface{})
	}

	if deals := list("/api/deals"); len(deals) != 1 {
		t.Errorf("default list has %d deals, want 1 approved", len(deals))
	}
	if deals := list("/api/deals?status=all"); len(deals) != 2 {
		t.Errorf("status=all list has %d deals, want 2", len(deals))
	}
	if deals := list("/api/deals?status=PENDING"); len(deals) != 1 {
		t.Errorf("status=PENDING list has %d deals, want 1", len(deals))
	}
}

func TestApproveDealHandler(t *testing.T) {
	testutil.InitTest()
	db := testutil.OpenTestDB(t)
	database.SetDB(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	author := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	admin := testutil.SeedUser(t, db, tenant.ID, "admin@example.com")
	deal := testutil.SeedDeal(t, db, tenant.ID, author.ID, "pending-offer")
	if err := db.Model(deal).UpdateColumn("status", model.DealStatusPending).Error; err != nil {
		t.Fatalf("failed to reset status: %v", err)
	}

	e := echo.New()
	c, rec := testutil.NewJSONRequest(e, http.MethodPost, "/api/admin/deals/approve", map[string]interface{}{
		"deal_id": deal.ID,
		"status":  model.DealStatusApproved,
	})
	c.Set("tenant_id", tenant.ID)
	c.Set("user_id", admin.ID)

	if err := ApproveDeal(c); err != nil {
		t.Fatalf("ApproveDeal returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var reloaded model.User
	if err := db.First(&reloaded, author.ID).Error; err != nil {
		t.Fatalf("failed to reload author: %v", err)
	}
	if want := model.PointValues[model.PointReasonDealApproved]; reloaded.Points != want {
		t.Errorf("author points = %d, want %d", reloaded.Points, want)
	}

	t.Run("bad status", func(t *testing.T) {
		c, rec := testutil.NewJSONRequest(e, http.MethodPost, "/api/admin/deals/approve", map[string]interface{}{
			"deal_id": deal.ID,
			"status":  "MAYBE",
		})
		c.Set("tenant_id", tenant.ID)
		c.Set("user_id", admin.ID)
		if err := ApproveDeal(c); err != nil {
			t.Fatalf("ApproveDeal returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
