package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"dealhub/internal/model"
	"dealhub/internal/testutil"

	"gorm.io/gorm"
)

func TestVoteCast(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	votes := NewVoteRepository(db)
	points := NewPointsRepository(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	alice := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	bob := testutil.SeedUser(t, db, tenant.ID, "bob@example.com")
	deal := testutil.SeedDeal(t, db, tenant.ID, alice.ID, "great-offer")

	t.Run("invalid value", func(t *testing.T) {
		if _, err := votes.Cast(ctx, alice.ID, deal.ID, 2); err != ErrInvalidVote {
			t.Errorf("expected ErrInvalidVote, got %v", err)
		}
		if _, err := votes.Cast(ctx, alice.ID, deal.ID, 0); err != ErrInvalidVote {
			t.Errorf("expected ErrInvalidVote, got %v", err)
		}
	})

	t.Run("first vote records and awards", func(t *testing.T) {
		outcome, err := votes.Cast(ctx, alice.ID, deal.ID, model.VoteUp)
		if err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
		if outcome != VoteRecorded {
			t.Errorf("outcome = %q, want %q", outcome, VoteRecorded)
		}
		score, err := votes.Score(ctx, deal.ID)
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if score != 1 {
			t.Errorf("score = %d, want 1", score)
		}
		balance, err := points.Balance(ctx, alice.ID)
		if err != nil {
			t.Fatalf("Balance failed: %v", err)
		}
		if want := model.PointValues[model.PointReasonVote]; balance != want {
			t.Errorf("balance = %d, want %d", balance, want)
		}
	})

	t.Run("flip keeps points", func(t *testing.T) {
		outcome, err := votes.Cast(ctx, alice.ID, deal.ID, model.VoteDown)
		if err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
		if outcome != VoteRecorded {
			t.Errorf("outcome = %q, want %q", outcome, VoteRecorded)
		}
		score, _ := votes.Score(ctx, deal.ID)
		if score != -1 {
			t.Errorf("score = %d, want -1", score)
		}
		balance, _ := points.Balance(ctx, alice.ID)
		if want := model.PointValues[model.PointReasonVote]; balance != want {
			t.Errorf("flip changed balance: %d, want %d", balance, want)
		}
	})

	t.Run("same value removes", func(t *testing.T) {
		outcome, err := votes.Cast(ctx, alice.ID, deal.ID, model.VoteDown)
		if err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
		if outcome != VoteRemoved {
			t.Errorf("outcome = %q, want %q", outcome, VoteRemoved)
		}
		score, _ := votes.Score(ctx, deal.ID)
		if score != 0 {
			t.Errorf("score = %d, want 0", score)
		}
		value, err := votes.UserVote(ctx, alice.ID, deal.ID)
		if err != nil {
			t.Fatalf("UserVote failed: %v", err)
		}
		if value != 0 {
			t.Errorf("UserVote = %d, want 0 after removal", value)
		}
	})

	t.Run("votes sum across users", func(t *testing.T) {
		if _, err := votes.Cast(ctx, alice.ID, deal.ID, model.VoteUp); err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
		if _, err := votes.Cast(ctx, bob.ID, deal.ID, model.VoteUp); err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
		score, _ := votes.Score(ctx, deal.ID)
		if score != 2 {
			t.Errorf("score = %d, want 2", score)
		}
		value, _ := votes.UserVote(ctx, bob.ID, deal.ID)
		if value != model.VoteUp {
			t.Errorf("UserVote = %d, want %d", value, model.VoteUp)
		}
	})
}

// TestVoteCastLostCreateRace exercises the path where the insert loses to a
// competing vote: a create hook slips the competing row in between Cast's
// not-found read and its own create, so the unique index rejects the create
// and Cast has to re-read and apply the existing-vote rules.
func TestVoteCastLostCreateRace(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	votes := NewVoteRepository(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	alice := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	deal := testutil.SeedDeal(t, db, tenant.ID, alice.ID, "great-offer")

	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("competing_vote", func(tx *gorm.DB) {
		if injected || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "votes" {
			return
		}
		injected = true
		now := time.Now()
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO votes (user_id, deal_id, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			alice.ID, deal.ID, model.VoteUp, now, now).Error; err != nil {
			t.Errorf("failed to insert competing vote: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	outcome, err := votes.Cast(ctx, alice.ID, deal.ID, model.VoteUp)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if !injected {
		t.Fatal("competing vote was never injected")
	}

	// The winner's same-value vote was already in place, so the losing cast
	// acts as an un-vote and must not award a second time.
	if outcome != VoteRemoved {
		t.Errorf("outcome = %q, want %q", outcome, VoteRemoved)
	}
	var count int64
	if err := db.Model(&model.Vote{}).Where("deal_id = ?", deal.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count votes: %v", err)
	}
	if count != 0 {
		t.Errorf("vote rows = %d, want 0 after un-vote", count)
	}
	var ledger int64
	if err := db.Model(&model.PointHistory{}).Where("user_id = ?", alice.ID).Count(&ledger).Error; err != nil {
		t.Fatalf("failed to count ledger rows: %v", err)
	}
	if ledger != 0 {
		t.Errorf("ledger rows = %d, want 0 for the losing cast", ledger)
	}
}

// TestVoteCastConcurrent hammers one (user, deal) pair from several
// goroutines. Same-value casts toggle the vote, so an odd number of casts
// leaves exactly one row, each create awards once, and the ledger sum must
// match the cached balance whatever order the goroutines ran in.
func TestVoteCastConcurrent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	votes := NewVoteRepository(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	alice := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	deal := testutil.SeedDeal(t, db, tenant.ID, alice.ID, "great-offer")

	const casts = 5
	var wg sync.WaitGroup
	errs := make(chan error, casts)
	for i := 0; i < casts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := votes.Cast(context.Background(), alice.ID, deal.ID, model.VoteUp); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Cast failed: %v", err)
	}

	var count int64
	if err := db.Model(&model.Vote{}).
		Where("user_id = ? AND deal_id = ?", alice.ID, deal.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count votes: %v", err)
	}
	if count != 1 {
		t.Errorf("vote rows = %d, want 1 after an odd number of casts", count)
	}

	// Five toggles from an empty state are three creates and two removals.
	var user model.User
	if err := db.First(&user, alice.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if want := 3 * model.PointValues[model.PointReasonVote]; user.Points != want {
		t.Errorf("balance = %d, want %d", user.Points, want)
	}
	var ledgerSum int
	if err := db.Model(&model.PointHistory{}).
		Where("user_id = ?", alice.ID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&ledgerSum).Error; err != nil {
		t.Fatalf("failed to sum ledger: %v", err)
	}
	if ledgerSum != user.Points {
		t.Errorf("ledger sum %d != cached balance %d", ledgerSum, user.Points)
	}
}

func TestVoteLedgerMatchesBalance(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	votes := NewVoteRepository(db)

	tenant := testutil.SeedTenant(t, db, "acme")
	alice := testutil.SeedUser(t, db, tenant.ID, "alice@example.com")
	deals := make([]*model.Deal, 5)
	for i, slug := range []string{"a", "b", "c", "d", "e"} {
		deals[i] = testutil.SeedDeal(t, db, tenant.ID, alice.ID, slug)
	}

	// Vote, un-vote, flip across several deals; the ledger sum must always
	// equal the cached balance.
	for _, d := range deals {
		if _, err := votes.Cast(ctx, alice.ID, d.ID, model.VoteUp); err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
	}
	if _, err := votes.Cast(ctx, alice.ID, deals[0].ID, model.VoteUp); err != nil { // un-vote
		t.Fatalf("Cast failed: %v", err)
	}
	if _, err := votes.Cast(ctx, alice.ID, deals[1].ID, model.VoteDown); err != nil { // flip
		t.Fatalf("Cast failed: %v", err)
	}

	var ledgerSum int
	if err := db.Model(&model.PointHistory{}).
		Where("user_id = ?", alice.ID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&ledgerSum).Error; err != nil {
		t.Fatalf("failed to sum ledger: %v", err)
	}

	var user model.User
	if err := db.First(&user, alice.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if ledgerSum != user.Points {
		t.Errorf("ledger sum %d != cached balance %d", ledgerSum, user.Points)
	}
	if want := 5 * model.PointValues[model.PointReasonVote]; user.Points != want {
		t.Errorf("balance = %d, want %d", user.Points, want)
	}
}
