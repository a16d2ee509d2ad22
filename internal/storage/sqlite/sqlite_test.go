package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"equi/internal/models"
	"equi/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "equi-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testSubscription(owner string) *models.Subscription {
	return &models.Subscription{
		Owner:     owner,
		Name:      "Netflix",
		Category:  models.CategoryEntertainment,
		Price:     186000,
		Date:      "2025-01-15",
		CostForMe: 186000,
	}
}

func TestSQLiteStoreSubscriptions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateSubscription generates ID", func(t *testing.T) {
		sub := testSubscription("alice")
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}
		if sub.ID == "" {
			t.Error("Expected subscription ID to be generated")
		}
		if sub.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetSubscription retrieves complete subscription", func(t *testing.T) {
		original := testSubscription("alice")
		if err := store.CreateSubscription(ctx, original); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		retrieved, err := store.GetSubscription(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if retrieved.Name != original.Name {
			t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, original.Name)
		}
		if retrieved.CostForMe != original.CostForMe {
			t.Errorf("CostForMe mismatch: got %d, want %d", retrieved.CostForMe, original.CostForMe)
		}
		if retrieved.SharedWith == nil {
			t.Error("Expected SharedWith to be non-nil")
		}
		if retrieved.PaidMonths == nil {
			t.Error("Expected PaidMonths to be non-nil")
		}
	})

	t.Run("GetSubscription returns not-found error", func(t *testing.T) {
		_, err := store.GetSubscription(ctx, "nonexistent-id")
		if !errors.Is(err, models.ErrSubscriptionNotFound) {
			t.Errorf("Expected ErrSubscriptionNotFound, got %v", err)
		}
	})

	t.Run("ListSubscriptions scopes by owner", func(t *testing.T) {
		store := newTestStore(t)
		for _, owner := range []string{"bob", "bob", "carol"} {
			if err := store.CreateSubscription(ctx, testSubscription(owner)); err != nil {
				t.Fatalf("CreateSubscription failed: %v", err)
			}
		}

		subs, err := store.ListSubscriptions(ctx, "bob")
		if err != nil {
			t.Fatalf("ListSubscriptions failed: %v", err)
		}
		if len(subs) != 2 {
			t.Errorf("Expected 2 subscriptions, got %d", len(subs))
		}
	})

	t.Run("MarkMonthPaid is idempotent", func(t *testing.T) {
		sub := testSubscription("alice")
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		for i := 0; i < 2; i++ {
			updated, err := store.MarkMonthPaid(ctx, sub.ID, "2025-03")
			if err != nil {
				t.Fatalf("MarkMonthPaid failed: %v", err)
			}
			if len(updated.PaidMonths) != 1 {
				t.Errorf("Expected 1 paid month after call %d, got %d", i+1, len(updated.PaidMonths))
			}
		}
	})

	t.Run("MarkMonthPaid on missing subscription", func(t *testing.T) {
		_, err := store.MarkMonthPaid(ctx, "nonexistent-id", "2025-03")
		if !errors.Is(err, models.ErrSubscriptionNotFound) {
			t.Errorf("Expected ErrSubscriptionNotFound, got %v", err)
		}
	})

	t.Run("CategoryTotals sums cost_for_me", func(t *testing.T) {
		store := newTestStore(t)
		subs := []*models.Subscription{
			{Owner: "dave", Name: "Netflix", Category: models.CategoryEntertainment, Price: 100, Date: "2025-01-01", CostForMe: 50},
			{Owner: "dave", Name: "Spotify", Category: models.CategoryEntertainment, Price: 60, Date: "2025-01-01", CostForMe: 60},
			{Owner: "dave", Name: "Figma", Category: models.CategoryWork, Price: 200, Date: "2025-01-01", CostForMe: 200},
		}
		for _, sub := range subs {
			if err := store.CreateSubscription(ctx, sub); err != nil {
				t.Fatalf("CreateSubscription failed: %v", err)
			}
		}

		totals, err := store.CategoryTotals(ctx, "dave")
		if err != nil {
			t.Fatalf("CategoryTotals failed: %v", err)
		}
		got := map[models.Category]int64{}
		for _, ct := range totals {
			got[ct.Category] = ct.Total
		}
		if got[models.CategoryEntertainment] != 110 {
			t.Errorf("Entertainment total: got %d, want 110", got[models.CategoryEntertainment])
		}
		if got[models.CategoryWork] != 200 {
			t.Errorf("Work total: got %d, want 200", got[models.CategoryWork])
		}
	})
}

func TestSQLiteStoreSplits(t *testing.T) {
	ctx := context.Background()

	newSplit := func(owner, linkedID string) *models.Split {
		return &models.Split{
			Owner:                owner,
			Title:                "Netflix January",
			TotalAmount:          186000,
			Date:                 "2025-01-15",
			LinkedSubscriptionID: linkedID,
			Members: []models.Member{
				{Name: models.MeName, Amount: 62000, IsPaid: true},
				{Name: "Budi", Amount: 62000},
				{Name: "Siti", Amount: 62000},
			},
		}
	}

	t.Run("CreateSplit with derived update", func(t *testing.T) {
		store := newTestStore(t)
		sub := testSubscription("alice")
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		split := newSplit("alice", sub.ID)
		derived := &storage.DerivedUpdate{
			SubscriptionID: sub.ID,
			CostForMe:      62000,
			SharedWith:     []string{"Budi", "Siti"},
		}
		if err := store.CreateSplit(ctx, split, derived); err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}

		updated, err := store.GetSubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if updated.CostForMe != 62000 {
			t.Errorf("CostForMe: got %d, want 62000", updated.CostForMe)
		}
		if len(updated.SharedWith) != 2 || updated.SharedWith[0] != "Budi" {
			t.Errorf("SharedWith: got %v, want [Budi Siti]", updated.SharedWith)
		}

		retrieved, err := store.GetSplit(ctx, split.ID)
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		if len(retrieved.Members) != 3 {
			t.Errorf("Expected 3 members, got %d", len(retrieved.Members))
		}
		if !retrieved.Members[0].IsPaid {
			t.Error("Expected first member to be paid")
		}
	})

	t.Run("Second link to same subscription conflicts", func(t *testing.T) {
		store := newTestStore(t)
		sub := testSubscription("alice")
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		derived := &storage.DerivedUpdate{SubscriptionID: sub.ID, CostForMe: 62000, SharedWith: []string{"Budi", "Siti"}}
		if err := store.CreateSplit(ctx, newSplit("alice", sub.ID), derived); err != nil {
			t.Fatalf("First CreateSplit failed: %v", err)
		}

		err := store.CreateSplit(ctx, newSplit("alice", sub.ID), derived)
		if !errors.Is(err, models.ErrSubscriptionLinked) {
			t.Errorf("Expected ErrSubscriptionLinked, got %v", err)
		}
	})

	t.Run("DeleteSplit restores nominal price", func(t *testing.T) {
		store := newTestStore(t)
		sub := testSubscription("alice")
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		split := newSplit("alice", sub.ID)
		derived := &storage.DerivedUpdate{SubscriptionID: sub.ID, CostForMe: 62000, SharedWith: []string{"Budi", "Siti"}}
		if err := store.CreateSplit(ctx, split, derived); err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}

		restore := &storage.DerivedUpdate{SubscriptionID: sub.ID, Reset: true}
		if err := store.DeleteSplit(ctx, split.ID, restore); err != nil {
			t.Fatalf("DeleteSplit failed: %v", err)
		}

		updated, err := store.GetSubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if updated.CostForMe != updated.Price {
			t.Errorf("CostForMe: got %d, want nominal price %d", updated.CostForMe, updated.Price)
		}
		if len(updated.SharedWith) != 0 {
			t.Errorf("SharedWith: got %v, want empty", updated.SharedWith)
		}
	})

	t.Run("DeleteSubscription unlinks split", func(t *testing.T) {
		store := newTestStore(t)
		sub := testSubscription("alice")
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		split := newSplit("alice", sub.ID)
		derived := &storage.DerivedUpdate{SubscriptionID: sub.ID, CostForMe: 62000, SharedWith: []string{"Budi", "Siti"}}
		if err := store.CreateSplit(ctx, split, derived); err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}

		if err := store.DeleteSubscription(ctx, sub.ID); err != nil {
			t.Fatalf("DeleteSubscription failed: %v", err)
		}

		retrieved, err := store.GetSplit(ctx, split.ID)
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		if retrieved.LinkedSubscriptionID != "" {
			t.Errorf("Expected split to be unlinked, got %s", retrieved.LinkedSubscriptionID)
		}
	})

	t.Run("UpdateSplit relinks atomically", func(t *testing.T) {
		store := newTestStore(t)
		oldSub := testSubscription("alice")
		newSub := testSubscription("alice")
		newSub.Name = "Spotify"
		for _, sub := range []*models.Subscription{oldSub, newSub} {
			if err := store.CreateSubscription(ctx, sub); err != nil {
				t.Fatalf("CreateSubscription failed: %v", err)
			}
		}

		split := newSplit("alice", oldSub.ID)
		derived := &storage.DerivedUpdate{SubscriptionID: oldSub.ID, CostForMe: 62000, SharedWith: []string{"Budi", "Siti"}}
		if err := store.CreateSplit(ctx, split, derived); err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}

		split.LinkedSubscriptionID = newSub.ID
		updates := []storage.DerivedUpdate{
			{SubscriptionID: oldSub.ID, Reset: true},
			{SubscriptionID: newSub.ID, CostForMe: 62000, SharedWith: []string{"Budi", "Siti"}},
		}
		if err := store.UpdateSplit(ctx, split, updates); err != nil {
			t.Fatalf("UpdateSplit failed: %v", err)
		}

		restored, err := store.GetSubscription(ctx, oldSub.ID)
		if err != nil {
			t.Fatalf("GetSubscription failed: %v", err)
		}
		if restored.CostForMe != restored.Price {
			t.Errorf("Old subscription CostForMe: got %d, want %d", restored.CostForMe, restored.Price)
		}

		linked, err := store.LinkedTo(ctx, newSub.ID)
		if err != nil {
			t.Fatalf("LinkedTo failed: %v", err)
		}
		if linked == nil || linked.ID != split.ID {
			t.Errorf("Expected new subscription linked to split %s, got %+v", split.ID, linked)
		}
	})

	t.Run("UpdateSplit on missing split", func(t *testing.T) {
		store := newTestStore(t)
		split := newSplit("alice", "")
		split.ID = "nonexistent-id"
		err := store.UpdateSplit(ctx, split, nil)
		if !errors.Is(err, models.ErrSplitNotFound) {
			t.Errorf("Expected ErrSplitNotFound, got %v", err)
		}
	})

	t.Run("ToggleMemberPaid flips flag", func(t *testing.T) {
		store := newTestStore(t)
		split := newSplit("alice", "")
		if err := store.CreateSplit(ctx, split, nil); err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}

		updated, err := store.ToggleMemberPaid(ctx, split.ID, 1)
		if err != nil {
			t.Fatalf("ToggleMemberPaid failed: %v", err)
		}
		if !updated.Members[1].IsPaid {
			t.Error("Expected member 1 to be paid after toggle")
		}

		updated, err = store.ToggleMemberPaid(ctx, split.ID, 1)
		if err != nil {
			t.Fatalf("ToggleMemberPaid failed: %v", err)
		}
		if updated.Members[1].IsPaid {
			t.Error("Expected member 1 to be unpaid after second toggle")
		}
	})

	t.Run("ToggleMemberPaid out of range", func(t *testing.T) {
		store := newTestStore(t)
		split := newSplit("alice", "")
		if err := store.CreateSplit(ctx, split, nil); err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}

		if _, err := store.ToggleMemberPaid(ctx, split.ID, 7); !errors.Is(err, models.ErrMemberIndex) {
			t.Errorf("Expected ErrMemberIndex, got %v", err)
		}
		if _, err := store.ToggleMemberPaid(ctx, "nonexistent-id", 0); !errors.Is(err, models.ErrSplitNotFound) {
			t.Errorf("Expected ErrSplitNotFound, got %v", err)
		}
	})

	t.Run("LinkedTo returns nil for unlinked subscription", func(t *testing.T) {
		store := newTestStore(t)
		sub := testSubscription("alice")
		if err := store.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription failed: %v", err)
		}

		linked, err := store.LinkedTo(ctx, sub.ID)
		if err != nil {
			t.Fatalf("LinkedTo failed: %v", err)
		}
		if linked != nil {
			t.Errorf("Expected nil, got %+v", linked)
		}
	})
}
