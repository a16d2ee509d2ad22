package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"equi/internal/events"
	"equi/internal/models"
	"equi/internal/storage/sqlite"
)

// setupServices creates both services over a temp SQLite database.
func setupServices(t *testing.T) (*SubscriptionService, *SplitService) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "equi-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pub := events.NopPublisher{}
	return NewSubscriptionService(store, pub), NewSplitService(store, pub)
}

func createSubscription(t *testing.T, subs *SubscriptionService, price int64) *models.Subscription {
	t.Helper()
	sub := &models.Subscription{
		Owner:    "alice",
		Name:     "Netflix",
		Category: models.CategoryEntertainment,
		Price:    price,
		Date:     "2025-01-15",
	}
	if err := subs.Create(context.Background(), sub); err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	return sub
}

func linkedSplitInput(subID string) SplitInput {
	return SplitInput{
		Owner:                "alice",
		Title:                "Netflix January",
		TotalAmount:          186000,
		Date:                 "2025-01-15",
		Participants:         []string{"Budi", "Siti"},
		LinkedSubscriptionID: subID,
	}
}

func TestSplitServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates ceiling shares with Me first", func(t *testing.T) {
		_, splits := setupServices(t)

		split, err := splits.Create(ctx, SplitInput{
			Owner:        "alice",
			Title:        "Dinner",
			TotalAmount:  100,
			Date:         "2025-01-15",
			Participants: []string{"Budi", "Siti"},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if len(split.Members) != 3 {
			t.Fatalf("expected 3 members, got %d", len(split.Members))
		}
		// ceil(100/3) = 34 for everyone
		for i, m := range split.Members {
			if m.Amount != 34 {
				t.Errorf("member %d amount: got %d, want 34", i, m.Amount)
			}
		}
		if split.Members[0].Name != models.MeName || !split.Members[0].IsPaid {
			t.Errorf("expected Me first and paid, got %+v", split.Members[0])
		}
		if split.Members[1].IsPaid || split.Members[2].IsPaid {
			t.Error("expected external members unpaid")
		}
	})

	t.Run("trims participant names and drops blanks", func(t *testing.T) {
		_, splits := setupServices(t)

		split, err := splits.Create(ctx, SplitInput{
			Owner:        "alice",
			Title:        "Dinner",
			TotalAmount:  100,
			Date:         "2025-01-15",
			Participants: []string{" Budi ", "", "Siti"},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if len(split.Members) != 3 {
			t.Fatalf("expected 3 members, got %d", len(split.Members))
		}
		if split.Members[1].Name != "Budi" || split.Members[2].Name != "Siti" {
			t.Errorf("unexpected member names: %+v", split.Members)
		}
	})

	t.Run("linking rewrites subscription derived fields", func(t *testing.T) {
		subs, splits := setupServices(t)
		sub := createSubscription(t, subs, 186000)

		if _, err := splits.Create(ctx, linkedSplitInput(sub.ID)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		updated, err := subs.Get(ctx, sub.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if updated.CostForMe != 62000 {
			t.Errorf("CostForMe: got %d, want 62000", updated.CostForMe)
		}
		if len(updated.SharedWith) != 2 || updated.SharedWith[0] != "Budi" || updated.SharedWith[1] != "Siti" {
			t.Errorf("SharedWith: got %v, want [Budi Siti]", updated.SharedWith)
		}
	})

	t.Run("second link to same subscription conflicts", func(t *testing.T) {
		subs, splits := setupServices(t)
		sub := createSubscription(t, subs, 186000)

		if _, err := splits.Create(ctx, linkedSplitInput(sub.ID)); err != nil {
			t.Fatalf("first Create failed: %v", err)
		}
		_, err := splits.Create(ctx, linkedSplitInput(sub.ID))
		if !errors.Is(err, models.ErrSubscriptionLinked) {
			t.Errorf("expected ErrSubscriptionLinked, got %v", err)
		}
	})

	t.Run("linking another owner's subscription fails", func(t *testing.T) {
		subs, splits := setupServices(t)
		sub := createSubscription(t, subs, 186000)

		in := linkedSplitInput(sub.ID)
		in.Owner = "mallory"
		_, err := splits.Create(ctx, in)
		if !errors.Is(err, models.ErrOwnerMismatch) {
			t.Errorf("expected ErrOwnerMismatch, got %v", err)
		}
	})

	t.Run("validation failures classify as invalid input", func(t *testing.T) {
		_, splits := setupServices(t)

		cases := []struct {
			name string
			in   SplitInput
		}{
			{"empty owner", SplitInput{Title: "x", TotalAmount: 10, Date: "2025-01-15", Participants: []string{"Budi"}}},
			{"empty title", SplitInput{Owner: "alice", TotalAmount: 10, Date: "2025-01-15", Participants: []string{"Budi"}}},
			{"zero amount", SplitInput{Owner: "alice", Title: "x", Date: "2025-01-15", Participants: []string{"Budi"}}},
			{"no participants", SplitInput{Owner: "alice", Title: "x", TotalAmount: 10, Date: "2025-01-15"}},
			{"reserved name", SplitInput{Owner: "alice", Title: "x", TotalAmount: 10, Date: "2025-01-15", Participants: []string{"Me"}}},
			{"bad date", SplitInput{Owner: "alice", Title: "x", TotalAmount: 10, Date: "15-01-2025", Participants: []string{"Budi"}}},
			{"all-blank participants", SplitInput{Owner: "alice", Title: "x", TotalAmount: 10, Date: "2025-01-15", Participants: []string{"  ", ""}}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := splits.Create(ctx, tc.in); !errors.Is(err, models.ErrInvalid) {
					t.Errorf("expected ErrInvalid, got %v", err)
				}
			})
		}
	})
}

func TestSplitServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("relinking restores old subscription and updates new", func(t *testing.T) {
		subs, splits := setupServices(t)
		oldSub := createSubscription(t, subs, 186000)
		newSub := createSubscription(t, subs, 90000)

		split, err := splits.Create(ctx, linkedSplitInput(oldSub.ID))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		in := linkedSplitInput(newSub.ID)
		in.TotalAmount = 90000
		if _, err := splits.Update(ctx, split.ID, in); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		restored, err := subs.Get(ctx, oldSub.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if restored.CostForMe != restored.Price {
			t.Errorf("old CostForMe: got %d, want nominal %d", restored.CostForMe, restored.Price)
		}
		if len(restored.SharedWith) != 0 {
			t.Errorf("old SharedWith: got %v, want empty", restored.SharedWith)
		}

		linked, err := subs.Get(ctx, newSub.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if linked.CostForMe != 30000 {
			t.Errorf("new CostForMe: got %d, want 30000", linked.CostForMe)
		}
	})

	t.Run("unlinking restores nominal price", func(t *testing.T) {
		subs, splits := setupServices(t)
		sub := createSubscription(t, subs, 186000)

		split, err := splits.Create(ctx, linkedSplitInput(sub.ID))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		in := linkedSplitInput("")
		if _, err := splits.Update(ctx, split.ID, in); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		restored, err := subs.Get(ctx, sub.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if restored.CostForMe != restored.Price {
			t.Errorf("CostForMe: got %d, want nominal %d", restored.CostForMe, restored.Price)
		}
	})

	t.Run("missing split", func(t *testing.T) {
		_, splits := setupServices(t)
		_, err := splits.Update(ctx, "nonexistent-id", linkedSplitInput(""))
		if !errors.Is(err, models.ErrSplitNotFound) {
			t.Errorf("expected ErrSplitNotFound, got %v", err)
		}
	})
}

func TestSplitServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting linked split restores subscription", func(t *testing.T) {
		subs, splits := setupServices(t)
		sub := createSubscription(t, subs, 186000)

		split, err := splits.Create(ctx, linkedSplitInput(sub.ID))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := splits.Delete(ctx, split.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		restored, err := subs.Get(ctx, sub.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if restored.CostForMe != restored.Price {
			t.Errorf("CostForMe: got %d, want nominal %d", restored.CostForMe, restored.Price)
		}
		if len(restored.SharedWith) != 0 {
			t.Errorf("SharedWith: got %v, want empty", restored.SharedWith)
		}

		// Re-linking must succeed now that the old link is gone.
		if _, err := splits.Create(ctx, linkedSplitInput(sub.ID)); err != nil {
			t.Errorf("relink after delete failed: %v", err)
		}
	})

	t.Run("missing split", func(t *testing.T) {
		_, splits := setupServices(t)
		if err := splits.Delete(ctx, "nonexistent-id"); !errors.Is(err, models.ErrSplitNotFound) {
			t.Errorf("expected ErrSplitNotFound, got %v", err)
		}
	})
}

func TestSplitServiceTogglePaid(t *testing.T) {
	ctx := context.Background()
	_, splits := setupServices(t)

	split, err := splits.Create(ctx, SplitInput{
		Owner:        "alice",
		Title:        "Dinner",
		TotalAmount:  100,
		Date:         "2025-01-15",
		Participants: []string{"Budi"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := splits.TogglePaid(ctx, split.ID, 1)
	if err != nil {
		t.Fatalf("TogglePaid failed: %v", err)
	}
	if !updated.Members[1].IsPaid {
		t.Error("expected member 1 paid after toggle")
	}

	if _, err := splits.TogglePaid(ctx, split.ID, -1); !errors.Is(err, models.ErrMemberIndex) {
		t.Errorf("expected ErrMemberIndex for negative index, got %v", err)
	}
	if _, err := splits.TogglePaid(ctx, split.ID, 5); !errors.Is(err, models.ErrMemberIndex) {
		t.Errorf("expected ErrMemberIndex for out-of-range index, got %v", err)
	}
}

func TestSplitServiceOutstanding(t *testing.T) {
	ctx := context.Background()
	_, splits := setupServices(t)

	split, err := splits.Create(ctx, SplitInput{
		Owner:        "alice",
		Title:        "Dinner",
		TotalAmount:  90,
		Date:         "2025-01-15",
		Participants: []string{"Budi", "Siti"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := splits.TogglePaid(ctx, split.ID, 1); err != nil {
		t.Fatalf("TogglePaid failed: %v", err)
	}

	balances, err := splits.Outstanding(ctx, "alice")
	if err != nil {
		t.Fatalf("Outstanding failed: %v", err)
	}
	got := map[string]int64{}
	for _, b := range balances {
		got[b.Name] = b.Outstanding
	}
	if got["Budi"] != 0 {
		t.Errorf("Budi outstanding: got %d, want 0", got["Budi"])
	}
	if got["Siti"] != 30 {
		t.Errorf("Siti outstanding: got %d, want 30", got["Siti"])
	}
}
