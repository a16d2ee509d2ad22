// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"equi/internal/models"
)

// DerivedUpdate describes a change to a subscription's derived cost fields,
// applied in the same transaction as the split mutation that caused it.
//
// With Reset set, the store restores cost_for_me to the stored nominal
// price and clears shared_with; CostForMe and SharedWith are ignored. This
// keeps restore-to-nominal a single in-transaction UPDATE with no prior
// read.
type DerivedUpdate struct {
	SubscriptionID string
	CostForMe      int64
	SharedWith     []string
	Reset          bool
}

// Store defines the interface for ledger storage operations. The service
// layer depends only on this abstraction, so backends (SQLite, PostgreSQL)
// can be swapped without touching it.
//
// Mutations that take DerivedUpdate arguments must apply the split change
// and every subscription change as one transaction: either all writes
// land or none do. Implementations must also enforce, at the schema level,
// that at most one split references a given subscription, surfacing a
// violation as models.ErrSubscriptionLinked.
type Store interface {
	// CreateSubscription persists a new subscription. ID and CreatedAt are
	// populated by the store when empty.
	CreateSubscription(ctx context.Context, sub *models.Subscription) error

	// GetSubscription retrieves a subscription by ID, including shared-with
	// names and paid months. Returns models.ErrSubscriptionNotFound when
	// absent.
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)

	// ListSubscriptions returns the owner's subscriptions, newest first.
	ListSubscriptions(ctx context.Context, owner string) ([]models.Subscription, error)

	// DeleteSubscription removes a subscription. Any split referencing it
	// is unlinked (linked_subscription_id set to NULL) in the same
	// transaction, never left dangling and never cascaded away.
	DeleteSubscription(ctx context.Context, id string) error

	// MarkMonthPaid idempotently records a YYYY-MM month as paid and
	// returns the updated subscription. Re-adding an existing month is a
	// no-op, not an error.
	MarkMonthPaid(ctx context.Context, id, month string) (*models.Subscription, error)

	// CategoryTotals sums cost_for_me per category over the owner's
	// subscriptions. Categories without subscriptions are omitted.
	CategoryTotals(ctx context.Context, owner string) ([]models.CategoryTotal, error)

	// CreateSplit persists a new split and, when derived is non-nil,
	// applies the linked subscription's derived-cost update atomically.
	CreateSplit(ctx context.Context, split *models.Split, derived *DerivedUpdate) error

	// GetSplit retrieves a split by ID with its full member list. Returns
	// models.ErrSplitNotFound when absent.
	GetSplit(ctx context.Context, id string) (*models.Split, error)

	// ListSplits returns the owner's splits, newest first.
	ListSplits(ctx context.Context, owner string) ([]models.Split, error)

	// UpdateSplit replaces a split's stored fields and member list and
	// applies the given derived updates (unlink old target, link new one)
	// atomically. Returns models.ErrSplitNotFound when absent.
	UpdateSplit(ctx context.Context, split *models.Split, derived []DerivedUpdate) error

	// DeleteSplit removes a split, applying the restore update for a
	// previously linked subscription in the same transaction.
	DeleteSplit(ctx context.Context, id string, restore *DerivedUpdate) error

	// ToggleMemberPaid flips one member's settlement flag, addressed by
	// position in the split's ordered member list, and returns the updated
	// split. Returns models.ErrSplitNotFound or models.ErrMemberIndex.
	ToggleMemberPaid(ctx context.Context, splitID string, memberIndex int) (*models.Split, error)

	// LinkedTo returns the split currently linking the subscription, or
	// nil when the subscription is unlinked.
	LinkedTo(ctx context.Context, subscriptionID string) (*models.Split, error)

	// Close releases any resources held by the store.
	Close() error
}
