// Package service implements the ledger's business rules on top of the
// storage abstraction: input validation, share allocation, and the
// synchronization between splits and their linked subscriptions.
package service

import (
	"context"
	"log/slog"

	"equi/internal/events"
	"equi/internal/models"
	"equi/internal/storage"
)

// SubscriptionService handles subscription lifecycle and analytics.
type SubscriptionService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewSubscriptionService creates a SubscriptionService with the given
// storage backend and event publisher.
func NewSubscriptionService(store storage.Store, publisher events.Publisher) *SubscriptionService {
	return &SubscriptionService{store: store, publisher: publisher}
}

// publish sends a change event. Best-effort: the write has already
// committed, so failures are logged and swallowed.
func publish(ctx context.Context, p events.Publisher, kind, owner, entityID string) {
	if err := p.Publish(ctx, events.NewEvent(kind, owner, entityID)); err != nil {
		slog.Warn("Failed to publish event", "kind", kind, "entity_id", entityID, "error", err)
	}
}

// Create validates and persists a new subscription. Derived fields start
// at their unlinked values: cost equals the nominal price and the
// shared-with list is empty, regardless of what the caller supplied.
func (s *SubscriptionService) Create(ctx context.Context, sub *models.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	sub.CostForMe = sub.Price
	sub.SharedWith = []string{}
	sub.PaidMonths = []string{}

	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		return err
	}

	slog.Info("Created subscription", "id", sub.ID, "owner", sub.Owner, "name", sub.Name)
	publish(ctx, s.publisher, events.KindSubscriptionCreated, sub.Owner, sub.ID)
	return nil
}

// Get retrieves a single subscription.
func (s *SubscriptionService) Get(ctx context.Context, id string) (*models.Subscription, error) {
	return s.store.GetSubscription(ctx, id)
}

// List returns the owner's subscriptions, newest first.
func (s *SubscriptionService) List(ctx context.Context, owner string) ([]models.Subscription, error) {
	return s.store.ListSubscriptions(ctx, owner)
}

// Delete removes a subscription. A split linking it survives as an ad-hoc
// record: the store clears the reference in the same transaction.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	sub, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteSubscription(ctx, id); err != nil {
		return err
	}

	slog.Info("Deleted subscription", "id", id, "owner", sub.Owner)
	publish(ctx, s.publisher, events.KindSubscriptionDeleted, sub.Owner, id)
	return nil
}

// MarkMonthPaid records a YYYY-MM month as paid and returns the updated
// subscription. Marking an already-paid month again is a no-op.
func (s *SubscriptionService) MarkMonthPaid(ctx context.Context, id, month string) (*models.Subscription, error) {
	if err := models.ValidateMonth(month); err != nil {
		return nil, err
	}

	sub, err := s.store.MarkMonthPaid(ctx, id, month)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.KindMonthPaid, sub.Owner, id)
	return sub, nil
}

// Breakdown returns the per-category sum of the owner's out-of-pocket
// costs. Totals reflect cost_for_me, not nominal prices, so shared
// subscriptions count only the owner's share.
func (s *SubscriptionService) Breakdown(ctx context.Context, owner string) ([]models.CategoryTotal, error) {
	totals, err := s.store.CategoryTotals(ctx, owner)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}
	return totals, nil
}
