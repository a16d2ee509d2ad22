package service

import (
	"context"
	"log/slog"
	"strings"

	"equi/internal/calculator"
	"equi/internal/events"
	"equi/internal/models"
	"equi/internal/storage"
)

// SplitInput carries the caller-controlled fields of a split. Member
// amounts and settlement flags are never accepted from the caller; the
// service derives them.
type SplitInput struct {
	Owner string `json:"owner"`
	Title string `json:"title"`

	// TotalAmount is the full cost to divide, in whole currency units.
	TotalAmount int64 `json:"totalAmount"`

	// Date is the expense date in YYYY-MM-DD form.
	Date string `json:"date"`

	// Participants lists the external members, owner excluded. The owner
	// joins automatically as "Me".
	Participants []string `json:"participants"`

	// LinkedSubscriptionID optionally ties the split to a subscription
	// whose owner-cost it will drive.
	LinkedSubscriptionID string `json:"linkedSubscriptionId"`
}

// normalize trims participant names and drops blanks, then checks the
// remaining fields.
func (in *SplitInput) normalize() error {
	cleaned := make([]string, 0, len(in.Participants))
	for _, name := range in.Participants {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == models.MeName {
			return models.ErrReservedMeName
		}
		cleaned = append(cleaned, name)
	}
	in.Participants = cleaned

	if strings.TrimSpace(in.Owner) == "" {
		return models.ErrEmptyOwner
	}
	if strings.TrimSpace(in.Title) == "" {
		return models.ErrEmptyTitle
	}
	if in.TotalAmount <= 0 {
		return models.ErrInvalidAmount
	}
	if len(in.Participants) == 0 {
		return models.ErrNoParticipants
	}
	return models.ValidateDate(in.Date)
}

// SplitService handles split lifecycle, settlement, and the
// synchronization rule between splits and linked subscriptions.
type SplitService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewSplitService creates a SplitService with the given storage backend
// and event publisher.
func NewSplitService(store storage.Store, publisher events.Publisher) *SplitService {
	return &SplitService{store: store, publisher: publisher}
}

// buildMembers derives the ordered member list: "Me" first, already
// settled, then each participant owing the ceiling-divided share.
func buildMembers(share int64, participants []string) []models.Member {
	members := make([]models.Member, 0, len(participants)+1)
	members = append(members, models.Member{Name: models.MeName, Amount: share, IsPaid: true})
	for _, name := range participants {
		members = append(members, models.Member{Name: name, Amount: share})
	}
	return members
}

// linkTarget fetches the subscription a split wants to link and checks it
// belongs to the same owner.
func (s *SplitService) linkTarget(ctx context.Context, subscriptionID, owner string) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Owner != owner {
		return nil, models.ErrOwnerMismatch
	}
	return sub, nil
}

// Create validates the input, allocates shares, and persists the split.
// When the split links a subscription, the subscription's cost_for_me and
// shared_with are rewritten in the same transaction: the owner now pays
// only the "Me" share. Linking an already-linked subscription fails with
// models.ErrSubscriptionLinked.
func (s *SplitService) Create(ctx context.Context, in SplitInput) (*models.Split, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	share, err := calculator.Allocate(in.TotalAmount, int64(len(in.Participants)+1))
	if err != nil {
		return nil, err
	}

	var derived *storage.DerivedUpdate
	if in.LinkedSubscriptionID != "" {
		if _, err := s.linkTarget(ctx, in.LinkedSubscriptionID, in.Owner); err != nil {
			return nil, err
		}
		derived = &storage.DerivedUpdate{
			SubscriptionID: in.LinkedSubscriptionID,
			CostForMe:      share,
			SharedWith:     in.Participants,
		}
	}

	split := &models.Split{
		Owner:                in.Owner,
		Title:                in.Title,
		TotalAmount:          in.TotalAmount,
		Date:                 in.Date,
		LinkedSubscriptionID: in.LinkedSubscriptionID,
		Members:              buildMembers(share, in.Participants),
	}

	if err := s.store.CreateSplit(ctx, split, derived); err != nil {
		return nil, err
	}

	slog.Info("Created split", "id", split.ID, "owner", split.Owner,
		"linked_subscription", split.LinkedSubscriptionID)
	publish(ctx, s.publisher, events.KindSplitCreated, split.Owner, split.ID)
	return split, nil
}

// Get retrieves a single split.
func (s *SplitService) Get(ctx context.Context, id string) (*models.Split, error) {
	return s.store.GetSplit(ctx, id)
}

// List returns the owner's splits, newest first.
func (s *SplitService) List(ctx context.Context, owner string) ([]models.Split, error) {
	return s.store.ListSplits(ctx, owner)
}

// Update replaces a split's caller-controlled fields, reallocates shares,
// and reconciles link state. Changing the link target restores the old
// subscription to its nominal price and applies the derived cost to the
// new one, all in one transaction. Member settlement flags reset because
// the amounts they settled no longer exist; only "Me" stays paid.
func (s *SplitService) Update(ctx context.Context, id string, in SplitInput) (*models.Split, error) {
	existing, err := s.store.GetSplit(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Owner == "" {
		in.Owner = existing.Owner
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.Owner != existing.Owner {
		return nil, models.ErrOwnerMismatch
	}

	share, err := calculator.Allocate(in.TotalAmount, int64(len(in.Participants)+1))
	if err != nil {
		return nil, err
	}

	var derived []storage.DerivedUpdate
	if old := existing.LinkedSubscriptionID; old != "" && old != in.LinkedSubscriptionID {
		derived = append(derived, storage.DerivedUpdate{SubscriptionID: old, Reset: true})
	}
	if in.LinkedSubscriptionID != "" {
		if _, err := s.linkTarget(ctx, in.LinkedSubscriptionID, in.Owner); err != nil {
			return nil, err
		}
		derived = append(derived, storage.DerivedUpdate{
			SubscriptionID: in.LinkedSubscriptionID,
			CostForMe:      share,
			SharedWith:     in.Participants,
		})
	}

	split := &models.Split{
		ID:                   id,
		Owner:                existing.Owner,
		Title:                in.Title,
		TotalAmount:          in.TotalAmount,
		Date:                 in.Date,
		LinkedSubscriptionID: in.LinkedSubscriptionID,
		Members:              buildMembers(share, in.Participants),
		CreatedAt:            existing.CreatedAt,
	}

	if err := s.store.UpdateSplit(ctx, split, derived); err != nil {
		return nil, err
	}

	slog.Info("Updated split", "id", id, "owner", split.Owner,
		"linked_subscription", split.LinkedSubscriptionID)
	publish(ctx, s.publisher, events.KindSplitUpdated, split.Owner, id)
	return split, nil
}

// Delete removes a split. A linked subscription reverts to its nominal
// price with an empty shared-with list, in the same transaction as the
// delete.
func (s *SplitService) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetSplit(ctx, id)
	if err != nil {
		return err
	}

	var restore *storage.DerivedUpdate
	if existing.LinkedSubscriptionID != "" {
		restore = &storage.DerivedUpdate{
			SubscriptionID: existing.LinkedSubscriptionID,
			Reset:          true,
		}
	}

	if err := s.store.DeleteSplit(ctx, id, restore); err != nil {
		return err
	}

	slog.Info("Deleted split", "id", id, "owner", existing.Owner)
	publish(ctx, s.publisher, events.KindSplitDeleted, existing.Owner, id)
	return nil
}

// TogglePaid flips one member's settlement flag, addressed by position in
// the split's ordered member list. Toggling "Me" is allowed; the flag is
// informational and does not feed back into the linked subscription.
func (s *SplitService) TogglePaid(ctx context.Context, splitID string, memberIndex int) (*models.Split, error) {
	if memberIndex < 0 {
		return nil, models.ErrMemberIndex
	}

	split, err := s.store.ToggleMemberPaid(ctx, splitID, memberIndex)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.KindMemberToggled, split.Owner, splitID)
	return split, nil
}

// Outstanding aggregates unsettled amounts per external member across the
// owner's splits.
func (s *SplitService) Outstanding(ctx context.Context, owner string) ([]calculator.MemberBalance, error) {
	splits, err := s.store.ListSplits(ctx, owner)
	if err != nil {
		return nil, err
	}
	return calculator.OutstandingByMember(splits), nil
}
