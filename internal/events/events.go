// Package events publishes ledger change notifications so downstream
// consumers (sync workers, notification senders) can react without polling.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event kinds, routed as "<entity>.<action>".
const (
	KindSubscriptionCreated = "subscription.created"
	KindSubscriptionDeleted = "subscription.deleted"
	KindMonthPaid           = "subscription.month_paid"
	KindSplitCreated        = "split.created"
	KindSplitUpdated        = "split.updated"
	KindSplitDeleted        = "split.deleted"
	KindMemberToggled       = "split.member_toggled"
)

// Event is a lightweight change notification. It carries only identifiers;
// consumers fetch the full record so they never act on stale payloads.
type Event struct {
	Kind      string    `json:"kind"`
	Owner     string    `json:"owner"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(kind, owner, entityID string) Event {
	return Event{Kind: kind, Owner: owner, EntityID: entityID, Timestamp: time.Now()}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an event from JSON bytes.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events to interested consumers. Publishing is
// best-effort: the ledger write has already committed by the time an event
// goes out, so callers log failures instead of surfacing them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
