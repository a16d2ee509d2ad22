package models

import (
	"errors"
	"fmt"
)

// ErrInvalid is the base of all validation errors. Every error caused by
// malformed or out-of-range input wraps it, so callers can classify with
// errors.Is(err, models.ErrInvalid) without enumerating the specific cases.
var ErrInvalid = errors.New("invalid input")

var (
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrInvalid)
	ErrInvalidCategory  = fmt.Errorf("%w: unknown category", ErrInvalid)
	ErrInvalidDate      = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
	ErrInvalidMonth     = fmt.Errorf("%w: month must be YYYY-MM", ErrInvalid)
	ErrEmptyOwner       = fmt.Errorf("%w: owner required", ErrInvalid)
	ErrEmptyName        = fmt.Errorf("%w: name required", ErrInvalid)
	ErrEmptyTitle       = fmt.Errorf("%w: title required", ErrInvalid)
	ErrNoParticipants   = fmt.Errorf("%w: at least one participant required", ErrInvalid)
	ErrReservedMeName   = fmt.Errorf("%w: participant name %q is reserved for the owner", ErrInvalid, MeName)
	ErrOwnerMismatch    = fmt.Errorf("%w: subscription belongs to a different owner", ErrInvalid)
	ErrNoParticipantCnt = fmt.Errorf("%w: participant count must be positive", ErrInvalid)
)

// Not-found and conflict conditions. These are distinct from validation:
// the input was well-formed but named an entity that does not exist, or an
// entity whose link state forbids the operation.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSplitNotFound        = errors.New("split not found")
	ErrMemberIndex          = errors.New("member index out of range")

	// ErrSubscriptionLinked reports an attempt to link a subscription that
	// is already linked by another active split. The caller must unlink
	// (delete or update the existing split) first.
	ErrSubscriptionLinked = errors.New("subscription is already linked to a split")
)
