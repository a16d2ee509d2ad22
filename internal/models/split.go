package models

// MeName is the reserved member name identifying the owner inside a split.
const MeName = "Me"

// Member represents one participant's share inside a Split. It has no
// independent lifecycle; it exists and dies with its owning split.
type Member struct {
	Name string `json:"name"`

	// Amount is this member's allocated share in whole currency units.
	Amount int64 `json:"amount"`

	// IsPaid marks the share as settled. The "Me" member starts true: the
	// owner's share funds the subscription directly.
	IsPaid bool `json:"isPaid"`
}

// Split represents a record dividing one cost among named participants.
// Members is ordered and always holds exactly one member named "Me" at
// index 0. Duplicate external names are kept as duplicate entries, not
// merged.
type Split struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	// Owner is the account identifier this split belongs to.
	Owner string `json:"owner"`

	Title string `json:"title"`

	// TotalAmount is the full cost being divided, in whole currency units.
	// The sum of member amounts may exceed it by up to len(Members)-1 units
	// under ceiling allocation.
	TotalAmount int64 `json:"totalAmount"`

	// Date is the expense date in YYYY-MM-DD form.
	Date string `json:"date"`

	// LinkedSubscriptionID references the subscription whose owner-cost
	// this split determines. Empty when the split is ad-hoc. At most one
	// split may reference a given subscription at a time.
	LinkedSubscriptionID string `json:"linkedSubscriptionId,omitempty"`

	Members []Member `json:"members"`

	// CreatedAt is the Unix timestamp when the split was created.
	CreatedAt int64 `json:"-"`
}

// Me returns the owner's member entry. Members always holds it at index 0
// for splits built by the service layer; the scan falls back to a search so
// records loaded from storage stay safe against reordering.
func (s Split) Me() (Member, bool) {
	for _, m := range s.Members {
		if m.Name == MeName {
			return m, true
		}
	}
	return Member{}, false
}

// FriendNames returns the names of all members except "Me", in order.
func (s Split) FriendNames() []string {
	names := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		if m.Name != MeName {
			names = append(names, m.Name)
		}
	}
	return names
}
