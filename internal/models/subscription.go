package models

import (
	"strings"
	"time"
)

// Category classifies a subscription. The set is fixed; anything outside it
// fails validation.
type Category string

const (
	CategoryPersonal      Category = "Personal"
	CategoryEntertainment Category = "Entertainment"
	CategoryWork          Category = "Work"
	CategoryUtilities     Category = "Utilities"
	CategoryFamily        Category = "Family"
)

// Validate reports whether the category is one of the known values.
func (c Category) Validate() error {
	switch c {
	case CategoryPersonal, CategoryEntertainment, CategoryWork, CategoryUtilities, CategoryFamily:
		return nil
	}
	return ErrInvalidCategory
}

// Subscription represents a recurring cost owned by one account.
//
// CostForMe and SharedWith are derived: they equal Price and the empty list
// while the subscription is unlinked, and mirror the linked split's "Me"
// share and external member names while a split links it. They are written
// only through the synchronization logic in the service layer, never by
// handlers directly.
type Subscription struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	// Owner is the account identifier this subscription belongs to.
	Owner string `json:"owner"`

	Name     string   `json:"name"`
	Category Category `json:"category"`

	// Price is the nominal monthly price in whole currency units.
	Price int64 `json:"price"`

	// Date is the billing/start date in YYYY-MM-DD form.
	Date string `json:"date"`

	// CostForMe is the portion of Price attributed to the owner.
	CostForMe int64 `json:"costForMe"`

	// SharedWith lists the external participants currently splitting this
	// subscription, in split-member order. Empty when unshared.
	SharedWith []string `json:"sharedWith"`

	// PaidMonths holds the YYYY-MM months the owner confirmed as paid.
	PaidMonths []string `json:"paidMonths"`

	// CreatedAt is the Unix timestamp when the subscription was created.
	CreatedAt int64 `json:"-"`
}

// Validate checks the caller-supplied fields. Derived fields are not
// inspected; they are owned by the service layer.
func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Owner) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := s.Category.Validate(); err != nil {
		return err
	}
	if s.Price <= 0 {
		return ErrInvalidAmount
	}
	return ValidateDate(s.Date)
}

// ValidateDate checks a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ValidateMonth checks a YYYY-MM month identifier.
func ValidateMonth(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return ErrInvalidMonth
	}
	return nil
}

// CategoryTotal is one row of the analytics breakdown: the sum of CostForMe
// over an owner's subscriptions in one category. Derived on demand, never
// persisted.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    int64    `json:"total"`
}
