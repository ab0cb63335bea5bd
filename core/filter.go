package core

import (
	"fmt"
	"slices"
	"time"
)

// ExpiryWindow buckets items by how far away their expiry is.
// The tokens match the original wire values.
type ExpiryWindow string

const (
	// ExpiryWindowNone disables the expiry predicate.
	ExpiryWindowNone ExpiryWindow = ""
	// ExpiryWindowOver30Days matches items expiring more than 30 days out.
	ExpiryWindowOver30Days ExpiryWindow = "30+"
	// ExpiryWindowOver7Days matches items expiring more than 7 days out.
	ExpiryWindowOver7Days ExpiryWindow = "7+"
	// ExpiryWindowWithinWeek matches items expiring between 1 and 7 days out.
	ExpiryWindowWithinWeek ExpiryWindow = "1"
	// ExpiryWindowLastDay matches items expiring within a day.
	ExpiryWindowLastDay ExpiryWindow = "0"
)

// ParseExpiryWindow parses an expiry window token from the wire.
func ParseExpiryWindow(s string) (ExpiryWindow, error) {
	switch ExpiryWindow(s) {
	case ExpiryWindowNone, ExpiryWindowOver30Days, ExpiryWindowOver7Days,
		ExpiryWindowWithinWeek, ExpiryWindowLastDay:
		return ExpiryWindow(s), nil
	default:
		return ExpiryWindowNone, fmt.Errorf("%w: %q", ErrInvalidExpiryWindow, s)
	}
}

// ItemFilter holds the optional filter criteria applied to listings.
//
// Matches evaluates predicates in a fixed order (category, condition,
// locality, price min, price max, expiry window, active, featured,
// seller) so filter semantics never depend on construction order.
type ItemFilter struct {
	Category    string
	Condition   *Condition
	LocalityIds []ID // any-of; empty disables the locality predicate
	PriceMin    *float64
	PriceMax    *float64
	ExpiresIn   ExpiryWindow
	ActiveOnly  bool
	FeaturedOnly bool
	SellerId    ID // 0 disables the seller predicate
	Now         time.Time
}

// Matches reports whether the item passes every enabled predicate.
func (f *ItemFilter) Matches(item *Item) bool {
	if f == nil {
		return true
	}
	now := f.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if f.Category != "" && !item.HasCategory(f.Category) {
		return false
	}
	if f.Condition != nil && item.Condition != *f.Condition {
		return false
	}
	if len(f.LocalityIds) > 0 && !slices.Contains(f.LocalityIds, item.LocalityId) {
		return false
	}
	if f.PriceMin != nil && item.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && item.Price > *f.PriceMax {
		return false
	}
	if !f.matchesExpiryWindow(item, now) {
		return false
	}
	if f.ActiveOnly && !item.IsActive(now) {
		return false
	}
	if f.FeaturedOnly && !item.Featured {
		return false
	}
	if f.SellerId != 0 && item.SellerId != f.SellerId {
		return false
	}
	return true
}

func (f *ItemFilter) matchesExpiryWindow(item *Item, now time.Time) bool {
	switch f.ExpiresIn {
	case ExpiryWindowOver30Days:
		return item.ExpiresAt.After(now.Add(30 * 24 * time.Hour))
	case ExpiryWindowOver7Days:
		return item.ExpiresAt.After(now.Add(7 * 24 * time.Hour))
	case ExpiryWindowWithinWeek:
		return item.ExpiresAt.After(now.Add(24*time.Hour)) &&
			!item.ExpiresAt.After(now.Add(7*24*time.Hour))
	case ExpiryWindowLastDay:
		return !item.ExpiresAt.After(now.Add(24 * time.Hour))
	default:
		return true
	}
}
