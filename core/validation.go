// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - Title and Description must not be empty
//   - Price must not be negative
//   - Condition must be valid (New or Used)
//   - ExpiresAt must be after CreatedAt
//
// NOT validated (populated by the write path):
//   - Vector (empty until the embedding provider runs)
//   - ID (0 is valid from database sequences)
//
// Categories are normalized in place: trimmed, de-duplicated, sorted.
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyTitle)
	}

	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyDescription)
	}

	if item.Price < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrNegativePrice)
	}

	if err := ValidateCondition(item.Condition); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	if !item.ExpiresAt.After(item.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrInvalidExpiry)
	}

	item.Categories = NormalizeCategories(item.Categories)
	return nil
}

// ValidateSeller validates a Seller according to domain rules.
func ValidateSeller(seller *Seller) error {
	if seller == nil {
		return fmt.Errorf("%w", ErrEmptySellerName)
	}
	if strings.TrimSpace(seller.Name) == "" {
		return ErrEmptySellerName
	}
	if strings.TrimSpace(seller.Contact) == "" {
		return ErrEmptySellerContact
	}
	return nil
}

// ValidateCondition validates that a Condition has a valid value.
func ValidateCondition(condition Condition) error {
	if condition != ConditionNew && condition != ConditionUsed {
		return fmt.Errorf("%w: value %d", ErrInvalidCondition, condition)
	}
	return nil
}

// ParseCondition parses a condition string from the wire.
// Both the enum names (NEW, USED) and the display values (Nuevo, Usado)
// are accepted, case-insensitively.
func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new", "nuevo":
		return ConditionNew, nil
	case "used", "usado":
		return ConditionUsed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
	}
}

// NormalizeCategories trims, de-duplicates, and sorts a category set.
func NormalizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
