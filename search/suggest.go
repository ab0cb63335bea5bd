package search

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/spell"
)

const (
	// minSuggestLength is the minimum query length (in runes) for suggestions.
	minSuggestLength = 2

	// maxSuggestions caps the suggestion list.
	maxSuggestions = 8
)

// Suggest returns autocomplete suggestions for a partial query: active
// item titles (optionally restricted to a category), plus the locality
// and seller names those active items reference. Matching is accent- and
// case-insensitive. Queries shorter than two runes return nothing.
func (p *Processor) Suggest(ctx context.Context, query, category string) ([]string, error) {
	needle := spell.NormalizeTerm(query)
	if len([]rune(needle)) < minSuggestLength {
		return []string{}, nil
	}
	category = strings.TrimSpace(category)

	suggestions := make([]string, 0, maxSuggestions)
	seen := make(map[string]bool)

	add := func(candidate string) bool {
		if len(suggestions) >= maxSuggestions {
			return false
		}
		key := spell.NormalizeTerm(candidate)
		if !strings.Contains(key, needle) || seen[key] {
			return true
		}
		seen[key] = true
		suggestions = append(suggestions, candidate)
		return len(suggestions) < maxSuggestions
	}

	items, err := p.itemRepository.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	localityIds := make(map[core.ID]bool)
	sellerIds := make(map[core.ID]bool)
	for _, item := range items {
		if !item.IsActive(now) {
			continue
		}
		if category != "" && !item.HasCategory(category) {
			continue
		}
		localityIds[item.LocalityId] = true
		sellerIds[item.SellerId] = true
		if !add(item.Title) {
			return suggestions, nil
		}
	}

	localities, err := p.geoRepository.ListLocalities(ctx, 0)
	if err != nil {
		return nil, err
	}
	localityNames := make([]string, 0, len(localities))
	for _, loc := range localities {
		if localityIds[loc.Id] {
			localityNames = append(localityNames, loc.Name)
		}
	}
	slices.Sort(localityNames)
	for _, name := range localityNames {
		if !add(name) {
			return suggestions, nil
		}
	}

	sellers, err := p.sellerRepository.ListSellers(ctx)
	if err != nil {
		return nil, err
	}
	sellerNames := make([]string, 0, len(sellers))
	for _, seller := range sellers {
		if sellerIds[seller.Id] {
			sellerNames = append(sellerNames, seller.Name)
		}
	}
	slices.Sort(sellerNames)
	for _, name := range sellerNames {
		if !add(name) {
			return suggestions, nil
		}
	}

	return suggestions, nil
}
