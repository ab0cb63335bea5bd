package core

import "slices"

// SortByPopularity orders items by (Searches desc, Views desc, Id desc).
// This is the listing order for empty-query browsing and the ranking
// order for the featured carousel.
func SortByPopularity(items []*Item) {
	slices.SortFunc(items, func(a, b *Item) int {
		if a.Searches != b.Searches {
			if a.Searches > b.Searches {
				return -1
			}
			return 1
		}
		if a.Views != b.Views {
			if a.Views > b.Views {
				return -1
			}
			return 1
		}
		if a.Id != b.Id {
			if a.Id > b.Id {
				return -1
			}
			return 1
		}
		return 0
	})
}
