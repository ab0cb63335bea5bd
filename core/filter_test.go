package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func filterItem(now time.Time) *Item {
	return &Item{
		Id:         7,
		Title:      "Bicicleta",
		Price:      100,
		Categories: []string{"Deportes"},
		Condition:  ConditionUsed,
		LocalityId: IDFromContent("locality:Rosario"),
		SellerId:   3,
		Featured:   true,
		ExpiresAt:  now.Add(40 * 24 * time.Hour),
	}
}

func TestItemFilterMatches(t *testing.T) {
	now := time.Now().UTC()
	item := filterItem(now)

	t.Run("nil filter matches everything", func(t *testing.T) {
		var f *ItemFilter
		assert.True(t, f.Matches(item))
	})

	t.Run("empty filter matches", func(t *testing.T) {
		f := &ItemFilter{Now: now}
		assert.True(t, f.Matches(item))
	})

	t.Run("category", func(t *testing.T) {
		assert.True(t, (&ItemFilter{Category: "Deportes", Now: now}).Matches(item))
		assert.False(t, (&ItemFilter{Category: "Hogar", Now: now}).Matches(item))
	})

	t.Run("condition", func(t *testing.T) {
		used := ConditionUsed
		brandNew := ConditionNew
		assert.True(t, (&ItemFilter{Condition: &used, Now: now}).Matches(item))
		assert.False(t, (&ItemFilter{Condition: &brandNew, Now: now}).Matches(item))
	})

	t.Run("locality any-of", func(t *testing.T) {
		in := &ItemFilter{LocalityIds: []ID{item.LocalityId, 99}, Now: now}
		out := &ItemFilter{LocalityIds: []ID{99}, Now: now}
		assert.True(t, in.Matches(item))
		assert.False(t, out.Matches(item))
	})

	t.Run("price range", func(t *testing.T) {
		min := 50.0
		max := 200.0
		assert.True(t, (&ItemFilter{PriceMin: &min, PriceMax: &max, Now: now}).Matches(item))

		tooHigh := 500.0
		assert.False(t, (&ItemFilter{PriceMin: &tooHigh, Now: now}).Matches(item))

		tooLow := 50.0
		assert.False(t, (&ItemFilter{PriceMax: &tooLow, Now: now}).Matches(item))
	})

	t.Run("price max excludes regardless of anything else", func(t *testing.T) {
		cheap := filterItem(now)
		cheap.Price = 100
		pricey := filterItem(now)
		pricey.Price = 500
		max := 200.0
		f := &ItemFilter{PriceMax: &max, Now: now}
		assert.True(t, f.Matches(cheap))
		assert.False(t, f.Matches(pricey))
	})

	t.Run("expiry windows", func(t *testing.T) {
		over30 := filterItem(now) // expires in 40 days
		in5 := filterItem(now)
		in5.ExpiresAt = now.Add(5 * 24 * time.Hour)
		in12h := filterItem(now)
		in12h.ExpiresAt = now.Add(12 * time.Hour)

		assert.True(t, (&ItemFilter{ExpiresIn: ExpiryWindowOver30Days, Now: now}).Matches(over30))
		assert.False(t, (&ItemFilter{ExpiresIn: ExpiryWindowOver30Days, Now: now}).Matches(in5))

		assert.True(t, (&ItemFilter{ExpiresIn: ExpiryWindowOver7Days, Now: now}).Matches(over30))
		assert.False(t, (&ItemFilter{ExpiresIn: ExpiryWindowOver7Days, Now: now}).Matches(in5))

		assert.True(t, (&ItemFilter{ExpiresIn: ExpiryWindowWithinWeek, Now: now}).Matches(in5))
		assert.False(t, (&ItemFilter{ExpiresIn: ExpiryWindowWithinWeek, Now: now}).Matches(over30))
		assert.False(t, (&ItemFilter{ExpiresIn: ExpiryWindowWithinWeek, Now: now}).Matches(in12h))

		assert.True(t, (&ItemFilter{ExpiresIn: ExpiryWindowLastDay, Now: now}).Matches(in12h))
		assert.False(t, (&ItemFilter{ExpiresIn: ExpiryWindowLastDay, Now: now}).Matches(in5))
	})

	t.Run("active only", func(t *testing.T) {
		expired := filterItem(now)
		expired.ExpiresAt = now.Add(-time.Hour)
		f := &ItemFilter{ActiveOnly: true, Now: now}
		assert.True(t, f.Matches(item))
		assert.False(t, f.Matches(expired))
	})

	t.Run("featured only", func(t *testing.T) {
		plain := filterItem(now)
		plain.Featured = false
		f := &ItemFilter{FeaturedOnly: true, Now: now}
		assert.True(t, f.Matches(item))
		assert.False(t, f.Matches(plain))
	})

	t.Run("seller", func(t *testing.T) {
		assert.True(t, (&ItemFilter{SellerId: 3, Now: now}).Matches(item))
		assert.False(t, (&ItemFilter{SellerId: 4, Now: now}).Matches(item))
	})
}
