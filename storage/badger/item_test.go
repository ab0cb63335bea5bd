package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(title string) *core.Item {
	return &core.Item{
		Title:       title,
		Description: "descripcion de " + title,
		Price:       100,
		Categories:  []string{"Hogar"},
		Condition:   core.ConditionUsed,
		Available:   true,
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().Add(45 * 24 * time.Hour),
		Vector:      []float32{0.6, 0.8},
	}
}

func TestItemRepository_AddAndGet(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	items, err := itemRepo.AddItems(ctx, newTestItem("Bicicleta"), newTestItem("Heladera"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotZero(t, items[0].Id)
	assert.NotZero(t, items[1].Id)
	assert.NotEqual(t, items[0].Id, items[1].Id)

	got, err := itemRepo.GetItem(ctx, items[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Bicicleta", got.Title)
	assert.Equal(t, []float32{0.6, 0.8}, got.Vector)

	_, err = itemRepo.GetItem(ctx, 99999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestItemRepository_GetItems_PreservesOrderSkipsMissing(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	items, err := itemRepo.AddItems(ctx, newTestItem("A"), newTestItem("B"), newTestItem("C"))
	require.NoError(t, err)

	got, err := itemRepo.GetItems(ctx, items[2].Id, 99999, items[0].Id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Title)
	assert.Equal(t, "A", got[1].Title)
}

func TestItemRepository_UpdateItems(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	items, err := itemRepo.AddItems(ctx, newTestItem("Mesa"))
	require.NoError(t, err)

	items[0].Price = 250
	_, err = itemRepo.UpdateItems(ctx, items[0])
	require.NoError(t, err)

	got, err := itemRepo.GetItem(ctx, items[0].Id)
	require.NoError(t, err)
	assert.Equal(t, float64(250), got.Price)

	missing := newTestItem("Fantasma")
	missing.Id = 99999
	_, err = itemRepo.UpdateItems(ctx, missing)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestItemRepository_DeleteItems(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	items, err := itemRepo.AddItems(ctx, newTestItem("Silla"))
	require.NoError(t, err)

	require.NoError(t, itemRepo.DeleteItems(ctx, items[0].Id))

	_, err = itemRepo.GetItem(ctx, items[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = itemRepo.DeleteItems(ctx, items[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestItemRepository_ListItems(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	a := newTestItem("A")
	a.Searches = 5
	b := newTestItem("B")
	b.Searches = 5
	b.Views = 10
	c := newTestItem("C")
	c.Searches = 20

	_, err = itemRepo.AddItems(ctx, a, b, c)
	require.NoError(t, err)

	t.Run("popularity order", func(t *testing.T) {
		items, total, err := itemRepo.ListItems(ctx, nil, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, items, 3)
		assert.Equal(t, "C", items[0].Title)
		assert.Equal(t, "B", items[1].Title)
		assert.Equal(t, "A", items[2].Title)
	})

	t.Run("pagination", func(t *testing.T) {
		items, total, err := itemRepo.ListItems(ctx, nil, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, items, 1)
		assert.Equal(t, "A", items[0].Title)
	})

	t.Run("page beyond total", func(t *testing.T) {
		items, total, err := itemRepo.ListItems(ctx, nil, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Empty(t, items)
	})

	t.Run("invalid page", func(t *testing.T) {
		_, _, err := itemRepo.ListItems(ctx, nil, 0, 10)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})

	t.Run("filtered", func(t *testing.T) {
		priceMax := 50.0
		filter := &core.ItemFilter{PriceMax: &priceMax}
		items, total, err := itemRepo.ListItems(ctx, filter, 1, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})
}

func TestItemRepository_Counters(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	items, err := itemRepo.AddItems(ctx, newTestItem("Monitor"))
	require.NoError(t, err)
	id := items[0].Id

	views, err := itemRepo.IncrementViews(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	views, err = itemRepo.IncrementViews(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)

	searches, err := itemRepo.IncrementSearches(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), searches)

	got, err := itemRepo.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)
	assert.Equal(t, int64(1), got.Searches)

	_, err = itemRepo.IncrementViews(ctx, 99999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestItemRepository_SetFeatured(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	items, err := itemRepo.AddItems(ctx, newTestItem("A"), newTestItem("B"))
	require.NoError(t, err)

	err = itemRepo.SetFeatured(ctx, map[core.ID]bool{
		items[0].Id: true,
		99999:       true, // missing, skipped
	})
	require.NoError(t, err)

	got, err := itemRepo.GetItem(ctx, items[0].Id)
	require.NoError(t, err)
	assert.True(t, got.Featured)

	got, err = itemRepo.GetItem(ctx, items[1].Id)
	require.NoError(t, err)
	assert.False(t, got.Featured)
}

func TestItemRepository_EmbeddingSnapshot(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	withVec := newTestItem("ConVector")
	noVec := newTestItem("SinVector")
	noVec.Vector = nil

	items, err := itemRepo.AddItems(ctx, withVec, noVec)
	require.NoError(t, err)

	entries, err := itemRepo.EmbeddingSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, items[0].Id, entries[0].ItemId)
	assert.Equal(t, []float32{0.6, 0.8}, entries[0].Vector)
}
