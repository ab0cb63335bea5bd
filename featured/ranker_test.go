package featured_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/featured"
	"github.com/poiesic/feria/storage"
	feriabadger "github.com/poiesic/feria/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) storage.ItemRepository {
	t.Helper()
	itemRepo, _, _, backend, err := feriabadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		itemRepo.Close()
		backend.Close()
	})
	return itemRepo
}

func addItem(t *testing.T, repo storage.ItemRepository, title string, searches int64, mutate func(*core.Item)) *core.Item {
	t.Helper()
	item := &core.Item{
		Title:       title,
		Description: "descripcion",
		Price:       100,
		Condition:   core.ConditionUsed,
		Available:   true,
		Searches:    searches,
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().Add(45 * 24 * time.Hour),
	}
	if mutate != nil {
		mutate(item)
	}
	added, err := repo.AddItems(context.Background(), item)
	require.NoError(t, err)
	return added[0]
}

func featuredIDs(t *testing.T, repo storage.ItemRepository) map[core.ID]bool {
	t.Helper()
	items, err := repo.AllItems(context.Background())
	require.NoError(t, err)
	ids := make(map[core.ID]bool)
	for _, item := range items {
		if item.Featured {
			ids[item.Id] = true
		}
	}
	return ids
}

func TestNewRanker_Validation(t *testing.T) {
	_, err := featured.NewRanker(nil)
	assert.ErrorIs(t, err, featured.ErrItemRepositoryRequired)
}

func TestRunOnce_SelectsTopN(t *testing.T) {
	repo := newRepo(t)
	var items []*core.Item
	for i := 0; i < 5; i++ {
		items = append(items, addItem(t, repo, "Articulo", int64(i), nil))
	}

	ranker, err := featured.NewRanker(repo, featured.WithTopN(2))
	require.NoError(t, err)
	require.NoError(t, ranker.RunOnce(context.Background()))

	ids := featuredIDs(t, repo)
	assert.Len(t, ids, 2)
	assert.True(t, ids[items[4].Id])
	assert.True(t, ids[items[3].Id])
}

func TestRunOnce_Idempotent(t *testing.T) {
	repo := newRepo(t)
	addItem(t, repo, "Articulo", 10, nil)

	ranker, err := featured.NewRanker(repo)
	require.NoError(t, err)

	require.NoError(t, ranker.RunOnce(context.Background()))
	first := featuredIDs(t, repo)

	require.NoError(t, ranker.RunOnce(context.Background()))
	assert.Equal(t, first, featuredIDs(t, repo))
}

func TestRunOnce_DemotesOnPopularityShift(t *testing.T) {
	repo := newRepo(t)
	old := addItem(t, repo, "Viejo", 10, nil)
	newcomer := addItem(t, repo, "Nuevo", 1, nil)

	ranker, err := featured.NewRanker(repo, featured.WithTopN(1))
	require.NoError(t, err)
	require.NoError(t, ranker.RunOnce(context.Background()))
	assert.True(t, featuredIDs(t, repo)[old.Id])

	for i := 0; i < 20; i++ {
		_, err := repo.IncrementSearches(context.Background(), newcomer.Id)
		require.NoError(t, err)
	}

	require.NoError(t, ranker.RunOnce(context.Background()))
	ids := featuredIDs(t, repo)
	assert.True(t, ids[newcomer.Id])
	assert.False(t, ids[old.Id])
}

func TestRunOnce_ExpiredLoseFlag(t *testing.T) {
	repo := newRepo(t)
	expired := addItem(t, repo, "Vencido", 100, func(i *core.Item) {
		i.Featured = true
		i.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
		i.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	})
	active := addItem(t, repo, "Vigente", 1, nil)

	ranker, err := featured.NewRanker(repo)
	require.NoError(t, err)
	require.NoError(t, ranker.RunOnce(context.Background()))

	ids := featuredIDs(t, repo)
	assert.False(t, ids[expired.Id])
	assert.True(t, ids[active.Id])
}

func TestRunOnce_WithdrawnLoseFlag(t *testing.T) {
	repo := newRepo(t)
	withdrawn := addItem(t, repo, "Retirado", 100, func(i *core.Item) {
		i.Featured = true
		i.Available = false
	})

	ranker, err := featured.NewRanker(repo)
	require.NoError(t, err)
	require.NoError(t, ranker.RunOnce(context.Background()))

	assert.False(t, featuredIDs(t, repo)[withdrawn.Id])
}

func TestRunOnce_LogsOldAndNewFlag(t *testing.T) {
	repo := newRepo(t)
	addItem(t, repo, "Vencido", 100, func(i *core.Item) {
		i.Featured = true
		i.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
		i.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	})
	addItem(t, repo, "Vigente", 1, nil)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ranker, err := featured.NewRanker(repo, featured.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, ranker.RunOnce(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "was=true")
	assert.Contains(t, out, "featured=false")
	assert.Contains(t, out, "was=false")
	assert.Contains(t, out, "featured=true")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := newRepo(t)
	addItem(t, repo, "Articulo", 1, nil)

	ranker, err := featured.NewRanker(repo, featured.WithInterval(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ranker.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("ranker did not stop after cancel")
	}

	assert.Len(t, featuredIDs(t, repo), 1)
}
