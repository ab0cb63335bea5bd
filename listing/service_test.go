package listing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/feria/ai/mock"
	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/index"
	"github.com/poiesic/feria/listing"
	"github.com/poiesic/feria/spell"
	"github.com/poiesic/feria/storage"
	feriabadger "github.com/poiesic/feria/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service    *listing.Service
	itemRepo   storage.ItemRepository
	sellerRepo storage.SellerRepository
	embedder   *mock.MockEmbedder
	corrector  *spell.Corrector
	index      *index.Index
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	itemRepo, _, sellerRepo, backend, err := feriabadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		itemRepo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedderWithDimension(3)
	corrector := spell.NewCorrector()
	idx := index.New()

	service, err := listing.NewService(
		itemRepo, sellerRepo, mock.NewMockProviderWithEmbedder(embedder), corrector, idx)
	require.NoError(t, err)

	return &fixture{
		service:    service,
		itemRepo:   itemRepo,
		sellerRepo: sellerRepo,
		embedder:   embedder,
		corrector:  corrector,
		index:      idx,
	}
}

func newDraft(title string) *listing.Draft {
	return &listing.Draft{
		Title:         title,
		Description:   "descripcion de " + title,
		Price:         100,
		Categories:    []string{"Hogar"},
		Condition:     core.ConditionUsed,
		SellerName:    "María",
		SellerContact: "maria@example.com",
	}
}

func TestNewService_Validation(t *testing.T) {
	f := newFixture(t)
	provider := mock.NewMockProvider()

	_, err := listing.NewService(nil, f.sellerRepo, provider, nil, f.index)
	assert.ErrorIs(t, err, listing.ErrItemRepositoryRequired)

	_, err = listing.NewService(f.itemRepo, nil, provider, nil, f.index)
	assert.ErrorIs(t, err, listing.ErrSellerRepositoryRequired)

	_, err = listing.NewService(f.itemRepo, f.sellerRepo, nil, nil, f.index)
	assert.ErrorIs(t, err, listing.ErrAIProviderRequired)

	_, err = listing.NewService(f.itemRepo, f.sellerRepo, provider, nil, nil)
	assert.ErrorIs(t, err, listing.ErrIndexRequired)
}

func TestCreateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, newDraft("Bicicleta rodado 26"))
	require.NoError(t, err)

	assert.NotZero(t, item.Id)
	assert.Len(t, item.Vector, 3)
	assert.False(t, item.ExpiresAt.IsZero())

	// Seller created and linked.
	seller, err := f.sellerRepo.FindSellerByContact(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, seller.Id, item.SellerId)

	// Index synchronized before returning.
	assert.Equal(t, 1, f.index.Len())

	// Vocabulary fed to the corrector.
	corrected, suggestion := f.corrector.Correct("bicicletaa")
	assert.Equal(t, "bicicleta", corrected)
	assert.Equal(t, "bicicleta", suggestion)
}

func TestCreateItem_DefaultExpiry(t *testing.T) {
	f := newFixture(t)

	item, err := f.service.CreateItem(context.Background(), newDraft("Mesa"))
	require.NoError(t, err)

	remaining := time.Until(item.ExpiresAt)
	assert.InDelta(t, listing.DefaultExpiry.Hours(), remaining.Hours(), 1)
}

func TestCreateItem_InvalidDraft(t *testing.T) {
	f := newFixture(t)

	draft := newDraft("Mesa")
	draft.Title = ""
	_, err := f.service.CreateItem(context.Background(), draft)
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
	assert.Zero(t, f.index.Len())
}

func TestCreateItem_EmbeddingFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("model offline")
	}

	_, err := f.service.CreateItem(context.Background(), newDraft("Mesa"))
	assert.ErrorIs(t, err, listing.ErrEmbeddingFailed)

	// Nothing persisted, nothing indexed.
	items, err := f.itemRepo.AllItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, f.index.Len())
}

func TestUpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, newDraft("Bicicleta rodado 26"))
	require.NoError(t, err)
	oldVector := item.Vector

	item.Title = "Bicicleta rodado 29"
	updated, err := f.service.UpdateItem(ctx, item)
	require.NoError(t, err)
	assert.NotEqual(t, oldVector, updated.Vector)

	got, err := f.itemRepo.GetItem(ctx, item.Id)
	require.NoError(t, err)
	assert.Equal(t, "Bicicleta rodado 29", got.Title)
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, newDraft("Bicicleta rodado 26"))
	require.NoError(t, err)
	require.Equal(t, 1, f.index.Len())

	require.NoError(t, f.service.DeleteItem(ctx, item.Id))

	_, err = f.itemRepo.GetItem(ctx, item.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, f.index.Len())
}

func TestRecordView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, newDraft("Monitor"))
	require.NoError(t, err)

	views, err := f.service.RecordView(ctx, item.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)
}

func TestRecordSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, newDraft("Monitor"))
	require.NoError(t, err)

	searches, err := f.service.RecordSearch(ctx, item.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), searches)
}

func TestSeedItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	drafts := make([]*listing.Draft, 20)
	for i := range drafts {
		drafts[i] = newDraft("Articulo")
	}

	items, err := f.service.SeedItems(ctx, drafts)
	require.NoError(t, err)
	assert.Len(t, items, 20)
	assert.Equal(t, 20, f.index.Len())

	stored, err := f.itemRepo.AllItems(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 20)
}

func TestSeedItems_FailedDraftFailsBatch(t *testing.T) {
	f := newFixture(t)

	drafts := []*listing.Draft{newDraft("Valido"), newDraft("Invalido")}
	drafts[1].Description = ""

	_, err := f.service.SeedItems(context.Background(), drafts)
	assert.ErrorIs(t, err, core.ErrEmptyDescription)

	items, err := f.itemRepo.AllItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}
