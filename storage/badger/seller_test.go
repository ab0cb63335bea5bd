package badger

import (
	"context"
	"testing"

	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellerRepository_AddAndFind(t *testing.T) {
	itemRepo, _, sellerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	sellers, err := sellerRepo.AddSellers(ctx, &core.Seller{
		Name:    "María",
		Contact: "maria@example.com",
	})
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.NotZero(t, sellers[0].Id)
	assert.False(t, sellers[0].CreatedAt.IsZero())

	got, err := sellerRepo.FindSellerByContact(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, sellers[0].Id, got.Id)
	assert.Equal(t, "María", got.Name)

	_, err = sellerRepo.FindSellerByContact(ctx, "nadie@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSellerRepository_AddSellers_Invalid(t *testing.T) {
	itemRepo, _, sellerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	_, err = sellerRepo.AddSellers(context.Background(), &core.Seller{Name: "SinContacto"})
	assert.ErrorIs(t, err, core.ErrEmptySellerContact)
}

func TestSellerRepository_ListSellers(t *testing.T) {
	itemRepo, _, sellerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	_, err = sellerRepo.AddSellers(ctx,
		&core.Seller{Name: "María", Contact: "maria@example.com"},
		&core.Seller{Name: "Juan", Contact: "juan@example.com"},
	)
	require.NoError(t, err)

	sellers, err := sellerRepo.ListSellers(ctx)
	require.NoError(t, err)
	assert.Len(t, sellers, 2)
}

func TestSellerRepository_GetOrCreateSeller(t *testing.T) {
	itemRepo, _, sellerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer itemRepo.Close()

	ctx := context.Background()

	created, err := sellerRepo.GetOrCreateSeller(ctx, "Juan", "juan@example.com", 0)
	require.NoError(t, err)
	assert.NotZero(t, created.Id)

	// Same contact returns the existing record even with a different name.
	found, err := sellerRepo.GetOrCreateSeller(ctx, "Juan Carlos", "juan@example.com", 0)
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
	assert.Equal(t, "Juan", found.Name)
}
