package storage

import (
	"context"

	"github.com/poiesic/feria/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ItemRepository provides operations for managing marketplace listings.
type ItemRepository interface {
	Repository

	// AddItems adds one or more items to storage.
	// Generates new IDs from sequence and sets CreatedAt if not already set.
	// Returns the items with generated IDs and timestamps populated.
	AddItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error)

	// UpdateItems updates existing items.
	// Returns ErrNotFound if any item doesn't exist.
	UpdateItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error)

	// DeleteItems removes items by their IDs.
	// Returns ErrNotFound if any item doesn't exist.
	DeleteItems(ctx context.Context, ids ...core.ID) error

	// GetItem retrieves a single item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.Item, error)

	// GetItems retrieves multiple items by their IDs.
	// Returns only the items that exist, in request order (no error for
	// missing items).
	GetItems(ctx context.Context, ids ...core.ID) ([]*core.Item, error)

	// AllItems retrieves every stored item in key order.
	AllItems(ctx context.Context) ([]*core.Item, error)

	// ListItems retrieves the items matching the filter, ordered by
	// (Searches desc, Views desc, Id desc), paginated by (page, pageSize)
	// with page starting at 1. The returned total is the filtered count
	// before pagination.
	ListItems(ctx context.Context, filter *core.ItemFilter, page, pageSize int) ([]*core.Item, int, error)

	// IncrementViews atomically increments an item's view counter and
	// returns the new value. Returns ErrNotFound if the item doesn't exist.
	IncrementViews(ctx context.Context, id core.ID) (int64, error)

	// IncrementSearches atomically increments an item's search counter and
	// returns the new value. Returns ErrNotFound if the item doesn't exist.
	IncrementSearches(ctx context.Context, id core.ID) (int64, error)

	// SetFeatured applies the given featured-flag changes in a single
	// transaction. Items missing from storage are skipped.
	SetFeatured(ctx context.Context, changes map[core.ID]bool) error

	// EmbeddingSnapshot returns one (itemID, vector) entry per stored item
	// with a non-empty embedding, in stable key order. The snapshot is the
	// input to a vector index rebuild.
	EmbeddingSnapshot(ctx context.Context) ([]core.IndexEntry, error)
}

// GeoRepository provides operations for provinces and localities.
// Both use content-addressed IDs derived from their names.
type GeoRepository interface {
	Repository

	// AddProvinces adds provinces, assigning content-based IDs.
	AddProvinces(ctx context.Context, provinces ...*core.Province) ([]*core.Province, error)

	// AddLocalities adds localities, assigning content-based IDs.
	AddLocalities(ctx context.Context, localities ...*core.Locality) ([]*core.Locality, error)

	// GetProvince retrieves a province by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetProvince(ctx context.Context, id core.ID) (*core.Province, error)

	// GetLocality retrieves a locality by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetLocality(ctx context.Context, id core.ID) (*core.Locality, error)

	// FindProvinceByName finds a province by exact name.
	// Returns ErrNotFound if no province matches.
	FindProvinceByName(ctx context.Context, name string) (*core.Province, error)

	// FindLocalityByName finds a locality by exact name.
	// Returns ErrNotFound if no locality matches.
	FindLocalityByName(ctx context.Context, name string) (*core.Locality, error)

	// ListProvinces returns all provinces.
	ListProvinces(ctx context.Context) ([]*core.Province, error)

	// ListLocalities returns all localities, optionally restricted to a
	// province (provinceId 0 returns every locality).
	ListLocalities(ctx context.Context, provinceId core.ID) ([]*core.Locality, error)
}

// SellerRepository provides operations for sellers.
type SellerRepository interface {
	Repository

	// AddSellers adds sellers, assigning content-based IDs from their
	// contact handles and setting CreatedAt.
	AddSellers(ctx context.Context, sellers ...*core.Seller) ([]*core.Seller, error)

	// GetSeller retrieves a seller by ID.
	// Returns ErrNotFound if the seller doesn't exist.
	GetSeller(ctx context.Context, id core.ID) (*core.Seller, error)

	// FindSellerByContact finds a seller by contact handle.
	// Returns ErrNotFound if no seller matches.
	FindSellerByContact(ctx context.Context, contact string) (*core.Seller, error)

	// ListSellers returns all sellers.
	ListSellers(ctx context.Context) ([]*core.Seller, error)

	// GetOrCreateSeller finds a seller by contact handle, creating it with
	// the given name and locality if it doesn't exist.
	// Thread-safe: handles concurrent creation attempts.
	GetOrCreateSeller(ctx context.Context, name, contact string, localityId core.ID) (*core.Seller, error)
}
