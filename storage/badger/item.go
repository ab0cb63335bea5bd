package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	idSeq, err := backend.GetSequence(itemIDSeq)
	if err != nil {
		return nil, err
	}

	return &ItemRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ItemRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddItems adds one or more items to storage.
func (r *ItemRepository) AddItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			item.Id = core.ID(nextID)

			if item.CreatedAt.IsZero() {
				item.CreatedAt = time.Now().UTC()
			}

			key := makeItemKey(item.Id)
			if err := tx.Set(key, storage.MarshalItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// UpdateItems updates existing items.
func (r *ItemRepository) UpdateItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeItemKey(item.Id)

			old, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			if err := tx.Set(key, storage.MarshalItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// DeleteItems removes items by their IDs.
func (r *ItemRepository) DeleteItems(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeItemKey(id)

			existing, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if existing == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetItem retrieves a single item by ID.
func (r *ItemRepository) GetItem(ctx context.Context, id core.ID) (*core.Item, error) {
	var item *core.Item

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		item, err = r.readItem(tx, makeItemKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, storage.ErrNotFound
	}

	return item, nil
}

// GetItems retrieves multiple items by their IDs, preserving request order.
// Missing items are skipped without error.
func (r *ItemRepository) GetItems(ctx context.Context, ids ...core.ID) ([]*core.Item, error) {
	items := make([]*core.Item, 0, len(ids))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := r.readItem(tx, makeItemKey(id))
			if err != nil {
				return err
			}
			if item != nil {
				items = append(items, item)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// AllItems retrieves every stored item in key (ID) order.
func (r *ItemRepository) AllItems(ctx context.Context) ([]*core.Item, error) {
	var items []*core.Item

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.forEachItem(tx, func(item *core.Item) error {
			items = append(items, item)
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// ListItems retrieves items matching the filter, ordered by popularity
// (Searches desc, Views desc, Id desc) and paginated server-side.
// The returned total counts all matches before pagination.
func (r *ItemRepository) ListItems(ctx context.Context, filter *core.ItemFilter, page, pageSize int) ([]*core.Item, int, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, storage.ErrInvalidQuery
	}

	var matched []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.forEachItem(tx, func(item *core.Item) error {
			if filter.Matches(item) {
				matched = append(matched, item)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, 0, err
	}

	core.SortByPopularity(matched)

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return []*core.Item{}, total, nil
	}
	end := min(start+pageSize, total)
	return matched[start:end], total, nil
}

// IncrementViews atomically increments an item's view counter.
func (r *ItemRepository) IncrementViews(ctx context.Context, id core.ID) (int64, error) {
	return r.incrementCounter(id, func(item *core.Item) *int64 { return &item.Views })
}

// IncrementSearches atomically increments an item's search counter.
func (r *ItemRepository) IncrementSearches(ctx context.Context, id core.ID) (int64, error) {
	return r.incrementCounter(id, func(item *core.Item) *int64 { return &item.Searches })
}

func (r *ItemRepository) incrementCounter(id core.ID, counter func(*core.Item) *int64) (int64, error) {
	var value int64

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeItemKey(id)
		item, err := r.readItem(tx, key)
		if err != nil {
			return err
		}
		if item == nil {
			return storage.ErrNotFound
		}

		c := counter(item)
		*c++
		value = *c

		if err := tx.Set(key, storage.MarshalItem(item)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return value, nil
}

// SetFeatured applies featured-flag changes in a single transaction.
// Items missing from storage are skipped.
func (r *ItemRepository) SetFeatured(ctx context.Context, changes map[core.ID]bool) error {
	if len(changes) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for id, featured := range changes {
			key := makeItemKey(id)
			item, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if item == nil {
				continue
			}
			if item.Featured == featured {
				continue
			}

			item.Featured = featured
			if err := tx.Set(key, storage.MarshalItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// EmbeddingSnapshot returns one entry per item with a non-empty embedding,
// in stable key order.
func (r *ItemRepository) EmbeddingSnapshot(ctx context.Context) ([]core.IndexEntry, error) {
	var entries []core.IndexEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.forEachItem(tx, func(item *core.Item) error {
			if len(item.Vector) == 0 {
				return nil
			}
			entries = append(entries, core.IndexEntry{
				ItemId: item.Id,
				Vector: item.Vector,
			})
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// forEachItem iterates all item records in key order.
func (r *ItemRepository) forEachItem(tx *badger.Txn, fn func(*core.Item) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(itemRecordPrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var item *core.Item
		err := iter.Item().Value(func(val []byte) error {
			var err error
			item, err = storage.UnmarshalItem(val)
			return err
		})
		if err != nil {
			return err
		}
		if item == nil {
			continue
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

// readItem reads an item by key, returning nil if it doesn't exist.
func (r *ItemRepository) readItem(tx *badger.Txn, key []byte) (*core.Item, error) {
	entry, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var item *core.Item
	err = entry.Value(func(val []byte) error {
		var err error
		item, err = storage.UnmarshalItem(val)
		return err
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}
