package badger

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/storage"
)

// SellerRepository implements storage.SellerRepository for BadgerDB.
// Sellers use content-based IDs derived from their contact handle.
type SellerRepository struct {
	backend *Backend

	// serializes get-or-create so concurrent creates of the same seller
	// don't race on the contact index
	createMu sync.Mutex
}

var _ storage.SellerRepository = (*SellerRepository)(nil)

// NewSellerRepository creates a new SellerRepository.
func NewSellerRepository(backend *Backend) *SellerRepository {
	return &SellerRepository{backend: backend}
}

// Close is a no-op; the backend owns all resources.
func (r *SellerRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SellerRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSellers adds sellers, assigning content-based IDs and timestamps.
func (r *SellerRepository) AddSellers(ctx context.Context, sellers ...*core.Seller) ([]*core.Seller, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, seller := range sellers {
			if err := core.ValidateSeller(seller); err != nil {
				return err
			}

			seller.Id = core.IDFromContent("seller:" + seller.Contact)
			if seller.CreatedAt.IsZero() {
				seller.CreatedAt = time.Now().UTC()
			}

			if err := tx.Set(makeSellerKey(seller.Id), storage.MarshalSeller(seller)); err != nil {
				return err
			}
			if err := tx.Set(makeSellerContactKey(seller.Contact), storage.MarshalID(seller.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return sellers, err
}

// GetSeller retrieves a seller by ID.
func (r *SellerRepository) GetSeller(ctx context.Context, id core.ID) (*core.Seller, error) {
	var seller *core.Seller

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeSellerKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return entry.Value(func(val []byte) error {
			var err error
			seller, err = storage.UnmarshalSeller(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return seller, nil
}

// FindSellerByContact finds a seller by contact handle.
func (r *SellerRepository) FindSellerByContact(ctx context.Context, contact string) (*core.Seller, error) {
	var id core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeSellerContactKey(contact))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return entry.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return r.GetSeller(ctx, id)
}

// ListSellers returns all sellers.
func (r *SellerRepository) ListSellers(ctx context.Context) ([]*core.Seller, error) {
	var sellers []*core.Seller

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sellerRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				seller, err := storage.UnmarshalSeller(val)
				if err != nil {
					return err
				}
				sellers = append(sellers, seller)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return sellers, nil
}

// GetOrCreateSeller finds a seller by contact handle, creating it if needed.
func (r *SellerRepository) GetOrCreateSeller(ctx context.Context, name, contact string, localityId core.ID) (*core.Seller, error) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	seller, err := r.FindSellerByContact(ctx, contact)
	if err == nil {
		return seller, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	seller = &core.Seller{
		Name:       name,
		Contact:    contact,
		LocalityId: localityId,
	}
	added, err := r.AddSellers(ctx, seller)
	if err != nil {
		return nil, err
	}
	return added[0], nil
}
