package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/storage"
)

// GeoRepository implements storage.GeoRepository for BadgerDB.
// Provinces and localities use content-based IDs derived from their names,
// so re-adding the same place is idempotent.
type GeoRepository struct {
	backend *Backend
}

var _ storage.GeoRepository = (*GeoRepository)(nil)

// NewGeoRepository creates a new GeoRepository.
func NewGeoRepository(backend *Backend) *GeoRepository {
	return &GeoRepository{backend: backend}
}

// Close is a no-op; the backend owns all resources.
func (r *GeoRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *GeoRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddProvinces adds provinces, assigning content-based IDs.
func (r *GeoRepository) AddProvinces(ctx context.Context, provinces ...*core.Province) ([]*core.Province, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, province := range provinces {
			province.Id = core.IDFromContent("province:" + province.Name)

			if err := tx.Set(makeProvinceKey(province.Id), storage.MarshalProvince(province)); err != nil {
				return err
			}
			if err := tx.Set(makeProvinceNameKey(province.Name), storage.MarshalID(province.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return provinces, err
}

// AddLocalities adds localities, assigning content-based IDs and updating
// the province index.
func (r *GeoRepository) AddLocalities(ctx context.Context, localities ...*core.Locality) ([]*core.Locality, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, locality := range localities {
			locality.Id = core.IDFromContent("locality:" + locality.Name)

			if err := tx.Set(makeLocalityKey(locality.Id), storage.MarshalLocality(locality)); err != nil {
				return err
			}
			if err := tx.Set(makeLocalityNameKey(locality.Name), storage.MarshalID(locality.Id)); err != nil {
				return err
			}
			provKey := makeLocalityProvinceKey(locality.ProvinceId, locality.Id)
			if err := tx.Set(provKey, storage.MarshalID(locality.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return localities, err
}

// GetProvince retrieves a province by ID.
func (r *GeoRepository) GetProvince(ctx context.Context, id core.ID) (*core.Province, error) {
	var province *core.Province

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeProvinceKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return entry.Value(func(val []byte) error {
			var err error
			province, err = storage.UnmarshalProvince(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return province, nil
}

// GetLocality retrieves a locality by ID.
func (r *GeoRepository) GetLocality(ctx context.Context, id core.ID) (*core.Locality, error) {
	var locality *core.Locality

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeLocalityKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return entry.Value(func(val []byte) error {
			var err error
			locality, err = storage.UnmarshalLocality(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return locality, nil
}

// FindProvinceByName finds a province by exact name.
func (r *GeoRepository) FindProvinceByName(ctx context.Context, name string) (*core.Province, error) {
	id, err := r.lookupID(makeProvinceNameKey(name))
	if err != nil {
		return nil, err
	}
	return r.GetProvince(ctx, id)
}

// FindLocalityByName finds a locality by exact name.
func (r *GeoRepository) FindLocalityByName(ctx context.Context, name string) (*core.Locality, error) {
	id, err := r.lookupID(makeLocalityNameKey(name))
	if err != nil {
		return nil, err
	}
	return r.GetLocality(ctx, id)
}

// ListProvinces returns all provinces.
func (r *GeoRepository) ListProvinces(ctx context.Context) ([]*core.Province, error) {
	var provinces []*core.Province

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(provincePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				province, err := storage.UnmarshalProvince(val)
				if err != nil {
					return err
				}
				provinces = append(provinces, province)
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

	return provinces, nil
}

// ListLocalities returns all localities, optionally restricted to a province.
func (r *GeoRepository) ListLocalities(ctx context.Context, provinceId core.ID) ([]*core.Locality, error) {
	if provinceId != 0 {
		return r.listProvinceLocalities(ctx, provinceId)
	}

	var localities []*core.Locality
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(localityPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				locality, err := storage.UnmarshalLocality(val)
				if err != nil {
					return err
				}
				localities = append(localities, locality)
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

	return localities, nil
}

func (r *GeoRepository) listProvinceLocalities(ctx context.Context, provinceId core.ID) ([]*core.Locality, error) {
	var ids []core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialLocalityProvinceKey(provinceId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
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

	localities := make([]*core.Locality, 0, len(ids))
	for _, id := range ids {
		locality, err := r.GetLocality(ctx, id)
		if err != nil {
			return nil, err
		}
		localities = append(localities, locality)
	}
	return localities, nil
}

func (r *GeoRepository) lookupID(key []byte) (core.ID, error) {
	var id core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(key)
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
		return 0, err
	}

	return id, nil
}
