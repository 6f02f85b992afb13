package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/catalogit/core"
	"github.com/poiesic/catalogit/storage"
)

// ProductRepository implements storage.ProductRepository for BadgerDB.
//
// Record writes and category index writes always share one transaction, so
// no reader can observe a record without its index membership or an index
// entry without its record.
type ProductRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(backend *Backend) (*ProductRepository, error) {
	idSeq, err := backend.GetSequence(productIDSeq)
	if err != nil {
		return nil, err
	}

	return &ProductRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ProductRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ProductRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Insert assigns a new id, persists the record and adds it to the category
// index, all in one transaction.
func (r *ProductRepository) Insert(ctx context.Context, category, name string) (*core.Product, error) {
	var product *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
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

		now := time.Now().UTC()
		product = &core.Product{
			Id:         core.ID(nextID),
			Category:   category,
			Name:       name,
			InsertedAt: now,
			UpdatedAt:  now,
		}

		key := makeProductKey(product.Id)
		if err := tx.Set(key, storage.MarshalProduct(product)); err != nil {
			return err
		}

		if err := indexInsert(tx, product.Id, product.Category); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return product, nil
}

// Get retrieves a single product by ID.
func (r *ProductRepository) Get(ctx context.Context, id core.ID) (*core.Product, error) {
	var result *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readProduct(tx, makeProductKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Replace overwrites category and name for an existing id. The old category
// is captured from the pre-update read inside the same transaction, so the
// index move can never act on a stale value.
func (r *ProductRepository) Replace(ctx context.Context, id core.ID, category, name string) (*core.Product, error) {
	var result *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProductKey(id)

		old, err := readProduct(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		updated := *old
		updated.Category = category
		updated.Name = name
		updated.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalProduct(&updated)); err != nil {
			return err
		}

		if err := indexMove(tx, id, old.Category, updated.Category); err != nil {
			return err
		}

		result = &updated
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// Remove deletes the record and its index membership together.
func (r *ProductRepository) Remove(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProductKey(id)

		// Read record to learn its category for index cleanup
		product, err := readProduct(tx, key)
		if err != nil {
			return err
		}
		if product == nil {
			return storage.ErrNotFound
		}

		if err := indexRemove(tx, id, product.Category); err != nil {
			return err
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListByCategory returns the [offset, offset+limit) window of the category's
// ordered id sequence resolved to full records, plus the total member count.
// The whole operation runs in one read transaction, so the page is a
// consistent snapshot.
func (r *ProductRepository) ListByCategory(ctx context.Context, category string, offset, limit int) ([]*core.Product, uint64, error) {
	products := make([]*core.Product, 0, limit)
	var total uint64

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, count, err := indexCategoryWindow(tx, category, offset, limit)
		if err != nil {
			return err
		}
		total = count

		for _, id := range ids {
			product, err := readProduct(tx, makeProductKey(id))
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: id %d indexed under %q has no record", storage.ErrIndexCorrupted, id, category)
			}
			products = append(products, product)
		}
		return nil
	}, false)

	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// IDsForCategory returns all ids currently associated with a category, in
// ascending id order.
func (r *ProductRepository) IDsForCategory(ctx context.Context, category string) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		ids, err = indexIDsForCategory(tx, category)
		return err
	}, false)
	return ids, err
}

// DistinctCategories returns every category with at least one live member,
// in ascending lexical order.
func (r *ProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		categories, err = indexDistinctCategories(tx)
		return err
	}, false)
	return categories, err
}

// readProduct reads a product record from the transaction.
func readProduct(tx *badger.Txn, key []byte) (*core.Product, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var product *core.Product
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		product, unmarshalErr = storage.UnmarshalProduct(val)
		return unmarshalErr
	})
	return product, err
}
