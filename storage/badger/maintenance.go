package badger

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/catalogit/core"
	"github.com/poiesic/catalogit/storage"
)

// rebuildBatchSize bounds the number of writes per transaction during an
// index rebuild, keeping each transaction well under Badger's size limit.
const rebuildBatchSize = 1000

var _ storage.IndexMaintainer = (*ProductRepository)(nil)

// ScanProducts calls fn once for every live product record. Iterates one
// read transaction, so the visited set is a consistent snapshot.
func (r *ProductRepository) ScanProducts(ctx context.Context, fn func(*core.Product) error) error {
	prefix := []byte(productRecordPrefix + ":")
	return r.backend.WithTx(func(tx *badger.Txn) error {
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}

			var product *core.Product
			err := item.Value(func(val []byte) error {
				var unmarshalErr error
				product, unmarshalErr = storage.UnmarshalProduct(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if err := fn(product); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// ScanIndexEntries calls fn once for every category index entry, in index
// key order.
func (r *ProductRepository) ScanIndexEntries(ctx context.Context, fn func(category string, id core.ID) error) error {
	prefix := []byte(productCategoryIndex + ":")
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}
			category, id, ok := parseCategoryIndexKey(key)
			if !ok {
				return storage.ErrIndexCorrupted
			}
			if err := fn(category, id); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// RebuildCategoryIndex drops every index entry and rewrites the index from
// the product records. Deletes and rewrites run in bounded batches, so a
// large store never exceeds the transaction size limit. The rebuild is not
// atomic as a whole; it is meant for offline repair.
func (r *ProductRepository) RebuildCategoryIndex(ctx context.Context) (int, error) {
	// Snapshot the existing index keys before mutating anything.
	var staleKeys [][]byte
	prefix := []byte(productCategoryIndex + ":")
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}
			staleKeys = append(staleKeys, item.KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(staleKeys); start += rebuildBatchSize {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		end := start + rebuildBatchSize
		if end > len(staleKeys) {
			end = len(staleKeys)
		}
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range staleKeys[start:end] {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return 0, err
		}
	}

	// Rewrite entries from the records, batching commits.
	written := 0
	var pending []*core.Product
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, product := range pending {
				if err := indexInsert(tx, product.Id, product.Category); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
		written += len(pending)
		pending = pending[:0]
		return nil
	}

	err = r.ScanProducts(ctx, func(product *core.Product) error {
		pending = append(pending, product)
		if len(pending) == rebuildBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return written, nil
}
