package badger

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/catalogit/core"
	"github.com/poiesic/catalogit/storage"
)

// The category index is a maintained ordered association from category value
// to record ids, stored as composite keys (see keys.go). Key existence is
// membership: an entry appears when its first member is added and vanishes
// with its last member, so there is no per-category bookkeeping record to
// keep in sync. All functions here operate on the caller's transaction; the
// product repository invokes them in the same write transaction as the
// record mutation they belong to.

// indexInsert adds an id to its category's index entry.
func indexInsert(tx *badger.Txn, id core.ID, category string) error {
	return tx.Set(makeCategoryIndexKey(category, id), storage.MarshalID(id))
}

// indexMove relocates an id between category entries. A no-op when the
// category did not change.
func indexMove(tx *badger.Txn, id core.ID, oldCategory, newCategory string) error {
	if oldCategory == newCategory {
		return nil
	}
	if err := tx.Delete(makeCategoryIndexKey(oldCategory, id)); err != nil {
		return err
	}
	return tx.Set(makeCategoryIndexKey(newCategory, id), storage.MarshalID(id))
}

// indexRemove drops an id from its category's index entry.
func indexRemove(tx *badger.Txn, id core.ID, category string) error {
	return tx.Delete(makeCategoryIndexKey(category, id))
}

// indexIDsForCategory returns all member ids of a category in ascending id
// order.
func indexIDsForCategory(tx *badger.Txn, category string) ([]core.ID, error) {
	var ids []core.ID

	prefix := makeCategoryIndexPrefix(category)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		_, id, ok := parseCategoryIndexKey(key)
		if !ok {
			return nil, storage.ErrIndexCorrupted
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// indexCategoryWindow walks a category's ordered id sequence once, counting
// every member and collecting the ids that fall inside [offset, offset+limit).
func indexCategoryWindow(tx *badger.Txn, category string, offset, limit int) ([]core.ID, uint64, error) {
	var (
		ids   []core.ID
		total uint64
	)

	prefix := makeCategoryIndexPrefix(category)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	pos := 0
	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		// pos-offset rather than offset+limit: the sum can wrap when the
		// caller asks for a window near the top of the int range.
		if pos >= offset && pos-offset < limit {
			_, id, ok := parseCategoryIndexKey(key)
			if !ok {
				return nil, 0, storage.ErrIndexCorrupted
			}
			ids = append(ids, id)
		}
		pos++
		total++
	}
	return ids, total, nil
}

// indexDistinctCategories enumerates every category with at least one live
// member, in ascending lexical order. After reading a category it seeks past
// the whole entry, so the cost is one seek per distinct category rather than
// one step per record.
func indexDistinctCategories(tx *badger.Txn) ([]string, error) {
	var categories []string

	prefix := []byte(productCategoryIndex + ":")
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefix); iter.Valid(); {
		key := iter.Item().Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		category, _, ok := parseCategoryIndexKey(key)
		if !ok {
			return nil, storage.ErrIndexCorrupted
		}
		categories = append(categories, category)
		iter.Seek(makeCategoryIndexSeekAfter(category))
	}
	return categories, nil
}
