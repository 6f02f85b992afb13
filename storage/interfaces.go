package storage

import (
	"context"

	"github.com/poiesic/catalogit/core"
)

// ProductRepository provides durable keyed storage of product records plus
// the category index read operations. Implementations must be thread-safe.
//
// Mutating operations maintain the category index in the same transaction as
// the record write: an id is a member of exactly the entry matching its
// record's current category, never duplicated and never stale.
type ProductRepository interface {
	// Insert assigns a new id (strictly greater than all ids previously
	// issued by this store instance), persists the record, and adds the id
	// to its category's index entry. Returns the stored record.
	Insert(ctx context.Context, category, name string) (*core.Product, error)

	// Get retrieves the current record for an id.
	// Returns ErrNotFound if no live record has that id.
	Get(ctx context.Context, id core.ID) (*core.Product, error)

	// Replace overwrites category and name for an existing id. If the
	// category changed, the id is moved atomically from the old index entry
	// to the new one. Returns the updated record, or ErrNotFound if the id
	// is absent.
	Replace(ctx context.Context, id core.ID, category, name string) (*core.Product, error)

	// Remove deletes the record and its category index membership together.
	// Returns ErrNotFound if the id is absent.
	Remove(ctx context.Context, id core.ID) error

	// ListByCategory returns the records occupying the [offset, offset+limit)
	// window of the category's ordered id sequence, together with the total
	// number of members. The count, the window, and the record resolution all
	// observe one consistent snapshot. A window past the end yields an empty
	// slice, not an error. Returns ErrIndexCorrupted if an indexed id has no
	// live record.
	ListByCategory(ctx context.Context, category string, offset, limit int) ([]*core.Product, uint64, error)

	// IDsForCategory returns all ids currently associated with a category,
	// in ascending id order.
	IDsForCategory(ctx context.Context, category string) ([]core.ID, error)

	// DistinctCategories returns every category with at least one live
	// member, in ascending lexical order.
	DistinctCategories(ctx context.Context) ([]string, error)

	// Close releases repository resources.
	Close() error
}

// TransactionManager executes a function within a storage transaction.
// If fn returns an error, the transaction is rolled back.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IndexMaintainer exposes the full-store scans and the index rebuild used by
// offline maintenance. Scans iterate one consistent snapshot each; they are
// not guaranteed to agree with concurrent writers.
type IndexMaintainer interface {
	// ScanProducts calls fn once for every live product record, in ascending
	// key order. Iteration stops on the first error from fn.
	ScanProducts(ctx context.Context, fn func(*core.Product) error) error

	// ScanIndexEntries calls fn once for every category index entry.
	// Iteration stops on the first error from fn.
	ScanIndexEntries(ctx context.Context, fn func(category string, id core.ID) error) error

	// RebuildCategoryIndex drops every category index entry and rewrites the
	// index from the product records. Returns the number of entries written.
	RebuildCategoryIndex(ctx context.Context) (int, error)
}
