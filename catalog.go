// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package catalogit is an embedded product catalog with a category index.
//
// A Catalog stores product records in BadgerDB and maintains a category
// index alongside them, so category-filtered pages and distinct-category
// enumeration never scan the whole record set. All writes keep the record
// store and the index consistent within a single transaction.
package catalogit

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/catalogit/core"
	"github.com/poiesic/catalogit/storage"
	"github.com/poiesic/catalogit/storage/badger"
)

// Catalog exposes the catalog query operations: point lookup, paginated
// category listing, distinct-category enumeration, and the create/update/
// delete lifecycle. Category-filtered reads go through the category index;
// point lookups go straight to the record store.
type Catalog struct {
	backend  *badger.Backend
	products storage.ProductRepository
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*catalogOptions)

type catalogOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// WithInMemory keeps all state in memory instead of on disk. Used by tests
// and throwaway environments; the filePath argument is ignored.
func WithInMemory() Option {
	return func(o *catalogOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *catalogOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewCatalog opens (or creates) a catalog at the given path.
func NewCatalog(filePath string, opts ...Option) (*Catalog, error) {
	options := &catalogOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	products, err := badger.NewProductRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Catalog{
		backend:  backend,
		products: products,
		logger:   options.logger,
	}, nil
}

// Close releases the repository and the underlying database.
func (c *Catalog) Close() error {
	if err := c.products.Close(); err != nil {
		c.logger.Error("error closing product repository", "err", err)
		return err
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Products returns the underlying product repository.
func (c *Catalog) Products() storage.ProductRepository {
	return c.products
}

// GetByID returns the current record for an id.
// Fails with storage.ErrNotFound if no live record has that id.
func (c *Catalog) GetByID(ctx context.Context, id core.ID) (*core.Product, error) {
	return c.products.Get(ctx, id)
}

// ListByCategory returns one page of the records belonging to a category,
// ordered ascending by category then id. An offset beyond the end yields an
// empty page, not an error. TotalPages is the ceiling of
// TotalElements/pageSize, and 0 when the category has no members.
func (c *Catalog) ListByCategory(ctx context.Context, category string, pageNumber, pageSize int) (*core.Page, error) {
	if pageNumber < 0 {
		return nil, fmt.Errorf("%w: page number %d is negative", storage.ErrInvalidQuery, pageNumber)
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size %d is not positive", storage.ErrInvalidQuery, pageSize)
	}

	// An offset that does not fit in an int lies past any possible member
	// count, so the page is empty; fetch a zero-width window to report the
	// correct totals without letting the multiplication wrap.
	offset, limit := pageNumber*pageSize, pageSize
	if pageNumber > math.MaxInt/pageSize {
		offset, limit = 0, 0
	}

	items, total, err := c.products.ListByCategory(ctx, category, offset, limit)
	if err != nil {
		return nil, err
	}

	return &core.Page{
		Items:         items,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		TotalElements: total,
		TotalPages:    int((total + uint64(pageSize) - 1) / uint64(pageSize)),
		Sort:          core.SortByCategory,
	}, nil
}

// ListCategories returns every category with at least one live record, in
// ascending lexical order.
func (c *Catalog) ListCategories(ctx context.Context) ([]string, error) {
	return c.products.DistinctCategories(ctx)
}

// Create validates the fields and inserts a new record. The record write
// and its index membership are applied as one transaction.
func (c *Catalog) Create(ctx context.Context, category, name string) (*core.Product, error) {
	if err := core.ValidateFields(category, name); err != nil {
		return nil, err
	}

	product, err := c.products.Insert(ctx, category, name)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("product created", "id", uint64(product.Id), "category", product.Category)
	return product, nil
}

// Update validates the fields and replaces category and name for an
// existing record; the id is immutable. The index move uses the category
// captured from the pre-update read, inside the same transaction.
// Fails with storage.ErrNotFound if the id is absent.
func (c *Catalog) Update(ctx context.Context, id core.ID, category, name string) (*core.Product, error) {
	if err := core.ValidateFields(category, name); err != nil {
		return nil, err
	}

	product, err := c.products.Replace(ctx, id, category, name)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("product updated", "id", uint64(id), "category", product.Category)
	return product, nil
}

// Delete removes a record and its index membership together.
// Fails with storage.ErrNotFound if the id is absent.
func (c *Catalog) Delete(ctx context.Context, id core.ID) error {
	if err := c.products.Remove(ctx, id); err != nil {
		return err
	}
	c.logger.Debug("product deleted", "id", uint64(id))
	return nil
}
