package catalogit

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/poiesic/catalogit/core"
	"github.com/poiesic/catalogit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog("", WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewCatalog(t *testing.T) {
	t.Run("create new catalog", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		c, err := NewCatalog(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, c)
		defer c.Close()

		assert.NotNil(t, c.Products())
		assert.NotNil(t, c.backend)
		assert.NotNil(t, c.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		c, err := NewCatalog(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestCreateGetRoundTrip(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	created, err := c.Create(ctx, "books", "Gödel, Escher, Bach")
	require.NoError(t, err)
	require.NotZero(t, created.Id)

	got, err := c.GetByID(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Id, got.Id)
	assert.Equal(t, "books", got.Category)
	assert.Equal(t, "Gödel, Escher, Bach", got.Name)
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Create(ctx, "", "name")
	assert.ErrorIs(t, err, core.ErrInvalidProduct)

	_, err = c.Create(ctx, "books", "  ")
	assert.ErrorIs(t, err, core.ErrInvalidProduct)
}

func TestListByCategoryScenario(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	a, err := c.Create(ctx, "x", "A")
	require.NoError(t, err)
	b, err := c.Create(ctx, "x", "B")
	require.NoError(t, err)
	_, err = c.Create(ctx, "y", "C")
	require.NoError(t, err)

	page, err := c.ListByCategory(ctx, "x", 0, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, uint64(2), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, core.SortByCategory, page.Sort)
	assert.Equal(t, a.Id, page.Items[0].Id)

	page, err = c.ListByCategory(ctx, "x", 1, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, b.Id, page.Items[0].Id)

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, categories)
}

func TestListByCategoryEmptyCategory(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	page, err := c.ListByCategory(ctx, "nonexistent-category", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, uint64(0), page.TotalElements)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListByCategoryExactPageBoundary(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := c.Create(ctx, "even", "item")
		require.NoError(t, err)
	}

	// 4 elements at page size 2: exactly 2 pages, no trailing empty page
	page, err := c.ListByCategory(ctx, "even", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)

	// 4 elements at page size 3: 2 pages, the second holding the remainder
	page, err = c.ListByCategory(ctx, "even", 1, 3)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.TotalPages)
}

func TestListByCategoryHugePageNumber(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := c.Create(ctx, "wide", "item")
		require.NoError(t, err)
	}

	// pageNumber*pageSize wraps to 4 in int arithmetic; the page must be
	// empty with the real totals, not the records at positions 4-7.
	page, err := c.ListByCategory(ctx, "wide", (1<<62)+1, 4)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, (1<<62)+1, page.PageNumber)
	assert.Equal(t, 4, page.PageSize)
	assert.Equal(t, uint64(8), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)

	// Largest offset that still fits in an int: also past the end, also empty.
	page, err = c.ListByCategory(ctx, "wide", math.MaxInt/4, 4)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, uint64(8), page.TotalElements)
}

func TestListByCategoryRejectsBadPaging(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.ListByCategory(ctx, "x", -1, 10)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = c.ListByCategory(ctx, "x", 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

// Walking every page of a category must visit each member exactly once and
// agree with the raw index contents.
func TestPagesCoverCategoryExactly(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	const n = 23
	const pageSize = 5
	for i := 0; i < n; i++ {
		_, err := c.Create(ctx, "stock", "unit")
		require.NoError(t, err)
	}

	first, err := c.ListByCategory(ctx, "stock", 0, pageSize)
	require.NoError(t, err)
	assert.Equal(t, uint64(n), first.TotalElements)
	assert.Equal(t, 5, first.TotalPages)

	seen := make(map[core.ID]bool)
	collected := 0
	for p := 0; p < first.TotalPages; p++ {
		page, err := c.ListByCategory(ctx, "stock", p, pageSize)
		require.NoError(t, err)
		for _, item := range page.Items {
			assert.False(t, seen[item.Id], "id %d returned twice", item.Id)
			seen[item.Id] = true
		}
		collected += len(page.Items)
	}
	assert.Equal(t, n, collected)

	ids, err := c.Products().IDsForCategory(ctx, "stock")
	require.NoError(t, err)
	require.Len(t, ids, n)
	for _, id := range ids {
		assert.True(t, seen[id], "id %d missing from pages", id)
	}
}

func TestUpdateRelocatesAcrossCategories(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	created, err := c.Create(ctx, "old-cat", "wanderer")
	require.NoError(t, err)

	updated, err := c.Update(ctx, created.Id, "new-cat", "wanderer renamed")
	require.NoError(t, err)
	assert.Equal(t, created.Id, updated.Id)
	assert.Equal(t, "new-cat", updated.Category)

	oldPage, err := c.ListByCategory(ctx, "old-cat", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, oldPage.Items)

	newPage, err := c.ListByCategory(ctx, "new-cat", 0, 10)
	require.NoError(t, err)
	require.Len(t, newPage.Items, 1)
	assert.Equal(t, created.Id, newPage.Items[0].Id)
	assert.Equal(t, "wanderer renamed", newPage.Items[0].Name)
}

func TestDeleteRemovesEverywhere(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	created, err := c.Create(ctx, "short-lived", "blip")
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, created.Id))

	_, err = c.GetByID(ctx, created.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	for _, category := range categories {
		page, err := c.ListByCategory(ctx, category, 0, 100)
		require.NoError(t, err)
		for _, item := range page.Items {
			assert.NotEqual(t, created.Id, item.Id)
		}
	}

	err = c.Delete(ctx, created.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListCategoriesIdempotent(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	for _, category := range []string{"m", "a", "z", "a"} {
		_, err := c.Create(ctx, category, "item")
		require.NoError(t, err)
	}

	first, err := c.ListCategories(ctx)
	require.NoError(t, err)
	second, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "m", "z"}, first)
}

// Concurrent creators and readers must never see a half-applied write: every
// page observed is drawn from some committed state.
func TestConcurrentCreatesAndReads(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	const writers = 4
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := c.Create(ctx, "contended", "item"); err != nil {
					t.Errorf("create failed: %v", err)
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			page, err := c.ListByCategory(ctx, "contended", 0, 10)
			if err != nil {
				t.Errorf("list failed: %v", err)
				return
			}
			if uint64(len(page.Items)) > page.TotalElements {
				t.Errorf("page larger than total: %d > %d", len(page.Items), page.TotalElements)
				return
			}
		}
	}()

	wg.Wait()

	page, err := c.ListByCategory(ctx, "contended", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(writers*perWriter), page.TotalElements)
}
