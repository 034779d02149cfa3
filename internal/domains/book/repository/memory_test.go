package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"livraria/internal/domains/book/model"
)

func newBook(title string, qty int) *model.Book {
	return &model.Book{
		Title:    title,
		Author:   "Frank Herbert",
		Price:    decimal.RequireFromString("9.99"),
		Quantity: qty,
	}
}

func TestMemoryRepository_InsertAssignsIdentity(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a, err := repo.Insert(ctx, newBook("Dune", 5))
	require.NoError(t, err)
	b, err := repo.Insert(ctx, newBook("Dune Messiah", 1))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID)
	assert.Equal(t, 1, a.Version)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, *a, *got)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, newBook("Dune", 5))
	require.NoError(t, err)
	created.Title = "changed by caller"

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestMemoryRepository_GetMissing(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestMemoryRepository_Update(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	created, err := repo.Insert(ctx, newBook("Dune", 5))
	require.NoError(t, err)

	t.Run("commits working copy and bumps version", func(t *testing.T) {
		updated, err := repo.Update(ctx, created.ID, func(b *model.Book) error {
			b.Quantity = 7
			b.ID = 999 // ignored
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, 7, updated.Quantity)
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("mutate error leaves record unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := repo.Update(ctx, created.ID, func(b *model.Book) error {
			b.Quantity = 100
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Quantity)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("negative quantity is rejected", func(t *testing.T) {
		_, err := repo.Update(ctx, created.ID, func(b *model.Book) error {
			b.Quantity = -1
			return nil
		})
		assert.ErrorIs(t, err, model.ErrInsufficientStock)
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := repo.Update(ctx, 12345, func(*model.Book) error { return nil })
		assert.ErrorIs(t, err, model.ErrBookNotFound)
	})
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	created, err := repo.Insert(ctx, newBook("Dune", 5))
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	_, err = repo.Update(ctx, created.ID, func(*model.Book) error { return nil })
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestMemoryRepository_List(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	seed := []struct {
		title, author, price string
	}{
		{"Dune", "Frank Herbert", "12.50"},
		{"Children of Dune", "Frank Herbert", "8.00"},
		{"Neuromancer", "William Gibson", "10.00"},
		{"dune (annotated)", "Frank Herbert", "8.00"},
	}
	for _, s := range seed {
		_, err := repo.Insert(ctx, &model.Book{Title: s.title, Author: s.author, Price: decimal.RequireFromString(s.price)})
		require.NoError(t, err)
	}

	titles := func(books []model.Book) []string {
		out := make([]string, len(books))
		for i, b := range books {
			out[i] = b.Title
		}
		return out
	}

	t.Run("default order is id ascending", func(t *testing.T) {
		books, err := repo.List(ctx, model.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Dune", "Children of Dune", "Neuromancer", "dune (annotated)"}, titles(books))
	})

	t.Run("title substring is case-insensitive", func(t *testing.T) {
		books, err := repo.List(ctx, model.Filter{Title: "DUNE"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Dune", "Children of Dune", "dune (annotated)"}, titles(books))
	})

	t.Run("author and price range", func(t *testing.T) {
		lo, hi := decimal.RequireFromString("8"), decimal.RequireFromString("10")
		books, err := repo.List(ctx, model.Filter{Author: "herbert", MinPrice: &lo, MaxPrice: &hi})
		require.NoError(t, err)
		assert.Equal(t, []string{"Children of Dune", "dune (annotated)"}, titles(books))
	})

	t.Run("price descending breaks ties by id", func(t *testing.T) {
		books, err := repo.List(ctx, model.Filter{Sort: model.SortPriceDesc})
		require.NoError(t, err)
		assert.Equal(t, []string{"Dune", "Neuromancer", "Children of Dune", "dune (annotated)"}, titles(books))
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		books, err := repo.List(ctx, model.Filter{Title: "Foundation"})
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})
}

func TestMemoryRepository_ConcurrentDecrements(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	created, err := repo.Insert(ctx, newBook("Dune", 10))
	require.NoError(t, err)

	decrement := func(n int) MutateFunc {
		return func(b *model.Book) error {
			if b.Quantity-n < 0 {
				return model.ErrInsufficientStock
			}
			b.Quantity -= n
			return nil
		}
	}

	var wg sync.WaitGroup
	for _, n := range []int{3, 4} {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := repo.Update(ctx, created.ID, decrement(n))
			assert.NoError(t, err)
		}(n)
	}
	wg.Wait()

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, 3, got.Version)
}

func TestMemoryRepository_ConcurrentInsertsGetUniqueIDs(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const n = 64
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := repo.Insert(ctx, newBook("Dune", 1))
			if assert.NoError(t, err) {
				ids <- b.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

// Quantity never goes below zero whatever sequence of deltas is applied.
func TestMemoryRepository_StockNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		repo := NewMemoryRepository()
		ctx := context.Background()
		start := rapid.IntRange(0, 50).Draw(t, "start")
		created, err := repo.Insert(ctx, newBook("Dune", start))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}

		expected := start
		deltas := rapid.SliceOf(rapid.IntRange(-20, 20)).Draw(t, "deltas")
		for _, d := range deltas {
			_, err := repo.Update(ctx, created.ID, func(b *model.Book) error {
				b.Quantity += d
				return nil
			})
			if expected+d < 0 {
				if !errors.Is(err, model.ErrInsufficientStock) {
					t.Fatalf("expected insufficient stock, got %v", err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			expected += d
		}

		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Quantity != expected || got.Quantity < 0 {
			t.Fatalf("quantity = %d, expected %d", got.Quantity, expected)
		}
	})
}
