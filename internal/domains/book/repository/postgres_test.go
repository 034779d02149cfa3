package repository

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/domains/book/model"
)

func TestBuildListQuery(t *testing.T) {
	lo, hi := decimal.RequireFromString("5"), decimal.RequireFromString("20.50")

	query, args, err := buildListQuery(model.Filter{
		Title:    "50%_off",
		Author:   "herbert",
		MinPrice: &lo,
		MaxPrice: &hi,
		Sort:     model.SortPriceDesc,
	})
	require.NoError(t, err)

	assert.Contains(t, query, `FROM "books"`)
	assert.Contains(t, query, `"title" ILIKE $1`)
	assert.Contains(t, query, `"author" ILIKE $2`)
	assert.Contains(t, query, `"price" >= $3::numeric`)
	assert.Contains(t, query, `"price" <= $4::numeric`)
	assert.Contains(t, query, `ORDER BY "price" DESC, "id" ASC`)
	assert.Equal(t, []interface{}{`%50\%\_off%`, "%herbert%", "5", "20.5"}, args)
}

func TestBuildListQuery_DefaultOrder(t *testing.T) {
	query, args, err := buildListQuery(model.Filter{})
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, `ORDER BY "id" ASC`)
	assert.Empty(t, args)
}

// Integration tests run only against a disposable database.
func newTestPostgres(t *testing.T) *PostgresRepository {
	t.Helper()
	dsn := os.Getenv("LIVRARIA_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LIVRARIA_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE books RESTART IDENTITY`)
	require.NoError(t, err)
	return repo
}

func TestPostgresRepository_Lifecycle(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, &model.Book{
		Title:    "Dune",
		Author:   "Frank Herbert",
		ISBN:     "9780441013593",
		Price:    decimal.RequireFromString("12.345"),
		Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)
	assert.True(t, decimal.RequireFromString("12.345").Equal(created.Price))

	updated, err := repo.Update(ctx, created.ID, func(b *model.Book) error {
		b.Quantity -= 2
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, 2, updated.Version)

	_, err = repo.Update(ctx, created.ID, func(b *model.Book) error {
		b.Quantity -= 5
		return nil
	})
	assert.ErrorIs(t, err, model.ErrInsufficientStock)

	books, err := repo.List(ctx, model.Filter{Title: "dun"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 3, books[0].Quantity)

	_, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestPostgresRepository_ConcurrentDecrements(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, &model.Book{Title: "Dune", Author: "Frank Herbert", Price: decimal.NewFromInt(10), Quantity: 10})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, n := range []int{3, 4} {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := repo.Update(ctx, created.ID, func(b *model.Book) error {
				b.Quantity -= n
				return nil
			})
			assert.NoError(t, err)
		}(n)
	}
	wg.Wait()

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}
