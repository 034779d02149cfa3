package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/domains/activity/model"
)

func TestRedisRepository_AppendAndList(t *testing.T) {
	addr := os.Getenv("LIVRARIA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LIVRARIA_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	key := "livraria:test:activity:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })
	repo := NewRedisRepository(client, key)

	first := model.Entry{
		ID: uuid.New(), Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Type: model.TypePurchase, BookID: 1, Book: "Dune", Customer: "Ana", Quantity: 2,
		StockBefore: model.IntPtr(5), StockAfter: model.IntPtr(3),
	}
	second := model.Entry{ID: uuid.New(), Timestamp: first.Timestamp.Add(time.Hour), Type: model.TypeDeleted, BookID: 1, Book: "Dune"}

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Nil(t, entries[1].StockAfter)
}

func TestMemoryRepository_ListIsACopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, model.Entry{Book: "Dune"}))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	entries[0].Book = "changed"

	again, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dune", again[0].Book)
}
