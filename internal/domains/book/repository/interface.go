package repository

import (
	"context"

	"livraria/internal/domains/book/model"
)

// MutateFunc edits a working copy of a record. Returning an error aborts the update.
type MutateFunc func(b *model.Book) error

// RepositoryInterface - record store for books.
// Every method returns copies; callers never share memory with the store.
type RepositoryInterface interface {
	// Insert assigns a fresh id, version 1 and timestamps.
	Insert(ctx context.Context, book *model.Book) (*model.Book, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	// Update is the atomic read-modify-write step. On success the record
	// is committed with version+1; on a mutate error nothing changes.
	Update(ctx context.Context, id int64, mutate MutateFunc) (*model.Book, error)
	// Delete removes the record and returns what was removed.
	Delete(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, filter model.Filter) ([]model.Book, error)
}
