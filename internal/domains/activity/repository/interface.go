package repository

import (
	"context"

	"livraria/internal/domains/activity/model"
)

// RepositoryInterface - append-only activity log, read back in insertion order.
type RepositoryInterface interface {
	Append(ctx context.Context, entry model.Entry) error
	List(ctx context.Context) ([]model.Entry, error)
}
