package repository

import (
	"context"
	"sync"

	"livraria/internal/domains/activity/model"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	entries []model.Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(ctx context.Context, entry model.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Entry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}
