package repository

import (
	"context"
	"sync"
	"time"

	"livraria/internal/domains/book/model"
)

type memoryRecord struct {
	mu      sync.RWMutex
	book    model.Book
	deleted bool
}

// MemoryRepository keeps books in process memory.
//
// Locking: mu guards membership of the map and the id sequence; each record
// has its own lock guarding its fields. Always take mu before a record lock.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[int64]*memoryRecord
	nextID  int64
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[int64]*memoryRecord),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Insert(ctx context.Context, book *model.Book) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if book.Quantity < 0 {
		return nil, model.ErrInsufficientStock
	}
	if book.Quantity > model.MaxStock {
		return nil, model.ErrStockLimit
	}

	now := r.now().UTC()
	rec := &memoryRecord{book: *book}
	rec.book.Version = 1
	rec.book.CreatedAt = now
	rec.book.UpdatedAt = now

	r.mu.Lock()
	r.nextID++
	rec.book.ID = r.nextID
	r.records[rec.book.ID] = rec
	out := rec.book
	r.mu.Unlock()

	return &out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := r.lookup(id)
	if rec == nil {
		return nil, model.ErrBookNotFound
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()
	if rec.deleted {
		return nil, model.ErrBookNotFound
	}
	out := rec.book
	return &out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, mutate MutateFunc) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := r.lookup(id)
	if rec == nil {
		return nil, model.ErrBookNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, model.ErrBookNotFound
	}

	working := rec.book
	if err := mutate(&working); err != nil {
		return nil, err
	}
	if working.Quantity < 0 {
		return nil, model.ErrInsufficientStock
	}
	if working.Quantity > model.MaxStock {
		return nil, model.ErrStockLimit
	}

	// identity and bookkeeping fields are owned by the store
	working.ID = rec.book.ID
	working.CreatedAt = rec.book.CreatedAt
	working.Version = rec.book.Version + 1
	working.UpdatedAt = r.now().UTC()

	rec.book = working
	out := working
	return &out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}

	// wait for an in-flight update of this record before unlinking it
	rec.mu.Lock()
	rec.deleted = true
	out := rec.book
	rec.mu.Unlock()

	delete(r.records, id)
	return &out, nil
}

func (r *MemoryRepository) List(ctx context.Context, filter model.Filter) ([]model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	recs := make([]*memoryRecord, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	books := make([]model.Book, 0, len(recs))
	for _, rec := range recs {
		rec.mu.RLock()
		b, deleted := rec.book, rec.deleted
		rec.mu.RUnlock()
		if deleted || !filter.Matches(&b) {
			continue
		}
		books = append(books, b)
	}

	model.SortBooks(books, filter.Sort)
	return books, nil
}

func (r *MemoryRepository) lookup(id int64) *memoryRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[id]
}
