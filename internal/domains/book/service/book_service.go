package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	activitymodel "livraria/internal/domains/activity/model"
	"livraria/internal/domains/book/model"
	"livraria/internal/domains/book/repository"
	"livraria/internal/shared"
	"livraria/pkg/cache"
)

const DefaultCacheTTL = 5 * time.Minute

// BookService - Implements ServiceInterface
type BookService struct {
	repo     repository.RepositoryInterface
	cache    cache.Cache // nil disables caching
	cacheTTL time.Duration
	activity ActivityRecorder // nil disables the activity log
	tracer   trace.Tracer
}

// NewService - Constructor with DI
func NewService(
	repo repository.RepositoryInterface,
	cache cache.Cache,
	cacheTTL time.Duration,
	activity ActivityRecorder,
) *BookService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &BookService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		activity: activity,
		tracer:   otel.Tracer("livraria/book"),
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("books:%d", id)
}

func (s *BookService) CreateBook(ctx context.Context, fields model.BookFields) (_ *model.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "book.create")
	defer func() { endSpan(span, err) }()

	if err := shared.NewValidationError(model.ValidateCreate(fields)); err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, fields.ToEntity())
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	span.SetAttributes(attribute.Int64("book.id", created.ID))

	s.afterMutation(ctx, created.ID, activitymodel.Entry{
		Type:       activitymodel.TypeCreated,
		BookID:     created.ID,
		Book:       created.Title,
		Quantity:   created.Quantity,
		StockAfter: activitymodel.IntPtr(created.Quantity),
		Message:    fmt.Sprintf("created %q by %s", created.Title, created.Author),
	})
	return created, nil
}

// GetBook reads through the cache when one is configured.
func (s *BookService) GetBook(ctx context.Context, id int64) (_ *model.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "book.get", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer func() { endSpan(span, err) }()

	if s.cache != nil {
		var cached model.Book
		found, cacheErr := s.cache.Get(ctx, cacheKey(id), &cached)
		if cacheErr != nil {
			log.Warn().Err(cacheErr).Int64("book_id", id).Msg("cache get failed")
		} else if found {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &cached, nil
		}
	}

	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, cacheKey(id), b, s.cacheTTL); cacheErr != nil {
			log.Warn().Err(cacheErr).Int64("book_id", id).Msg("cache set failed")
		}
	}
	return b, nil
}

// UpdateBook applies only the supplied fields. When fields.Version is set it
// must match the stored version.
func (s *BookService) UpdateBook(ctx context.Context, id int64, fields model.BookFields) (_ *model.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "book.update", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer func() { endSpan(span, err) }()

	violations := model.ValidatePatch(fields)
	if len(violations) == 0 && !fields.HasChanges() {
		violations = []shared.Violation{{Field: "body", Message: "must contain at least one updatable field"}}
	}
	if err := shared.NewValidationError(violations); err != nil {
		return nil, err
	}

	var before int
	updated, err := s.repo.Update(ctx, id, func(b *model.Book) error {
		if fields.Version != nil && *fields.Version != b.Version {
			return model.ErrVersionConflict
		}
		before = b.Quantity
		fields.ApplyTo(b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, id, activitymodel.Entry{
		Type:        activitymodel.TypeUpdated,
		BookID:      id,
		Book:        updated.Title,
		StockBefore: activitymodel.IntPtr(before),
		StockAfter:  activitymodel.IntPtr(updated.Quantity),
		Message:     fmt.Sprintf("updated %q to version %d", updated.Title, updated.Version),
	})
	return updated, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "book.delete", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer func() { endSpan(span, err) }()

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.afterMutation(ctx, id, activitymodel.Entry{
		Type:        activitymodel.TypeDeleted,
		BookID:      id,
		Book:        removed.Title,
		StockBefore: activitymodel.IntPtr(removed.Quantity),
		Message:     fmt.Sprintf("deleted %q", removed.Title),
	})
	return nil
}

func (s *BookService) SearchBooks(ctx context.Context, filter model.Filter) (_ []model.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "book.search")
	defer func() { endSpan(span, err) }()

	if err := shared.NewValidationError(filter.Validate()); err != nil {
		return nil, err
	}

	books, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	span.SetAttributes(attribute.Int("result.count", len(books)))
	return books, nil
}

// AdjustStock adds delta to the stock. A result below zero fails with
// ErrInsufficientStock, one above MaxStock with ErrStockLimit; either way the
// record is left untouched.
func (s *BookService) AdjustStock(ctx context.Context, id int64, delta int) (_ *model.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "book.adjust_stock", trace.WithAttributes(
		attribute.Int64("book.id", id),
		attribute.Int("stock.delta", delta),
	))
	defer func() { endSpan(span, err) }()

	if err := shared.NewValidationError(model.ValidateDelta(delta)); err != nil {
		return nil, err
	}

	var before int
	updated, err := s.repo.Update(ctx, id, func(b *model.Book) error {
		next := int64(b.Quantity) + int64(delta)
		switch {
		case next < 0:
			return model.ErrInsufficientStock
		case next > model.MaxStock:
			return model.ErrStockLimit
		}
		before = b.Quantity
		b.Quantity = int(next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, id, activitymodel.Entry{
		Type:        activitymodel.TypeStockAdjusted,
		BookID:      id,
		Book:        updated.Title,
		Quantity:    delta,
		StockBefore: activitymodel.IntPtr(before),
		StockAfter:  activitymodel.IntPtr(updated.Quantity),
		Message:     fmt.Sprintf("stock of %q changed by %+d", updated.Title, delta),
	})
	return updated, nil
}

// Purchase sells req.Quantity copies to req.Customer.
func (s *BookService) Purchase(ctx context.Context, id int64, req model.PurchaseRequest) (_ *model.PurchaseResult, err error) {
	ctx, span := s.tracer.Start(ctx, "book.purchase", trace.WithAttributes(
		attribute.Int64("book.id", id),
		attribute.Int("purchase.quantity", req.Quantity),
	))
	defer func() { endSpan(span, err) }()

	if err := shared.NewValidationError(model.ValidatePurchase(req)); err != nil {
		return nil, err
	}

	var before int
	updated, err := s.repo.Update(ctx, id, func(b *model.Book) error {
		if b.Quantity < req.Quantity {
			return model.ErrInsufficientStock
		}
		before = b.Quantity
		b.Quantity -= req.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &model.PurchaseResult{
		Book:        *updated,
		Customer:    req.Customer,
		Quantity:    req.Quantity,
		StockBefore: before,
		StockAfter:  updated.Quantity,
	}

	s.afterMutation(ctx, id, activitymodel.Entry{
		Type:        activitymodel.TypePurchase,
		BookID:      id,
		Book:        updated.Title,
		Customer:    req.Customer,
		Quantity:    req.Quantity,
		StockBefore: activitymodel.IntPtr(before),
		StockAfter:  activitymodel.IntPtr(updated.Quantity),
		Message:     fmt.Sprintf("%s bought %d of %q", req.Customer, req.Quantity, updated.Title),
	})
	return result, nil
}

// afterMutation runs the side effects of a committed change. Failures are
// logged and never returned: the change itself already happened.
func (s *BookService) afterMutation(ctx context.Context, id int64, entry activitymodel.Entry) {
	ctx = context.WithoutCancel(ctx)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
			log.Error().Err(err).Int64("book_id", id).Msg("cache invalidation failed")
		}
	}

	if s.activity != nil {
		if err := s.activity.Record(ctx, entry); err != nil {
			log.Error().Err(err).Int64("book_id", id).Str("type", string(entry.Type)).Msg("activity record failed")
		}
	}

	log.Info().
		Int64("book_id", id).
		Str("type", string(entry.Type)).
		Str("book", entry.Book).
		Msg(entry.Message)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
