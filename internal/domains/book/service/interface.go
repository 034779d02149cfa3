package service

import (
	"context"
	"io"

	activitymodel "livraria/internal/domains/activity/model"
	"livraria/internal/domains/book/model"
)

// ServiceInterface - catalog use cases
type ServiceInterface interface {
	CreateBook(ctx context.Context, fields model.BookFields) (*model.Book, error)
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	UpdateBook(ctx context.Context, id int64, fields model.BookFields) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SearchBooks(ctx context.Context, filter model.Filter) ([]model.Book, error)
	AdjustStock(ctx context.Context, id int64, delta int) (*model.Book, error)
	Purchase(ctx context.Context, id int64, req model.PurchaseRequest) (*model.PurchaseResult, error)
	ExportCatalog(ctx context.Context, w io.Writer) error
}

// ActivityRecorder receives one entry per committed catalog change.
type ActivityRecorder interface {
	Record(ctx context.Context, entry activitymodel.Entry) error
}
