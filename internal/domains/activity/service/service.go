package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"livraria/internal/domains/activity/model"
	"livraria/internal/domains/activity/repository"
)

// ServiceInterface - activity log use cases
type ServiceInterface interface {
	Record(ctx context.Context, entry model.Entry) error
	Report(ctx context.Context, q model.ReportQuery) (*model.Report, error)
}

type Service struct {
	repo repository.RepositoryInterface
	now  func() time.Time
}

func NewService(repo repository.RepositoryInterface) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record stamps the entry with an id and timestamp when missing and appends it.
func (s *Service) Record(ctx context.Context, entry model.Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("record %s activity for book %d: %w", entry.Type, entry.BookID, err)
	}
	return nil
}

// Report filters the whole log, totals the filtered set and returns one page of it.
func (s *Service) Report(ctx context.Context, q model.ReportQuery) (*model.Report, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 || q.Size > model.MaxPageSize {
		q.Size = model.DefaultPageSize
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.Entry, 0, len(entries))
	itemsSold := 0
	for _, e := range entries {
		if !q.Matches(e) {
			continue
		}
		filtered = append(filtered, e)
		if e.Type == model.TypePurchase {
			itemsSold += e.Quantity
		}
	}

	from := len(filtered)
	if q.Page-1 <= len(filtered)/q.Size {
		from = min((q.Page-1)*q.Size, len(filtered))
	}
	to := from + q.Size
	if to > len(filtered) {
		to = len(filtered)
	}

	page := make([]model.Entry, to-from)
	copy(page, filtered[from:to])

	return &model.Report{
		Data:   page,
		Totals: model.Totals{Rows: len(filtered), ItemsSold: itemsSold},
		Pagination: model.Pagination{
			Page:    q.Page,
			Size:    q.Size,
			HasNext: to < len(filtered),
		},
	}, nil
}
