package model

import (
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"livraria/internal/shared"
)

// Sort orders accepted by List.
const (
	SortByID      = "id"
	SortByTitle   = "title"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// Filter - search criteria for listing books. Zero value lists everything by id.
type Filter struct {
	Title    string // case-insensitive substring
	Author   string // case-insensitive substring
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

// ParseFilter reads GET /books query parameters.
func ParseFilter(q url.Values) (Filter, []shared.Violation) {
	var violations []shared.Violation
	f := Filter{
		Title:  strings.TrimSpace(q.Get("title")),
		Author: strings.TrimSpace(q.Get("author")),
		Sort:   strings.TrimSpace(q.Get("sort")),
	}

	parsePrice := func(key string) *decimal.Decimal {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			violations = append(violations, shared.Violation{Field: key, Message: "must be a number"})
			return nil
		}
		if err := CheckPrice(d); err != nil {
			violations = append(violations, shared.Violation{Field: key, Message: err.Error()})
			return nil
		}
		return &d
	}
	f.MinPrice = parsePrice("minPrice")
	f.MaxPrice = parsePrice("maxPrice")

	violations = append(violations, f.Validate()...)
	shared.SortViolations(violations)
	return f, violations
}

// Validate checks the filter is internally consistent.
func (f Filter) Validate() []shared.Violation {
	var violations []shared.Violation
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		violations = append(violations, shared.Violation{Field: "minPrice", Message: "must be less than or equal to maxPrice"})
	}
	switch f.Sort {
	case "", SortByID, SortByTitle, SortPriceAsc, SortPriceDesc:
	default:
		violations = append(violations, shared.Violation{Field: "sort", Message: "must be one of id, title, price_asc, price_desc"})
	}
	return violations
}

// Matches reports whether b satisfies every criterion of f.
func (f Filter) Matches(b *Book) bool {
	if f.Title != "" && !containsFold(b.Title, f.Title) {
		return false
	}
	if f.Author != "" && !containsFold(b.Author, f.Author) {
		return false
	}
	if f.MinPrice != nil && b.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && b.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// SortBooks orders books in place; ties always fall back to ascending id.
func SortBooks(books []Book, order string) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		switch order {
		case SortByTitle:
			if ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title); ta != tb {
				return ta < tb
			}
		case SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		}
		return a.ID < b.ID
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
