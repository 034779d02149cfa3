package model

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"livraria/internal/shared"
)

// ParseReportQuery reads report filters from the query string.
// Page and size are clamped into range; a bad type or date is a violation.
func ParseReportQuery(q url.Values) (ReportQuery, []shared.Violation) {
	var violations []shared.Violation

	rq := ReportQuery{
		Type:     Type(strings.ToUpper(strings.TrimSpace(q.Get("type")))),
		Customer: strings.TrimSpace(q.Get("customer")),
		Book:     strings.TrimSpace(q.Get("book")),
		Page:     clamp(atoiDefault(q.Get("page"), 1), 1, int(^uint(0)>>1)),
		Size:     clamp(atoiDefault(q.Get("size"), DefaultPageSize), 1, MaxPageSize),
	}

	if rq.Type != "" && !rq.Type.IsValid() {
		violations = append(violations, shared.Violation{
			Field:   "type",
			Message: "must be one of CREATED, UPDATED, DELETED, STOCK_ADJUSTED, PURCHASE",
		})
	}

	parseDate := func(key string) *time.Time {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return nil
		}
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			violations = append(violations, shared.Violation{Field: key, Message: "must be a date in YYYY-MM-DD format"})
			return nil
		}
		return &d
	}
	rq.From = parseDate("from")
	rq.To = parseDate("to")

	if rq.From != nil && rq.To != nil && rq.From.After(*rq.To) {
		violations = append(violations, shared.Violation{Field: "from", Message: "must not be after to"})
	}

	shared.SortViolations(violations)
	return rq, violations
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
