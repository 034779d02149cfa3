package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type classifies an activity entry.
type Type string

const (
	TypeCreated       Type = "CREATED"
	TypeUpdated       Type = "UPDATED"
	TypeDeleted       Type = "DELETED"
	TypeStockAdjusted Type = "STOCK_ADJUSTED"
	TypePurchase      Type = "PURCHASE"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeCreated, TypeUpdated, TypeDeleted, TypeStockAdjusted, TypePurchase:
		return true
	}
	return false
}

// Entry - one line of the catalog activity log
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        Type      `json:"type"`
	BookID      int64     `json:"book_id"`
	Book        string    `json:"book"`
	Customer    string    `json:"customer"`
	Quantity    int       `json:"quantity"`
	StockBefore *int      `json:"stock_before"`
	StockAfter  *int      `json:"stock_after"`
	Message     string    `json:"message"`
}

// IntPtr is a small helper for StockBefore/StockAfter.
func IntPtr(v int) *int { return &v }

// ============ REPORT ============

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
	dateLayout      = "2006-01-02"
)

// ReportQuery - filters and paging for GET /reports/activity
type ReportQuery struct {
	Type     Type
	Customer string // case-insensitive substring
	Book     string // case-insensitive substring
	From     *time.Time
	To       *time.Time // inclusive, whole day
	Page     int
	Size     int
}

// Matches reports whether e passes every filter of q.
func (q ReportQuery) Matches(e Entry) bool {
	if q.Type != "" && e.Type != q.Type {
		return false
	}
	if q.Customer != "" && !strings.Contains(strings.ToLower(e.Customer), strings.ToLower(q.Customer)) {
		return false
	}
	if q.Book != "" && !strings.Contains(strings.ToLower(e.Book), strings.ToLower(q.Book)) {
		return false
	}
	day := e.Timestamp.UTC().Truncate(24 * time.Hour)
	if q.From != nil && day.Before(*q.From) {
		return false
	}
	if q.To != nil && day.After(*q.To) {
		return false
	}
	return true
}

type Totals struct {
	Rows      int `json:"rows"`
	ItemsSold int `json:"items_sold"`
}

type Pagination struct {
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasNext bool `json:"has_next"`
}

// Report - response of GET /reports/activity
type Report struct {
	Data       []Entry    `json:"data"`
	Totals     Totals     `json:"totals"`
	Pagination Pagination `json:"pagination"`
}
