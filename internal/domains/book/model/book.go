package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Book - Domain Entity (canonical copy owned by the record store)
type Book struct {
	// Identity
	ID      int64 `json:"id" db:"id"`
	Version int   `json:"version" db:"version"`

	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	ISBN   string `json:"isbn" db:"isbn"` // canonical form, empty when unknown

	// Pricing & stock
	Price    decimal.Decimal `json:"price" db:"price"`
	Quantity int             `json:"quantity" db:"quantity"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BookResponse - wire representation of a Book
type BookResponse struct {
	ID        int64       `json:"id"`
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	ISBN      string      `json:"isbn,omitempty"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ToResponse converts the entity to its JSON contract.
// Price is emitted as a JSON number, not as a quoted string.
func (b Book) ToResponse() BookResponse {
	return BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Price:     json.Number(b.Price.String()),
		Quantity:  b.Quantity,
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToResponseList converts a slice of entities, never returning nil.
func ToResponseList(books []Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = b.ToResponse()
	}
	return out
}

// PurchaseResult is returned after a successful purchase.
type PurchaseResult struct {
	Book        Book
	Customer    string
	Quantity    int
	StockBefore int
	StockAfter  int
}

type PurchaseResponse struct {
	Book        BookResponse `json:"book"`
	Customer    string       `json:"customer"`
	Quantity    int          `json:"quantity"`
	StockBefore int          `json:"stock_before"`
	StockAfter  int          `json:"stock_after"`
}

func (p PurchaseResult) ToResponse() PurchaseResponse {
	return PurchaseResponse{
		Book:        p.Book.ToResponse(),
		Customer:    p.Customer,
		Quantity:    p.Quantity,
		StockBefore: p.StockBefore,
		StockAfter:  p.StockAfter,
	}
}
