package model

import (
	"bytes"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"livraria/internal/shared"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// ============ REQUEST DTOs ============

// BookFields - candidate fields of a create or update payload.
// A nil pointer means the field was not supplied.
type BookFields struct {
	Title    *string          `json:"title"`
	Author   *string          `json:"author"`
	ISBN     *string          `json:"isbn"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
	Version  *int             `json:"version"` // expected version, update only
}

// HasChanges reports whether any mutable field was supplied.
func (f BookFields) HasChanges() bool {
	return f.Title != nil || f.Author != nil || f.ISBN != nil || f.Price != nil || f.Quantity != nil
}

// ToEntity builds a new Book from validated create fields.
func (f BookFields) ToEntity() *Book {
	b := &Book{}
	f.ApplyTo(b)
	return b
}

// ApplyTo copies the supplied fields onto b, normalizing text fields.
func (f BookFields) ApplyTo(b *Book) {
	if f.Title != nil {
		b.Title = strings.TrimSpace(*f.Title)
	}
	if f.Author != nil {
		b.Author = strings.TrimSpace(*f.Author)
	}
	if f.ISBN != nil {
		b.ISBN = NormalizeISBN(*f.ISBN)
	}
	if f.Price != nil {
		b.Price = *f.Price
	}
	if f.Quantity != nil {
		b.Quantity = *f.Quantity
	}
}

// StockRequest - POST /books/:id/stock
type StockRequest struct {
	Delta *int `json:"delta"`
}

// PurchaseRequest - POST /books/:id/purchases
type PurchaseRequest struct {
	Customer string `json:"customer"`
	Quantity int    `json:"quantity"`
}

// ============ DECODING ============

// DecodeBookFields reads a create/update body field by field.
// Type mismatches and unknown fields are reported as violations on that field.
func DecodeBookFields(body []byte) (BookFields, []shared.Violation) {
	raw, violations := decodeObject(body)
	if violations != nil {
		return BookFields{}, violations
	}

	var f BookFields
	for key, value := range raw {
		switch key {
		case "title":
			f.Title = decodeString(key, value, &violations)
		case "author":
			f.Author = decodeString(key, value, &violations)
		case "isbn":
			if isNull(value) {
				empty := ""
				f.ISBN = &empty
				continue
			}
			f.ISBN = decodeString(key, value, &violations)
		case "price":
			f.Price = decodeDecimal(key, value, &violations)
		case "quantity":
			f.Quantity = decodeInt(key, value, &violations)
		case "version":
			f.Version = decodeInt(key, value, &violations)
		case "id":
			violations = append(violations, shared.Violation{Field: key, Message: "is assigned by the server and cannot be set"})
		default:
			violations = append(violations, shared.Violation{Field: key, Message: "unknown field"})
		}
	}

	shared.SortViolations(violations)
	return f, violations
}

// DecodeStockRequest reads {"delta": int}.
func DecodeStockRequest(body []byte) (StockRequest, []shared.Violation) {
	raw, violations := decodeObject(body)
	if violations != nil {
		return StockRequest{}, violations
	}

	var req StockRequest
	for key, value := range raw {
		switch key {
		case "delta":
			req.Delta = decodeInt(key, value, &violations)
		default:
			violations = append(violations, shared.Violation{Field: key, Message: "unknown field"})
		}
	}

	shared.SortViolations(violations)
	return req, violations
}

// DecodePurchaseRequest reads {"customer": string, "quantity": int}.
// Quantity defaults to 1 when omitted.
func DecodePurchaseRequest(body []byte) (PurchaseRequest, []shared.Violation) {
	raw, violations := decodeObject(body)
	if violations != nil {
		return PurchaseRequest{}, violations
	}

	req := PurchaseRequest{Quantity: 1}
	for key, value := range raw {
		switch key {
		case "customer":
			if s := decodeString(key, value, &violations); s != nil {
				req.Customer = *s
			}
		case "quantity":
			if n := decodeInt(key, value, &violations); n != nil {
				req.Quantity = *n
			}
		default:
			violations = append(violations, shared.Violation{Field: key, Message: "unknown field"})
		}
	}

	shared.SortViolations(violations)
	return req, violations
}

func decodeObject(body []byte) (map[string]jsoniter.RawMessage, []shared.Violation) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, []shared.Violation{{Field: "body", Message: "must be a JSON object"}}
	}

	var raw map[string]jsoniter.RawMessage
	if err := jsonCodec.Unmarshal(trimmed, &raw); err != nil {
		return nil, []shared.Violation{{Field: "body", Message: "malformed JSON"}}
	}
	return raw, nil
}

func isNull(raw []byte) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func isQuoted(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '"'
}

func decodeString(field string, raw []byte, violations *[]shared.Violation) *string {
	var s string
	if !isQuoted(raw) || jsonCodec.Unmarshal(raw, &s) != nil {
		*violations = append(*violations, shared.Violation{Field: field, Message: "must be a string"})
		return nil
	}
	return &s
}

// decodeInt accepts only JSON integer literals; 1.5, "5" and null are rejected.
func decodeInt(field string, raw []byte, violations *[]shared.Violation) *int {
	n, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil {
		*violations = append(*violations, shared.Violation{Field: field, Message: "must be an integer"})
		return nil
	}
	return &n
}

// decodeDecimal accepts a JSON number or a string holding a number.
func decodeDecimal(field string, raw []byte, violations *[]shared.Violation) *decimal.Decimal {
	text := string(bytes.TrimSpace(raw))
	if isQuoted(raw) {
		var s string
		if err := jsonCodec.Unmarshal(raw, &s); err != nil {
			text = ""
		} else {
			text = strings.TrimSpace(s)
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		*violations = append(*violations, shared.Violation{Field: field, Message: "must be a number"})
		return nil
	}
	return &d
}
