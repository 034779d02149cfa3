package model

import (
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"livraria/internal/shared"
)

const (
	MaxTitleLength  = 255
	MaxAuthorLength = 255

	// MaxStock matches the INTEGER quantity column.
	MaxStock = math.MaxInt32

	PriceScale = 2
)

// MaxPrice is the largest price a book may carry.
var MaxPrice = decimal.NewFromInt(1_000_000)

var (
	errBlank    = validation.NewError("validation_blank", "must not be blank")
	errNegative = validation.NewError("validation_negative", "must be greater than or equal to 0")
	errISBN     = validation.NewError("validation_isbn", "must be a valid ISBN-10 or ISBN-13")
	errScale    = validation.NewError("validation_price_scale", "must have at most 2 decimal places")
	errTooLarge = validation.NewError("validation_price_max", "must be less than or equal to 1000000")
	errMaxStock = validation.NewError("validation_max_stock", "must be less than or equal to 2147483647")
)

// ValidateCreate checks a create payload. Title, author and price are required.
func ValidateCreate(f BookFields) []shared.Violation {
	return validateFields(f, true)
}

// ValidatePatch checks only the fields that were supplied.
func ValidatePatch(f BookFields) []shared.Violation {
	return validateFields(f, false)
}

func validateFields(f BookFields, create bool) []shared.Violation {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title,
			validation.When(create, validation.Required.Error("is required")),
			validation.By(notBlank),
			validation.Length(0, MaxTitleLength),
		),
		validation.Field(&f.Author,
			validation.When(create, validation.Required.Error("is required")),
			validation.By(notBlank),
			validation.Length(0, MaxAuthorLength),
		),
		validation.Field(&f.ISBN, validation.By(validISBN)),
		validation.Field(&f.Price,
			validation.When(create, validation.NotNil.Error("is required")),
			validation.By(priceRule),
		),
		validation.Field(&f.Quantity,
			validation.Min(0).ErrorObject(errNegative),
			validation.Max(MaxStock).ErrorObject(errMaxStock),
		),
		validation.Field(&f.Version,
			validation.When(create, validation.Nil.Error("cannot be set on create")),
			validation.Min(1),
		),
	)
	return shared.ViolationsFromValidation(err)
}

// ValidatePurchase checks a purchase request.
func ValidatePurchase(r PurchaseRequest) []shared.Violation {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Customer,
			validation.Required.Error("is required"),
			validation.By(notBlank),
		),
		validation.Field(&r.Quantity,
			validation.Required.Error("must be at least 1"),
			validation.Min(1).Error("must be at least 1"),
			validation.Max(MaxStock).ErrorObject(errMaxStock),
		),
	)
	return shared.ViolationsFromValidation(err)
}

func notBlank(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
}

func priceRule(value interface{}) error {
	d, ok := value.(*decimal.Decimal)
	if !ok || d == nil {
		return nil
	}
	return CheckPrice(*d)
}

// CheckPrice rejects negative prices, prices above MaxPrice and prices with
// more than two decimal places. The exponent is checked before any
// arithmetic, since rescaling a literal like 1e-999999999 is unbounded work.
func CheckPrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return errNegative
	}
	exp := d.Exponent()
	if exp > 6 {
		return errTooLarge
	}
	if exp < -18 {
		return errScale
	}
	if d.GreaterThan(MaxPrice) {
		return errTooLarge
	}
	if !d.Round(PriceScale).Equal(d) {
		return errScale
	}
	return nil
}

// ValidateDelta checks a stock adjustment amount.
func ValidateDelta(delta int) []shared.Violation {
	switch {
	case delta == 0:
		return []shared.Violation{{Field: "delta", Message: "must not be zero"}}
	case delta < -MaxStock || delta > MaxStock:
		return []shared.Violation{{Field: "delta", Message: "must be between -2147483647 and 2147483647"}}
	}
	return nil
}

func validISBN(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	if !IsValidISBN(*s) {
		return errISBN
	}
	return nil
}

// NormalizeISBN strips hyphens and spaces and upper-cases a trailing x.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range isbn {
		switch {
		case r == '-' || r == ' ':
			continue
		case r == 'x':
			b.WriteRune('X')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidISBN checks ISBN-10 or ISBN-13 shape and checksum.
func IsValidISBN(isbn string) bool {
	s := NormalizeISBN(isbn)
	switch len(s) {
	case 10:
		return validISBN10(s)
	case 13:
		return validISBN13(s)
	default:
		return false
	}
}

// ISBN-10: sum of digit*(10-i) must be divisible by 11; last digit may be X (=10).
func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c == 'X' && i == 9:
			d = 10
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// ISBN-13: digits weighted 1,3,1,3... must sum to a multiple of 10.
func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum%10 == 0
}
