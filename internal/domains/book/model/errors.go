package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"livraria/internal/shared"
	"livraria/internal/shared/response"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrVersionConflict   = errors.New("version conflict: book was modified by another request")
	ErrInsufficientStock = errors.New("insufficient stock: quantity cannot go below zero")
	ErrStockLimit        = errors.New("stock limit exceeded: quantity cannot exceed 2147483647")
)

var bookErrorMap = map[error]struct {
	Status int
	Kind   string
}{
	ErrBookNotFound:      {Status: http.StatusNotFound, Kind: response.KindNotFound},
	ErrVersionConflict:   {Status: http.StatusConflict, Kind: response.KindConflict},
	ErrInsufficientStock: {Status: http.StatusBadRequest, Kind: response.KindInvalidOperation},
	ErrStockLimit:        {Status: http.StatusBadRequest, Kind: response.KindInvalidOperation},
}

// HandleBookError writes the error response for err and reports whether it did.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var vErr *shared.ValidationError
	if errors.As(err, &vErr) {
		response.InvalidInput(c, vErr.Violations)
		return true
	}

	for target, mapped := range bookErrorMap {
		if errors.Is(err, target) {
			response.Error(c, mapped.Status, mapped.Kind, []string{target.Error()})
			return true
		}
	}

	// Lỗi không xác định
	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("path", c.Request.URL.Path).
		Msg("unhandled book error")
	response.InternalServerError(c)
	return true
}
