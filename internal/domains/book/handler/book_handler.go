package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"livraria/internal/domains/book/model"
	service "livraria/internal/domains/book/service"
	"livraria/internal/shared"
	"livraria/internal/shared/response"
)

const (
	maxBodyBytes = 1 << 20
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler - HTTP Handler (single file)
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// CreateBook - POST /books
func (h *Handler) CreateBook(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	fields, violations := model.DecodeBookFields(body)
	if len(violations) > 0 {
		response.InvalidInput(c, violations)
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), fields)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusCreated, book.ToResponse())
}

// GetBook - GET /books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book.ToResponse())
}

// ListBooks - GET /books?title=&author=&minPrice=&maxPrice=&sort=
func (h *Handler) ListBooks(c *gin.Context) {
	filter, violations := model.ParseFilter(c.Request.URL.Query())
	if len(violations) > 0 {
		response.InvalidInput(c, violations)
		return
	}

	books, err := h.service.SearchBooks(c.Request.Context(), filter)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, model.ToResponseList(books))
}

// UpdateBook - PUT/PATCH /books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	fields, violations := model.DecodeBookFields(body)
	if len(violations) > 0 {
		response.InvalidInput(c, violations)
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), id, fields)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book.ToResponse())
}

// DeleteBook - DELETE /books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	if model.HandleBookError(c, h.service.DeleteBook(c.Request.Context(), id)) {
		return
	}
	response.NoContent(c)
}

// AdjustStock - POST /books/:id/stock {"delta": int}
func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	req, violations := model.DecodeStockRequest(body)
	if len(violations) == 0 && req.Delta == nil {
		violations = []shared.Violation{{Field: "delta", Message: "is required"}}
	}
	if len(violations) > 0 {
		response.InvalidInput(c, violations)
		return
	}

	book, err := h.service.AdjustStock(c.Request.Context(), id, *req.Delta)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book.ToResponse())
}

// Purchase - POST /books/:id/purchases {"customer": string, "quantity": int}
func (h *Handler) Purchase(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	req, violations := model.DecodePurchaseRequest(body)
	if len(violations) > 0 {
		response.InvalidInput(c, violations)
		return
	}

	result, err := h.service.Purchase(c.Request.Context(), id, req)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusCreated, result.ToResponse())
}

// ExportCatalog - GET /reports/catalog.xlsx
func (h *Handler) ExportCatalog(c *gin.Context) {
	var buf bytes.Buffer
	if model.HandleBookError(c, h.service.ExportCatalog(c.Request.Context(), &buf)) {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="catalog.xlsx"`)
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// bookID parses :id. Anything that is not a positive integer cannot name a book.
func bookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, model.ErrBookNotFound.Error())
		return 0, false
	}
	return id, true
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		response.InvalidInput(c, []shared.Violation{{Field: "body", Message: "could not be read"}})
		return nil, false
	}
	return body, true
}
