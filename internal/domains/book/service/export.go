package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"livraria/internal/domains/book/model"
)

const catalogSheet = "Catalog"

var catalogHeaders = []string{
	"ID", "Title", "Author", "ISBN", "Price", "Quantity", "Version", "Created At", "Updated At",
}

// ExportCatalog writes every book, in id order, as an XLSX workbook.
func (s *BookService) ExportCatalog(ctx context.Context, w io.Writer) (err error) {
	ctx, span := s.tracer.Start(ctx, "book.export")
	defer func() { endSpan(span, err) }()

	books, err := s.repo.List(ctx, model.Filter{})
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	f, err := buildCatalogFile(books)
	if err != nil {
		return fmt.Errorf("failed to build excel file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write excel file: %w", err)
	}
	return nil
}

func buildCatalogFile(books []model.Book) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", catalogSheet); err != nil {
		return nil, err
	}

	for colIdx, header := range catalogHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(catalogSheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCol, _ := excelize.CoordinatesToCellName(len(catalogHeaders), 1)
		_ = f.SetCellStyle(catalogSheet, "A1", lastCol, headerStyle)
	}

	for i, b := range books {
		row := []interface{}{
			b.ID,
			b.Title,
			b.Author,
			b.ISBN,
			b.Price.InexactFloat64(),
			b.Quantity,
			b.Version,
			b.CreatedAt.UTC().Format(time.RFC3339),
			b.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(catalogSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
