package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"livraria/internal/domains/book/model"
	"livraria/pkg/database"
)

const (
	dialectPostgres = "postgres"
	booksTable      = "books"
)

const createBooksTable = `
CREATE TABLE IF NOT EXISTS books (
	id         BIGSERIAL PRIMARY KEY,
	version    INTEGER     NOT NULL DEFAULT 1,
	title      TEXT        NOT NULL,
	author     TEXT        NOT NULL,
	isbn       TEXT        NOT NULL DEFAULT '',
	price      NUMERIC     NOT NULL CHECK (price >= 0),
	quantity   INTEGER     NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// price is read as text so no precision is lost on the way to decimal.Decimal
const selectColumns = `id, version, title, author, isbn, price::text, quantity, created_at, updated_at`

// PostgresRepository - Raw SQL with pgxpool, goqu for dynamic list queries
type PostgresRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, now: time.Now}
}

// Migrate creates the books table when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createBooksTable); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, book *model.Book) (*model.Book, error) {
	if book.Quantity < 0 {
		return nil, model.ErrInsufficientStock
	}
	if book.Quantity > model.MaxStock {
		return nil, model.ErrStockLimit
	}

	now := r.now().UTC()
	query := `
		INSERT INTO books (version, title, author, isbn, price, quantity, created_at, updated_at)
		VALUES (1, $1, $2, $3, $4::numeric, $5, $6, $6)
		RETURNING ` + selectColumns

	row := r.pool.QueryRow(ctx, query,
		book.Title, book.Author, book.ISBN, book.Price.String(), book.Quantity, now)
	out, err := scanBook(row)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*model.Book, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM books WHERE id = $1`, id)
	out, err := scanBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return out, nil
}

// Update locks the row with SELECT ... FOR UPDATE for the duration of mutate.
func (r *PostgresRepository) Update(ctx context.Context, id int64, mutate MutateFunc) (*model.Book, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
		row := tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM books WHERE id = $1 FOR UPDATE`, id)
		current, err := scanBook(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("lock book %d: %w", id, err)
		}

		working := *current
		if err := mutate(&working); err != nil {
			return nil, err
		}
		if working.Quantity < 0 {
			return nil, model.ErrInsufficientStock
		}
		if working.Quantity > model.MaxStock {
			return nil, model.ErrStockLimit
		}

		query := `
			UPDATE books
			SET title = $2, author = $3, isbn = $4, price = $5::numeric, quantity = $6,
			    version = version + 1, updated_at = $7
			WHERE id = $1
			RETURNING ` + selectColumns

		row = tx.QueryRow(ctx, query, id,
			working.Title, working.Author, working.ISBN, working.Price.String(), working.Quantity, r.now().UTC())
		out, err := scanBook(row)
		if err != nil {
			return nil, fmt.Errorf("update book %d: %w", id, err)
		}
		return out, nil
	})
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*model.Book, error) {
	row := r.pool.QueryRow(ctx, `DELETE FROM books WHERE id = $1 RETURNING `+selectColumns, id)
	out, err := scanBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete book %d: %w", id, err)
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter model.Filter) ([]model.Book, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func buildListQuery(filter model.Filter) (string, []interface{}, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(booksTable).
		Prepared(true).
		Select(goqu.L(selectColumns))

	var where []exp.Expression
	if filter.Title != "" {
		where = append(where, goqu.C("title").ILike("%"+escapeLike(filter.Title)+"%"))
	}
	if filter.Author != "" {
		where = append(where, goqu.C("author").ILike("%"+escapeLike(filter.Author)+"%"))
	}
	if filter.MinPrice != nil {
		where = append(where, goqu.C("price").Gte(goqu.L("?::numeric", filter.MinPrice.String())))
	}
	if filter.MaxPrice != nil {
		where = append(where, goqu.C("price").Lte(goqu.L("?::numeric", filter.MaxPrice.String())))
	}
	if len(where) > 0 {
		ds = ds.Where(where...)
	}

	switch filter.Sort {
	case model.SortByTitle:
		ds = ds.Order(goqu.Func("LOWER", goqu.C("title")).Asc(), goqu.C("id").Asc())
	case model.SortPriceAsc:
		ds = ds.Order(goqu.C("price").Asc(), goqu.C("id").Asc())
	case model.SortPriceDesc:
		ds = ds.Order(goqu.C("price").Desc(), goqu.C("id").Asc())
	default:
		ds = ds.Order(goqu.C("id").Asc())
	}

	return ds.ToSQL()
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var (
		b     model.Book
		price string
	)
	if err := row.Scan(&b.ID, &b.Version, &b.Title, &b.Author, &b.ISBN, &price, &b.Quantity, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	b.Price = d
	return &b, nil
}
