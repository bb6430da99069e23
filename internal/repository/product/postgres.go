package product

import (
	"context"
	"errors"
	"io"
	"log"

	"clubstore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, name, COALESCE(description, ''), price_cents, image_url, category, stock_quantity, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, q ListQuery) ([]domain.Product, error) {
	const query = `
SELECT ` + productColumns + `
FROM products
WHERE ($1 = '' OR category = $1)
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, query, q.Category)
	if err != nil {
		r.logger.Printf("product repo: list category=%q error=%v", q.Category, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows category=%q error=%v", q.Category, err)
		return nil, err
	}
	r.logger.Printf("product repo: list category=%q count=%d", q.Category, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id::text = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, description, price_cents, image_url, category, stock_quantity)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
RETURNING ` + productColumns
	created, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Description, p.PriceCents, p.ImageURL, p.Category, p.StockQuantity,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create name=%q error=%v", p.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%q", created.ID, created.Name)
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	const q = `
UPDATE products SET
    name = COALESCE($2, name),
    description = COALESCE($3, description),
    price_cents = COALESCE($4, price_cents),
    image_url = COALESCE($5, image_url),
    category = COALESCE($6, category),
    stock_quantity = COALESCE($7, stock_quantity)
WHERE id::text = $1
RETURNING ` + productColumns
	updated, err := scanProduct(r.pool.QueryRow(ctx, q,
		id, patch.Name, patch.Description, patch.PriceCents, patch.ImageURL, patch.Category, patch.StockQuantity,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%s", id)
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id::text = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImageURL, &p.Category, &p.StockQuantity, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
