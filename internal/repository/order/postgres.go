package order

import (
	"context"
	"errors"
	"io"
	"log"

	"clubstore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	orderColumns = `id::text, user_id::text, total_cents, status, shipping_address, created_at`
	itemColumns  = `id::text, order_id::text, product_id::text, quantity, price_cents, created_at`
)

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

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (id, user_id, total_cents, status, shipping_address)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + orderColumns
	created, err := scanOrder(r.pool.QueryRow(ctx, q, o.ID, o.UserID, o.TotalCents, string(o.Status), o.ShippingAddress))
	if err != nil {
		r.logger.Printf("order repo: create id=%s error=%v", o.ID, err)
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s user_id=%s total_cents=%d", created.ID, created.UserID, created.TotalCents)
	return created, nil
}

func (r *postgresRepo) CreateItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error) {
	const q = `
INSERT INTO order_items (id, order_id, product_id, quantity, price_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + itemColumns
	var out domain.OrderItem
	err := r.pool.QueryRow(ctx, q, item.ID, item.OrderID, item.ProductID, item.Quantity, item.PriceCents).Scan(
		&out.ID, &out.OrderID, &out.ProductID, &out.Quantity, &out.PriceCents, &out.CreatedAt,
	)
	if err != nil {
		r.logger.Printf("order repo: create item order_id=%s product_id=%s error=%v", item.OrderID, item.ProductID, err)
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id::text = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id::text = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceCents, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	const q = `UPDATE orders SET status = $2 WHERE id::text = $1 RETURNING ` + orderColumns
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: update status id=%s status=%s error=%v", id, status, err)
		return nil, err
	}
	r.logger.Printf("order repo: status id=%s status=%s", id, status)
	return o, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) Summary(ctx context.Context) (Summary, error) {
	const q = `
SELECT count(*),
       count(*) FILTER (WHERE status = 'pending'),
       COALESCE(SUM(total_cents), 0)
FROM orders
`
	var s Summary
	if err := r.pool.QueryRow(ctx, q).Scan(&s.TotalOrders, &s.PendingOrders, &s.TotalRevenueCents); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (r *postgresRepo) listOrders(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.TotalCents, &status, &o.ShippingAddress, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
