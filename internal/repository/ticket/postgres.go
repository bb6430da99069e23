package ticket

import (
	"context"
	"io"
	"log"

	"clubstore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketColumns = `id::text, user_id::text, match_id, match_title, seat_category, quantity, total_price_cents, booking_status, created_at`

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

func (r *postgresRepo) Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error) {
	const q = `
INSERT INTO tickets (id, user_id, match_id, match_title, seat_category, quantity, total_price_cents, booking_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + ticketColumns
	out, err := scanTicket(r.pool.QueryRow(ctx, q,
		t.ID, t.UserID, t.MatchID, t.MatchTitle, string(t.SeatCategory), t.Quantity, t.TotalPriceCents, t.BookingStatus,
	))
	if err != nil {
		r.logger.Printf("ticket repo: create user_id=%s match_id=%d error=%v", t.UserID, t.MatchID, err)
		return nil, err
	}
	r.logger.Printf("ticket repo: booked id=%s match_id=%d qty=%d", out.ID, out.MatchID, out.Quantity)
	return out, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE user_id::text = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t    domain.Ticket
		seat string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.MatchID, &t.MatchTitle, &seat, &t.Quantity, &t.TotalPriceCents, &t.BookingStatus, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.SeatCategory = domain.SeatCategory(seat)
	return &t, nil
}
