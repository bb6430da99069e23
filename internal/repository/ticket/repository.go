package ticket

import (
	"context"

	"clubstore/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
}
