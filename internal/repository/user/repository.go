package user

import (
	"context"

	"clubstore/internal/domain"
)

// Repository persists and fetches user accounts. Emails are matched
// case-insensitively.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	SetRole(ctx context.Context, id, role string) error
}
