package order

import (
	"context"

	"clubstore/internal/domain"
)

// Summary aggregates order figures for the admin dashboard.
type Summary struct {
	TotalOrders       int
	PendingOrders     int
	TotalRevenueCents int64
}

// Repository covers the orders and orderItems collections. Calls are
// independent; nothing here spans a transaction across records.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	CreateItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (Summary, error)
}
