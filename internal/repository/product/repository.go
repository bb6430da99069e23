package product

import (
	"context"

	"clubstore/internal/domain"
)

// ListQuery filters product listings. An empty Category matches everything.
type ListQuery struct {
	Category string
}

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
