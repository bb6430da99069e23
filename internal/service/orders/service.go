// Package orders backs the admin order views.
package orders

import (
	"context"
	"fmt"
	"io"
	"log"

	"clubstore/internal/domain"
	orderrepo "clubstore/internal/repository/order"
)

// ProductCounter reports how many products are listed.
type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

type Stats struct {
	TotalProducts     int   `json:"totalProducts"`
	TotalOrders       int   `json:"totalOrders"`
	PendingOrders     int   `json:"pendingOrders"`
	TotalRevenueCents int64 `json:"totalRevenueCents"`
}

type Service struct {
	repo     orderrepo.Repository
	products ProductCounter
	logger   *log.Logger
}

func New(repo orderrepo.Repository, products ProductCounter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, products: products, logger: logger}
}

// List returns every order, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, orderID)
}

// UpdateStatus moves an order to any of the known statuses.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, status)
	}
	o, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("orders: status id=%s status=%s", id, status)
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("orders: deleted id=%s", id)
	return nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	sum, err := s.repo.Summary(ctx)
	if err != nil {
		return Stats{}, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalProducts:     products,
		TotalOrders:       sum.TotalOrders,
		PendingOrders:     sum.PendingOrders,
		TotalRevenueCents: sum.TotalRevenueCents,
	}, nil
}
