// Package catalog serves the storefront listing and admin product management.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"clubstore/internal/domain"
	productrepo "clubstore/internal/repository/product"
	"github.com/google/uuid"
)

const (
	defaultImageURL = "https://images.unsplash.com/photo-1551698618-1dfe5d97d256?w=400"
	defaultCategory = "general"
	allCategories   = "all"
)

type Service struct {
	repo   productrepo.Repository
	logger *log.Logger
}

func New(repo productrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// List returns products newest first. An empty category or "all" lists everything.
func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, allCategories) {
		category = ""
	}
	return s.repo.List(ctx, productrepo.ListQuery{Category: category})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Categories returns "all" followed by every category in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(cats)+1)
	out = append(out, allCategories)
	for _, c := range cats {
		if c != allCategories {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

type CreateInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"priceCents"`
	ImageURL      string `json:"imageUrl"`
	Category      string `json:"category"`
	StockQuantity int    `json:"stockQuantity"`
}

// Create validates and stores a new product. Nothing is written when
// validation fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.PriceCents <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than zero", domain.ErrValidation)
	}
	if in.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", domain.ErrValidation)
	}

	p := domain.Product{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		PriceCents:    in.PriceCents,
		ImageURL:      strings.TrimSpace(in.ImageURL),
		Category:      strings.ToLower(strings.TrimSpace(in.Category)),
		StockQuantity: in.StockQuantity,
	}
	if p.ImageURL == "" {
		p.ImageURL = defaultImageURL
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("catalog: created id=%s name=%q", created.ID, created.Name)
	return created, nil
}

// Update applies a partial change. Provided fields obey the same rules as Create.
func (s *Service) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
		}
		patch.Name = &name
	}
	if patch.PriceCents != nil && *patch.PriceCents <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than zero", domain.ErrValidation)
	}
	if patch.StockQuantity != nil && *patch.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", domain.ErrValidation)
	}
	if patch.Category != nil {
		cat := strings.ToLower(strings.TrimSpace(*patch.Category))
		if cat == "" {
			cat = defaultCategory
		}
		patch.Category = &cat
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("catalog: deleted id=%s", id)
	return nil
}
