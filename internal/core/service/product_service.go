package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

// List returns every product, or those of one category. An unknown category
// is a validation error rather than an empty list.
func (s *ProductService) List(ctx context.Context, category string) ([]*domain.Product, error) {
	c := domain.Category(strings.TrimSpace(category))
	if c != "" && !c.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, category)
	}
	return s.repo.List(ctx, c)
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, err
	}
	s.logger.Info().Str("product_id", created.ID).Msg("product created")
	return created, nil
}

// Update replaces the editable fields. An empty image keeps the stored one.
func (s *ProductService) Update(ctx context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Image) == "" {
		in.Image = existing.Image
	}

	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func productFromInput(in ports.ProductInput) (*domain.Product, error) {
	var missing []string
	p := &domain.Product{
		Name:     strings.TrimSpace(in.Name),
		Brand:    strings.TrimSpace(in.Brand),
		Price:    in.Price,
		Color:    strings.TrimSpace(in.Color),
		Category: domain.Category(strings.TrimSpace(in.Category)),
		Image:    strings.TrimSpace(in.Image),
	}
	if p.Name == "" {
		missing = append(missing, "name is required")
	}
	if p.Brand == "" {
		missing = append(missing, "brand is required")
	}
	if p.Color == "" {
		missing = append(missing, "color is required")
	}
	if p.Image == "" {
		missing = append(missing, "image is required")
	}
	if p.Price < 0 {
		missing = append(missing, "price must not be negative")
	}
	if p.Category != "" && !p.Category.Valid() {
		missing = append(missing, fmt.Sprintf("category must be one of: %s", categoryList()))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(missing, "; "))
	}
	return p, nil
}

func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
