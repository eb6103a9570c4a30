package ports

import (
	"context"

	"github.com/tokobaju/storefront/internal/core/domain"
)

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns every product, or only those in category when it is non-empty.
	List(ctx context.Context, category domain.Category) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name     string
	Brand    string
	Price    float64
	Color    string
	Category string
	Image    string
}

type ProductService interface {
	List(ctx context.Context, category string) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
