package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

type stubProductRepo struct {
	products map[string]*domain.Product
	order    []string
	nextID   int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.nextID++
	clone := *p
	clone.ID = fmt.Sprintf("p%d", r.nextID)
	r.products[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context, category domain.Category) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, id := range r.order {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if _, ok := r.products[p.ID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	r.products[p.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) Count(context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

func shirt() ports.ProductInput {
	return ports.ProductInput{
		Name:     "Kemeja Flanel",
		Brand:    "Lokal",
		Price:    150000,
		Color:    "Merah",
		Category: "Baju",
		Image:    "/uploads/flanel.jpg",
	}
}

func TestProductService_CreateAndGet(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Create(ctx, shirt())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", created)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Category != domain.CategoryBaju || got.Price != 150000 {
		t.Fatalf("unexpected product %+v", got)
	}
}

func TestProductService_Create_Validation(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())

	in := shirt()
	in.Name = ""
	in.Price = -1
	in.Category = "Sepatu"
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	for _, want := range []string{"name is required", "price must not be negative", "category must be one of"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err)
		}
	}
}

func TestProductService_Update_KeepsImageWhenEmpty(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())
	ctx := context.Background()
	created, _ := svc.Create(ctx, shirt())

	in := shirt()
	in.Price = 99000
	in.Image = ""
	updated, err := svc.Update(ctx, created.ID, in)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Image != "/uploads/flanel.jpg" {
		t.Fatalf("expected image kept, got %q", updated.Image)
	}
	if updated.Price != 99000 {
		t.Fatalf("expected price updated, got %v", updated.Price)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("CreatedAt must not change")
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatalf("UpdatedAt must not move backwards")
	}
}

func TestProductService_Update_NotFound(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())
	if _, err := svc.Update(context.Background(), "nope", shirt()); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_ListByCategory(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())
	ctx := context.Background()

	_, _ = svc.Create(ctx, shirt())
	jacket := shirt()
	jacket.Name, jacket.Category = "Bomber", "Jaket"
	_, _ = svc.Create(ctx, jacket)

	all, err := svc.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 products, got %d (%v)", len(all), err)
	}
	jackets, err := svc.List(ctx, "Jaket")
	if err != nil || len(jackets) != 1 || jackets[0].Name != "Bomber" {
		t.Fatalf("expected only the jacket, got %+v (%v)", jackets, err)
	}
	if _, err := svc.List(ctx, "Sepatu"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown category, got %v", err)
	}
}

func TestProductService_DeleteAndCount(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())
	ctx := context.Background()
	created, _ := svc.Create(ctx, shirt())

	if n, _ := svc.Count(ctx); n != 1 {
		t.Fatalf("expected count 1, got %d", n)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on second delete, got %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
