package services

import (
	"context"
	"errors"
	"strings"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/collection"
)

// BaseInput is the body of the catalogue create and update endpoints.
type BaseInput struct {
	Name      string `json:"name"      validate:"required,max=120"`
	Image     string `json:"image"     validate:"omitempty,url,max=500"`
	Category  string `json:"category"  validate:"required,category"`
	Nutrition string `json:"nutrition" validate:"max=5000"`
}

// ProductBaseService manages the catalogue of product templates.
type ProductBaseService struct {
	bases    *repositories.ProductBaseRepository
	products *repositories.ProductRepository
	events   Publisher
}

func NewProductBaseService(bases *repositories.ProductBaseRepository, products *repositories.ProductRepository, events Publisher) *ProductBaseService {
	return &ProductBaseService{bases: bases, products: products, events: events}
}

// List returns the catalogue, optionally narrowed to one category, with how
// many products and markets stock each entry.
func (s *ProductBaseService) List(ctx context.Context, category string) ([]BaseView, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" && !models.IsCategory(category) {
		return nil, invalid("Unknown category %q", category)
	}
	bases, err := s.bases.All(ctx, category)
	if err != nil {
		return nil, err
	}
	usage, err := s.products.UsageByBase(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Map(bases, func(b models.ProductBase) BaseView {
		u := usage[b.ID]
		return BaseView{ProductBase: b, ProductCount: u.Products, MarketCount: u.Markets}
	}), nil
}

func (s *ProductBaseService) Create(ctx context.Context, in BaseInput) (*models.ProductBase, error) {
	in = normalizeBase(in)
	if err := check(in); err != nil {
		return nil, err
	}
	base := &models.ProductBase{Name: in.Name, Category: in.Category, Nutrition: in.Nutrition}
	base.Image = optional(in.Image)
	if err := s.save(ctx, base, s.bases.Create); err != nil {
		return nil, err
	}
	return base, nil
}

func (s *ProductBaseService) Update(ctx context.Context, id uint, in BaseInput) (*models.ProductBase, error) {
	in = normalizeBase(in)
	if err := check(in); err != nil {
		return nil, err
	}
	base, err := s.bases.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Product base")
	}
	base.Name, base.Category, base.Nutrition = in.Name, in.Category, in.Nutrition
	base.Image = optional(in.Image)
	if err := s.save(ctx, base, s.bases.Save); err != nil {
		return nil, err
	}
	return base, nil
}

// Delete removes a catalogue entry no product references.
func (s *ProductBaseService) Delete(ctx context.Context, id uint) error {
	err := s.bases.Delete(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrInUse):
		return conflict("Product base is used by existing products")
	case err != nil:
		return lookup(err, "Product base")
	}
	s.events.Fire(EventCatalogChanged, id)
	return nil
}

func (s *ProductBaseService) save(ctx context.Context, base *models.ProductBase, write func(context.Context, *models.ProductBase) error) error {
	if err := write(ctx, base); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return conflict("A product base named %q already exists", base.Name)
		}
		return err
	}
	s.events.Fire(EventCatalogChanged, base.ID)
	return nil
}

func normalizeBase(in BaseInput) BaseInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Nutrition = strings.TrimSpace(in.Nutrition)
	return in
}
