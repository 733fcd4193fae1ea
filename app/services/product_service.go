package services

import (
	"context"
	"errors"
	"strings"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/collection"
)

// ProductInput is the body of POST /api/products/create.
type ProductInput struct {
	Name          string   `json:"name"          validate:"required,max=150"`
	Description   string   `json:"description"   validate:"max=2000"`
	Quantity      int      `json:"quantity"      validate:"gte=1"`
	Unit          string   `json:"unit"          validate:"max=20"`
	Price         float64  `json:"price"         validate:"gte=0"`
	PriceType     string   `json:"priceType"     validate:"max=30"`
	Category      string   `json:"category"      validate:"omitempty,category"`
	Available     *bool    `json:"available"`
	SASProgram    bool     `json:"sasProgram"`
	Image         string   `json:"image"         validate:"omitempty,url,max=500"`
	Images        []string `json:"images"        validate:"max=10,dive,url,max=500"`
	BaseProductID *uint    `json:"baseProductId"`
}

// ProductUpdate is a partial update; nil fields are left unchanged. A
// baseProductId of 0 unlinks the base product.
type ProductUpdate struct {
	Name          *string  `json:"name"          validate:"omitnil,min=1,max=150"`
	Description   *string  `json:"description"   validate:"omitnil,max=2000"`
	Quantity      *int     `json:"quantity"      validate:"omitnil,gte=0"`
	Unit          *string  `json:"unit"          validate:"omitnil,min=1,max=20"`
	Price         *float64 `json:"price"         validate:"omitnil,gte=0"`
	PriceType     *string  `json:"priceType"     validate:"omitnil,min=1,max=30"`
	Category      *string  `json:"category"      validate:"omitnil,category"`
	Available     *bool    `json:"available"`
	SASProgram    *bool    `json:"sasProgram"`
	Image         *string  `json:"image"         validate:"omitnil,max=500"`
	Images        []string `json:"images"        validate:"max=10,dive,url,max=500"`
	BaseProductID *uint    `json:"baseProductId"`
}

type ProductService struct {
	products *repositories.ProductRepository
	bases    *repositories.ProductBaseRepository
	markets  *repositories.MarketRepository
	comments *repositories.CommentRepository
	events   Publisher
}

func NewProductService(
	products *repositories.ProductRepository,
	bases *repositories.ProductBaseRepository,
	markets *repositories.MarketRepository,
	comments *repositories.CommentRepository,
	events Publisher,
) *ProductService {
	return &ProductService{products: products, bases: bases, markets: markets, comments: comments, events: events}
}

// enrich attaches rating aggregates to every product with one query.
func (s *ProductService) enrich(ctx context.Context, products []models.Product) ([]ProductView, error) {
	ids := collection.Map(products, func(p models.Product) uint { return p.ID })
	ratings, err := s.comments.RatingsByProduct(ctx, ids)
	if err != nil {
		return nil, err
	}
	return collection.Map(products, func(p models.Product) ProductView {
		summary := AggregateRatings(ratings[p.ID])
		return ProductView{Product: p, AverageRating: summary.Average, CommentCount: summary.Count}
	}), nil
}

// List returns every product, or only available ones.
func (s *ProductService) List(ctx context.Context, availableOnly bool) ([]ProductView, error) {
	products, err := s.products.List(ctx, repositories.ProductFilter{AvailableOnly: availableOnly})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, products)
}

// ByCategory lists a category with each product's cross-market availability.
func (s *ProductService) ByCategory(ctx context.Context, category string) ([]ProductView, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !models.IsCategory(category) {
		return nil, invalid("Unknown category %q", category)
	}
	products, err := s.products.List(ctx, repositories.ProductFilter{Category: category})
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(ctx, products)
	if err != nil {
		return nil, err
	}
	return GroupByBaseProduct(views), nil
}

// ForMarket lists one market's products.
func (s *ProductService) ForMarket(ctx context.Context, marketID uint) ([]ProductView, error) {
	exists, err := s.markets.Exists(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, notFound("Market")
	}
	products, err := s.products.List(ctx, repositories.ProductFilter{MarketID: marketID})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, products)
}

// Mine lists the products of the caller's market; empty when they have none.
func (s *ProductService) Mine(ctx context.Context, managerID uint) ([]ProductView, error) {
	marketID, err := s.markets.IDForManager(ctx, managerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return []ProductView{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.ForMarket(ctx, marketID)
}

// Detail returns a product with its comments and rating distribution.
func (s *ProductService) Detail(ctx context.Context, id uint) (*ProductDetail, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Product")
	}
	comments, err := s.comments.ForProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := AggregateRatings(collection.Map(comments, func(c models.Comment) int { return c.Rating }))
	return &ProductDetail{
		ProductView: ProductView{
			Product:       *product,
			AverageRating: summary.Average,
			CommentCount:  summary.Count,
		},
		RatingDistribution: summary.Distribution,
		Comments:           collection.Map(comments, commentView),
	}, nil
}

// Create adds a product to the caller's market.
func (s *ProductService) Create(ctx context.Context, managerID uint, in ProductInput) (*ProductView, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}

	marketID, err := s.markets.IDForManager(ctx, managerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, invalid("Create your market before adding products")
	}
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		Unit:        orDefault(in.Unit, models.DefaultUnit),
		Price:       in.Price,
		PriceType:   orDefault(in.PriceType, models.DefaultPriceType),
		Category:    in.Category,
		Available:   in.Available == nil || *in.Available,
		SASProgram:  in.SASProgram,
		Image:       optional(in.Image),
		Images:      in.Images,
		MarketID:    marketID,
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if in.BaseProductID != nil && *in.BaseProductID != 0 {
		base, err := s.baseProduct(ctx, *in.BaseProductID)
		if err != nil {
			return nil, err
		}
		product.BaseProductID = &base.ID
		if product.Category == "" {
			product.Category = base.Category
		}
	}
	if product.Category == "" {
		product.Category = models.CategoryOtros
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.events.Fire(EventProductChanged, product.ID)
	return &ProductView{Product: *product}, nil
}

// UpdateMine updates a product of the caller's market. Products of other
// markets are reported as not found.
func (s *ProductService) UpdateMine(ctx context.Context, managerID, id uint, in ProductUpdate) (*ProductView, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	marketID, err := s.markets.IDForManager(ctx, managerID)
	if err != nil {
		return nil, lookup(err, "Product")
	}
	product, err := s.products.FindInMarket(ctx, id, marketID)
	if err != nil {
		return nil, lookup(err, "Product")
	}
	return s.update(ctx, product, in)
}

// Update updates any product.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductUpdate) (*ProductView, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Product")
	}
	return s.update(ctx, product, in)
}

func (s *ProductService) update(ctx context.Context, p *models.Product, in ProductUpdate) (*ProductView, error) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		p.Unit = *in.Unit
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.PriceType != nil {
		p.PriceType = *in.PriceType
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if in.SASProgram != nil {
		p.SASProgram = *in.SASProgram
	}
	if in.Image != nil {
		p.Image = optional(*in.Image)
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.BaseProductID != nil {
		if *in.BaseProductID == 0 {
			p.BaseProductID = nil
			p.BaseProduct = nil
		} else {
			base, err := s.baseProduct(ctx, *in.BaseProductID)
			if err != nil {
				return nil, err
			}
			p.BaseProductID = &base.ID
			p.BaseProduct = base
		}
	}

	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	s.events.Fire(EventProductChanged, p.ID)
	return &ProductView{Product: *p}, nil
}

// DeleteMine deletes a product of the caller's market.
func (s *ProductService) DeleteMine(ctx context.Context, managerID, id uint) error {
	marketID, err := s.markets.IDForManager(ctx, managerID)
	if err != nil {
		return lookup(err, "Product")
	}
	return s.delete(ctx, id, marketID)
}

// Delete deletes any product.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	return s.delete(ctx, id, 0)
}

func (s *ProductService) delete(ctx context.Context, id, marketID uint) error {
	err := s.products.Delete(ctx, id, marketID)
	switch {
	case errors.Is(err, repositories.ErrInUse):
		return conflict("Product has comments and cannot be deleted")
	case err != nil:
		return lookup(err, "Product")
	}
	s.events.Fire(EventProductChanged, id)
	return nil
}

func (s *ProductService) baseProduct(ctx context.Context, id uint) (*models.ProductBase, error) {
	base, err := s.bases.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, FieldErrors{"baseProductId": "The selected base product does not exist."}
	}
	return base, err
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// optional maps "" to nil for nullable columns.
func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
