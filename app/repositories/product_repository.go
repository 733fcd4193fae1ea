package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agromap/agromap/app/models"
)

// ProductFilter narrows List. Zero fields do not filter.
type ProductFilter struct {
	MarketID      uint
	Category      string
	BaseProductID uint
	AvailableOnly bool
}

// ProductRepository handles products.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns products matching f with their market, newest first.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Preload("Market")
	if f.MarketID != 0 {
		q = q.Where("market_id = ?", f.MarketID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.BaseProductID != 0 {
		q = q.Where("base_product_id = ?", f.BaseProductID)
	}
	if f.AvailableOnly {
		q = q.Where("available = ?", true)
	}

	var products []models.Product
	err := q.Order("id desc").Find(&products).Error
	return products, err
}

// FindByID returns a product with its market and base product.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindInMarket is FindByID restricted to one market: a product of another
// market is ErrNotFound.
func (r *ProductRepository) FindInMarket(ctx context.Context, id, marketID uint) (*models.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("id = ? AND market_id = ?", id, marketID))
}

func (r *ProductRepository) find(q *gorm.DB) (*models.Product, error) {
	var product models.Product
	if err := q.Preload("Market").Preload("BaseProduct").First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// Create inserts product.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error)
}

// Save writes every column of an already loaded product.
func (r *ProductRepository) Save(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error)
}

// Delete removes a product, optionally only within marketID (0 = any
// market). It fails with ErrInUse while the product has comments.
func (r *ProductRepository) Delete(ctx context.Context, id, marketID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := tx.Where("id = ?", id)
		if marketID != 0 {
			scope = scope.Where("market_id = ?", marketID)
		}
		var product models.Product
		if err := scope.First(&product).Error; err != nil {
			return translate(err)
		}

		var comments int64
		if err := tx.Model(&models.Comment{}).Where("product_id = ?", product.ID).Count(&comments).Error; err != nil {
			return err
		}
		if comments > 0 {
			return ErrInUse
		}
		return tx.Delete(&models.Product{}, product.ID).Error
	})
}

// Search matches name or description, case-insensitively.
func (r *ProductRepository) Search(ctx context.Context, q string, limit int) ([]models.Product, error) {
	pattern := likePattern(q)
	var products []models.Product
	err := r.db.WithContext(ctx).Preload("Market").
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", pattern, pattern).
		Limit(limit).Find(&products).Error
	return products, err
}

// Count returns the number of products, optionally only available ones.
func (r *ProductRepository) Count(ctx context.Context, availableOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if availableOnly {
		q = q.Where("available = ?", true)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountInMarket returns the number of products marketID lists.
func (r *ProductRepository) CountInMarket(ctx context.Context, marketID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("market_id = ?", marketID).Count(&n).Error
	return n, err
}

// BaseUsage is how widely a catalogue template is stocked.
type BaseUsage struct {
	Products int64 `json:"productCount"`
	Markets  int64 `json:"marketCount"`
}

// UsageByBase returns product and distinct-market counts per base product.
func (r *ProductRepository) UsageByBase(ctx context.Context) (map[uint]BaseUsage, error) {
	var rows []struct {
		BaseProductID uint
		Products      int64
		Markets       int64
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("base_product_id, COUNT(*) AS products, COUNT(DISTINCT market_id) AS markets").
		Where("base_product_id IS NOT NULL").
		Group("base_product_id").
		Scan(&rows).Error
	out := make(map[uint]BaseUsage, len(rows))
	for _, row := range rows {
		out[row.BaseProductID] = BaseUsage{Products: row.Products, Markets: row.Markets}
	}
	return out, err
}
