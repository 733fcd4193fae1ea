package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agromap/agromap/app/models"
)

// ProductBaseRepository handles the product catalogue.
type ProductBaseRepository struct {
	db *gorm.DB
}

func NewProductBaseRepository(db *gorm.DB) *ProductBaseRepository {
	return &ProductBaseRepository{db: db}
}

// All returns catalogue entries ordered by name, optionally by category.
func (r *ProductBaseRepository) All(ctx context.Context, category string) ([]models.ProductBase, error) {
	q := r.db.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var bases []models.ProductBase
	err := q.Order("name").Find(&bases).Error
	return bases, err
}

func (r *ProductBaseRepository) FindByID(ctx context.Context, id uint) (*models.ProductBase, error) {
	var base models.ProductBase
	if err := r.db.WithContext(ctx).First(&base, id).Error; err != nil {
		return nil, translate(err)
	}
	return &base, nil
}

// Create inserts base. A taken name yields ErrDuplicate.
func (r *ProductBaseRepository) Create(ctx context.Context, base *models.ProductBase) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(base).Error)
}

// Save writes every column of a loaded base. A taken name yields ErrDuplicate.
func (r *ProductBaseRepository) Save(ctx context.Context, base *models.ProductBase) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(base).Error)
}

// Delete removes base. It fails with ErrInUse while any product references it.
func (r *ProductBaseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&models.Product{}).Where("base_product_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return ErrInUse
		}
		res := tx.Delete(&models.ProductBase{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *ProductBaseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProductBase{}).Count(&n).Error
	return n, err
}
