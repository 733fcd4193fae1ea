package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agromap/agromap/app/models"
)

// MarketRepository handles markets and their schedules.
type MarketRepository struct {
	db *gorm.DB
}

func NewMarketRepository(db *gorm.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

func orderedSchedules(db *gorm.DB) *gorm.DB { return db.Order("id") }

// All returns every market with its schedules.
func (r *MarketRepository) All(ctx context.Context) ([]models.Market, error) {
	var markets []models.Market
	err := r.db.WithContext(ctx).Preload("Schedules", orderedSchedules).Order("name").Find(&markets).Error
	return markets, err
}

// FindByID returns a market with schedules and manager.
func (r *MarketRepository) FindByID(ctx context.Context, id uint) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Preload("Schedules", orderedSchedules).
		Preload("Manager").
		First(&market, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &market, nil
}

// FindByManager returns the market managerID runs, with schedules and
// products.
func (r *MarketRepository) FindByManager(ctx context.Context, managerID uint) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Preload("Schedules", orderedSchedules).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("id desc") }).
		Where("manager_id = ?", managerID).
		First(&market).Error
	if err != nil {
		return nil, translate(err)
	}
	return &market, nil
}

// IDForManager returns the id of the market managerID runs.
func (r *MarketRepository) IDForManager(ctx context.Context, managerID uint) (uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Market{}).
		Where("manager_id = ?", managerID).Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, ErrNotFound
	}
	return ids[0], nil
}

// Exists reports whether a market with id exists.
func (r *MarketRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Market{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// Save creates or updates market and replaces its schedules, atomically.
func (r *MarketRepository) Save(ctx context.Context, market *models.Market, schedules []models.Schedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		market.Schedules = nil
		market.Products = nil
		if err := tx.Omit(clause.Associations).Save(market).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("market_id = ?", market.ID).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		for i := range schedules {
			schedules[i].ID = 0
			schedules[i].MarketID = market.ID
		}
		if len(schedules) > 0 {
			if err := tx.Create(&schedules).Error; err != nil {
				return err
			}
		}
		market.Schedules = schedules
		return nil
	})
}

// Delete removes a market and its schedules. It fails with ErrInUse while
// the market still lists products.
func (r *MarketRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&models.Product{}).Where("market_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return ErrInUse
		}
		if err := tx.Where("market_id = ?", id).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Market{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ProductCounts returns the number of products per market.
func (r *MarketRepository) ProductCounts(ctx context.Context) (Counts, error) {
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("market_id AS id, COUNT(*) AS count").Group("market_id").Scan(&rows).Error
	return toCounts(rows), err
}

// Search matches name, description or location, case-insensitively.
func (r *MarketRepository) Search(ctx context.Context, q string, limit int) ([]models.Market, error) {
	pattern := likePattern(q)
	var markets []models.Market
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(location) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern).
		Limit(limit).Find(&markets).Error
	return markets, err
}

// Count returns the number of markets.
func (r *MarketRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Market{}).Count(&n).Error
	return n, err
}
