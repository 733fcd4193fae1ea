// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/pkg/auth"
	"github.com/agromap/agromap/pkg/database"
)

// DB returns a migrated in-memory sqlite database closed at test end.
func DB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() { database.Close(db) })
	return db
}

// User inserts a user with password "secret123".
func User(t testing.TB, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{Username: username, Password: hash, Name: username, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Market inserts a market managed by manager (nil for none).
func Market(t testing.TB, db *gorm.DB, name string, manager *models.User) *models.Market {
	t.Helper()
	m := &models.Market{Name: name, Location: name + " centro", Latitude: 4.6, Longitude: -74.1}
	if manager != nil {
		m.ManagerID = &manager.ID
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// Base inserts a catalogue template.
func Base(t testing.TB, db *gorm.DB, name, category string) *models.ProductBase {
	t.Helper()
	b := &models.ProductBase{Name: name, Category: category}
	require.NoError(t, db.Create(b).Error)
	return b
}

// Product inserts an available product in market, optionally linked to base.
func Product(t testing.TB, db *gorm.DB, name string, market *models.Market, base *models.ProductBase) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      name,
		Quantity:  10,
		Unit:      models.DefaultUnit,
		Price:     2.5,
		PriceType: models.DefaultPriceType,
		Category:  models.CategoryOtros,
		Available: true,
		MarketID:  market.ID,
	}
	if base != nil {
		p.BaseProductID = &base.ID
		p.Category = base.Category
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Comment inserts a comment by user on product.
func Comment(t testing.TB, db *gorm.DB, user *models.User, product *models.Product, rating int) *models.Comment {
	t.Helper()
	c := &models.Comment{
		Rating:    rating,
		Content:   "comentario",
		Recommend: rating >= 4,
		UserID:    user.ID,
		ProductID: product.ID,
		MarketID:  product.MarketID,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
