package seeders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/config"
	"github.com/agromap/agromap/pkg/auth"
)

func init() {
	Register("admin", seedAdmin)
}

// seedAdmin creates the ADMIN_USERNAME account. An existing account is
// left alone, password included.
func seedAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}

	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&models.User{
		Username: cfg.AdminUsername,
		Password: hash,
		Name:     "Administrator",
		Role:     models.RoleAdmin,
	}).Error
}
