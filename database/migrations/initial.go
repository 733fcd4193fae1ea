package migrations

import (
	"gorm.io/gorm"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_users_table", &createTable{model: &models.User{}, table: "users"})
	migration.Register("20260301000001_create_product_bases_table", &createTable{model: &models.ProductBase{}, table: "product_bases"})
	migration.Register("20260301000002_create_markets_table", &createTable{model: &models.Market{}, table: "markets"})
	migration.Register("20260301000003_create_schedules_table", &createTable{model: &models.Schedule{}, table: "schedules"})
	migration.Register("20260301000004_create_products_table", &createTable{model: &models.Product{}, table: "products"})
	migration.Register("20260301000005_create_comments_table", &createTable{model: &models.Comment{}, table: "comments"})
}

// createTable migrates one model up and drops its table down.
type createTable struct {
	model interface{}
	table string
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.table)
}
