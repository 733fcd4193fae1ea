package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/config"
)

func init() {
	Register("catalogue", seedCatalogue)
}

var catalogue = []models.ProductBase{
	{Name: "Banano", Category: models.CategoryFrutas, Nutrition: "Potasio, vitamina B6, fibra"},
	{Name: "Mango", Category: models.CategoryFrutas, Nutrition: "Vitamina C, vitamina A"},
	{Name: "Tomate", Category: models.CategoryVerduras, Nutrition: "Licopeno, vitamina C"},
	{Name: "Zanahoria", Category: models.CategoryVerduras, Nutrition: "Betacaroteno, fibra"},
	{Name: "Frijol", Category: models.CategoryGranos, Nutrition: "Proteína vegetal, hierro"},
	{Name: "Maíz", Category: models.CategoryGranos, Nutrition: "Carbohidratos, fibra"},
	{Name: "Papa", Category: models.CategoryTuberculos, Nutrition: "Carbohidratos, potasio"},
	{Name: "Yuca", Category: models.CategoryTuberculos, Nutrition: "Carbohidratos, vitamina C"},
	{Name: "Queso campesino", Category: models.CategoryLacteos, Nutrition: "Calcio, proteína"},
	{Name: "Gallina criolla", Category: models.CategoryCarnes, Nutrition: "Proteína, niacina"},
	{Name: "Cilantro", Category: models.CategoryHierbas, Nutrition: "Vitamina K"},
	{Name: "Panela", Category: models.CategoryOtros, Nutrition: "Sacarosa, minerales"},
}

// seedCatalogue inserts the starter product bases that are missing.
func seedCatalogue(ctx context.Context, db *gorm.DB, _ *config.Config) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range catalogue {
			base := entry
			if err := tx.Where(models.ProductBase{Name: base.Name}).
				Attrs(models.ProductBase{Category: base.Category, Nutrition: base.Nutrition}).
				FirstOrCreate(&base).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
