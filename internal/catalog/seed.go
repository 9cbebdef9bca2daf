package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
)

type starterProduct struct {
	name        string
	description string
	price       string
	category    string
	stock       int
}

var starterCatalog = []starterProduct{
	{"Hard Red Wheat Berries", "Premium whole wheat berries for milling and baking", "18.50", "Wheat", 40},
	{"Durum Semolina", "Golden semolina ground from durum wheat", "12.75", "Wheat", 25},
	{"Bulgur Wheat", "Parboiled cracked wheat for pilafs and salads", "8.99", "Wheat", 30},
	{"Basmati Rice", "Aged long grain rice from sustainable farms", "21.00", "Rice", 50},
	{"Jasmine Rice", "Fragrant Thai long grain rice", "16.40", "Rice", 35},
	{"Arborio Rice", "Short grain rice for creamy risotto", "9.25", "Rice", 0},
	{"Yellow Corn Grits", "Stone ground maize for grits and polenta", "7.50", "Maize", 45},
	{"Blue Cornmeal", "Heirloom blue maize, finely milled", "11.20", "Maize", 15},
	{"Organic Quinoa", "Tri-color quinoa for health-conscious kitchens", "14.95", "Specialty Grains", 20},
	{"Pearl Millet", "Gluten-free ancient grain", "6.80", "Specialty Grains", 18},
	{"Buckwheat Groats", "Toasted kasha groats", "10.60", "Specialty Grains", 12},
}

// Seed inserts the starter grain catalog, skipping products whose name already exists. It
// returns how many products were created.
func Seed(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range starterCatalog {
			product := models.Product{
				Name:        item.name,
				Description: item.description,
				Price:       decimal.RequireFromString(item.price),
				Category:    item.category,
				Stock:       item.stock,
			}
			res := tx.Where("name = ?", item.name).FirstOrCreate(&product)
			if res.Error != nil {
				return fmt.Errorf("seed product %q: %w", item.name, res.Error)
			}
			created += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
