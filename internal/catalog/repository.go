package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/graingrove-backend/internal/repo"
	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
)

// Repository reads catalog listings.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// ListAll returns every product ordered by name.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.base.DB(ctx).Order("name ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.base.FindOne(ctx, &product, "product not found", "id = ?", id); err != nil {
		return nil, err
	}
	return &product, nil
}
