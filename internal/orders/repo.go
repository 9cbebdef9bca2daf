package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/graingrove-backend/internal/repo"
	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
)

// Repository persists placed orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
}

type repository struct {
	base repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.base.DB(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.base.FindOne(ctx, &order, "order not found", "id = ?", id); err != nil {
		return nil, err
	}
	return &order, nil
}
