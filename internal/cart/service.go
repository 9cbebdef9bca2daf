package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
)

type productLoader interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

type mutationRecorder interface {
	ObserveCartMutation(op string, err error)
}

// Service exposes the cart operations of a session.
type Service interface {
	Get(ctx context.Context, sessionID string) (Cart, error)
	AddItem(ctx context.Context, sessionID string, productID int64, qty int) (Cart, error)
	UpdateItem(ctx context.Context, sessionID string, productID int64, qty int) (Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (Cart, error)
	Clear(ctx context.Context, sessionID string) (Cart, error)
}

type service struct {
	manager  *Manager
	products productLoader
	metrics  mutationRecorder
}

// NewService builds a cart service. metrics may be nil.
func NewService(manager *Manager, products productLoader, metrics mutationRecorder) (Service, error) {
	if manager == nil {
		return nil, fmt.Errorf("cart manager required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{manager: manager, products: products, metrics: metrics}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (Cart, error) {
	return s.manager.View(ctx, sessionID)
}

// AddItem snapshots the product from the catalog and adds qty units. Out of stock products and
// quantities above the available stock are rejected before the cart is touched.
func (s *service) AddItem(ctx context.Context, sessionID string, productID int64, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	if !product.InStock() {
		return Cart{}, pkgerrors.New(pkgerrors.CodeStateConflict, "product is out of stock").
			WithDetails(map[string]any{"product_id": product.ID, "stock": product.Stock})
	}
	if qty > product.Stock {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock").
			WithDetails(map[string]any{"product_id": product.ID, "stock": product.Stock})
	}

	snapshot := ProductSnapshot{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		ImageRef: product.Image,
	}
	return s.mutate(ctx, "add", sessionID, func(store *Store) error {
		return store.Add(ctx, snapshot, qty)
	})
}

func (s *service) UpdateItem(ctx context.Context, sessionID string, productID int64, qty int) (Cart, error) {
	return s.mutate(ctx, "update_quantity", sessionID, func(store *Store) error {
		return store.UpdateQuantity(ctx, productID, qty)
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int64) (Cart, error) {
	return s.mutate(ctx, "remove", sessionID, func(store *Store) error {
		return store.Remove(ctx, productID)
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) (Cart, error) {
	return s.mutate(ctx, "clear", sessionID, func(store *Store) error {
		return store.Clear(ctx)
	})
}

func (s *service) mutate(ctx context.Context, op, sessionID string, fn func(*Store) error) (Cart, error) {
	cart, err := s.manager.Update(ctx, sessionID, fn)
	if s.metrics != nil {
		s.metrics.ObserveCartMutation(op, err)
	}
	return cart, err
}
