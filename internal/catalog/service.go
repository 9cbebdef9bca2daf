package catalog

import (
	"context"
	"fmt"

	"github.com/angelmondragon/graingrove-backend/internal/notices"
	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

type productReader interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

// Service exposes the storefront catalog.
type Service interface {
	// FetchProducts returns the whole catalog ordered by name. It never fails: on error it
	// returns an empty list and emits an error notice.
	FetchProducts(ctx context.Context) []models.Product
	Browse(ctx context.Context, q Query) []models.Product
	Categories(ctx context.Context) []string
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

type service struct {
	repo productReader
	logg *logger.Logger
}

func NewService(repo productReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) FetchProducts(ctx context.Context) []models.Product {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logg.Error(ctx, "failed to load products", err)
		notices.Notify(ctx, notices.Error("Error", "Failed to load products. Please try again later."))
		return []models.Product{}
	}
	if products == nil {
		return []models.Product{}
	}
	return products
}

func (s *service) Browse(ctx context.Context, q Query) []models.Product {
	return Browse(s.FetchProducts(ctx), q)
}

func (s *service) Categories(ctx context.Context) []string {
	return Categories(s.FetchProducts(ctx))
}

func (s *service) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
	}
	return product, nil
}
