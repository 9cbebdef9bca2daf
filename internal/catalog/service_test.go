package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/graingrove-backend/internal/notices"
	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	"github.com/angelmondragon/graingrove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

type stubReader struct {
	products []models.Product
	err      error
}

func (s stubReader) ListAll(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s stubReader) FindByID(_ context.Context, id int64) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func TestFetchProductsFailureEmitsNotice(t *testing.T) {
	svc, err := NewService(stubReader{err: errors.New("connection reset")}, logger.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	collector := notices.NewCollector()
	ctx := notices.WithCollector(context.Background(), collector)

	products := svc.FetchProducts(ctx)
	if products == nil || len(products) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", products)
	}
	items := collector.Items()
	if len(items) != 1 {
		t.Fatalf("expected one notice, got %v", items)
	}
	if items[0].Kind != enums.NoticeError || items[0].Title != "Error" || items[0].Message != "Failed to load products. Please try again later." {
		t.Fatalf("unexpected notice %+v", items[0])
	}

	if categories := svc.Categories(ctx); len(categories) != 1 || categories[0] != enums.CategoryAll {
		t.Fatalf("expected only all category, got %v", categories)
	}
}

func TestServiceBrowseAndCategories(t *testing.T) {
	svc, _ := NewService(stubReader{products: catalogFixture()}, nil)

	got := svc.Browse(context.Background(), Query{Category: "barley"})
	equalNames(t, got, "Pearl Barley")

	categories := svc.Categories(context.Background())
	if len(categories) != 4 || categories[0] != enums.CategoryAll {
		t.Fatalf("unexpected categories %v", categories)
	}
}

func TestServiceGetByID(t *testing.T) {
	svc, _ := NewService(stubReader{products: catalogFixture()}, nil)

	product, err := svc.GetByID(context.Background(), 3)
	if err != nil || product.Name != "Steel Cut Oats" {
		t.Fatalf("unexpected result %+v %v", product, err)
	}
	if _, err := svc.GetByID(context.Background(), 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), 99); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	failing, _ := NewService(stubReader{err: errors.New("timeout")}, nil)
	if _, err := failing.GetByID(context.Background(), 1); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
