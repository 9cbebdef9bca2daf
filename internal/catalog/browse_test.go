package catalog

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	"github.com/angelmondragon/graingrove-backend/pkg/enums"
)

func catalogFixture() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Arborio Rice", Description: "Creamy risotto rice", Price: decimal.RequireFromString("6.25"), Category: "Rice"},
		{ID: 2, Name: "Pearl Barley", Description: "Great in soups", Price: decimal.RequireFromString("3.10"), Category: "Barley"},
		{ID: 3, Name: "Steel Cut Oats", Description: "Hearty breakfast", Price: decimal.RequireFromString("4.99"), Category: "oats"},
		{ID: 4, Name: "wild rice", Description: "Nutty long grain", Price: decimal.RequireFromString("8.50"), Category: "RICE"},
	}
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func equalNames(t *testing.T, got []models.Product, want ...string) {
	t.Helper()
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotNames)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotNames)
		}
	}
}

func TestBrowseCategoryIsCaseInsensitive(t *testing.T) {
	equalNames(t, Browse(catalogFixture(), Query{Category: "rice"}), "Arborio Rice", "wild rice")
	equalNames(t, Browse(catalogFixture(), Query{Category: "OATS"}), "Steel Cut Oats")
	equalNames(t, Browse(catalogFixture(), Query{Category: enums.CategoryAll}), "Arborio Rice", "Pearl Barley", "Steel Cut Oats", "wild rice")
}

func TestBrowseSearchesNameAndDescription(t *testing.T) {
	equalNames(t, Browse(catalogFixture(), Query{Search: "RICE"}), "Arborio Rice", "wild rice")
	equalNames(t, Browse(catalogFixture(), Query{Search: "soup"}), "Pearl Barley")
	equalNames(t, Browse(catalogFixture(), Query{Search: "quinoa"}))
}

func TestBrowseSorts(t *testing.T) {
	products := catalogFixture()
	equalNames(t, Browse(products, Query{Sort: enums.ProductSortNameDesc}), "wild rice", "Steel Cut Oats", "Pearl Barley", "Arborio Rice")
	equalNames(t, Browse(products, Query{Sort: enums.ProductSortPriceAsc}), "Pearl Barley", "Steel Cut Oats", "Arborio Rice", "wild rice")
	equalNames(t, Browse(products, Query{Sort: enums.ProductSortPriceDesc}), "wild rice", "Arborio Rice", "Steel Cut Oats", "Pearl Barley")
	equalNames(t, Browse(products, Query{}), "Arborio Rice", "Pearl Barley", "Steel Cut Oats", "wild rice")

	if products[0].Name != "Arborio Rice" || products[3].Name != "wild rice" {
		t.Fatalf("expected input to be left untouched, got %v", names(products))
	}
}

func TestBrowseCombinesFilters(t *testing.T) {
	got := Browse(catalogFixture(), Query{Category: "rice", Search: "nutty", Sort: enums.ProductSortPriceAsc})
	equalNames(t, got, "wild rice")
}

func TestCategories(t *testing.T) {
	got := Categories(catalogFixture())
	want := []string{"all", "rice", "barley", "oats"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if empty := Categories(nil); len(empty) != 1 || empty[0] != "all" {
		t.Fatalf("expected only all for empty catalog, got %v", empty)
	}
}
