package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	"github.com/angelmondragon/graingrove-backend/pkg/enums"
)

// Query narrows and orders a product listing. Empty fields apply no filter.
type Query struct {
	Category string
	Search   string
	Sort     enums.ProductSort
}

// Browse filters products by category and search text, then sorts them. The input is not modified.
func Browse(products []models.Product, q Query) []models.Product {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != enums.CategoryAll && strings.ToLower(p.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, q.Sort)
	return out
}

func sortProducts(products []models.Product, by enums.ProductSort) {
	if !by.IsValid() {
		by = enums.DefaultProductSort
	}
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch by {
		case enums.ProductSortNameDesc:
			return strings.ToLower(a.Name) > strings.ToLower(b.Name)
		case enums.ProductSortPriceAsc:
			return a.Price.LessThan(b.Price)
		case enums.ProductSortPriceDesc:
			return a.Price.GreaterThan(b.Price)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
}

// Categories lists "all" followed by each distinct lower-cased category in listing order.
func Categories(products []models.Product) []string {
	seen := map[string]struct{}{enums.CategoryAll: {}}
	out := []string{enums.CategoryAll}
	for _, p := range products {
		category := strings.ToLower(strings.TrimSpace(p.Category))
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		out = append(out, category)
	}
	return out
}
