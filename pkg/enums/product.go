package enums

import (
	"fmt"
	"strings"
)

// ProductSort is the ordering applied when browsing the catalog.
type ProductSort string

const (
	ProductSortNameAsc   ProductSort = "name-asc"
	ProductSortNameDesc  ProductSort = "name-desc"
	ProductSortPriceAsc  ProductSort = "price-asc"
	ProductSortPriceDesc ProductSort = "price-desc"
)

// DefaultProductSort is used when no sort is requested.
const DefaultProductSort = ProductSortNameAsc

// CategoryAll disables the category filter.
const CategoryAll = "all"

var validProductSorts = []ProductSort{
	ProductSortNameAsc,
	ProductSortNameDesc,
	ProductSortPriceAsc,
	ProductSortPriceDesc,
}

// String implements fmt.Stringer.
func (s ProductSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductSort.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort. Empty input yields the default.
func ParseProductSort(value string) (ProductSort, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return DefaultProductSort, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
