package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/pkg/types"
)

// Line is one product in a cart. Name, price and image are copied from the product when it is
// first added and are not refreshed afterwards.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image"`
}

// Total is quantity times unit price.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ProductSnapshot is the product data copied into a new line.
type ProductSnapshot struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	ImageRef string
}

// Cart is an immutable view of a cart's lines in insertion order.
type Cart struct {
	Lines []Line `json:"lines"`
}

// ItemCount is the sum of all line quantities.
func (c Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Subtotal is the sum of all line totals.
func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.Total())
	}
	return subtotal
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for productID.
func (c Cart) Line(productID int64) (Line, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}

// LineItems converts the cart into its persisted representation.
func (c Cart) LineItems() types.LineItems {
	return toLineItems(c.Lines)
}

func toLineItems(lines []Line) types.LineItems {
	items := make(types.LineItems, 0, len(lines))
	for _, line := range lines {
		items = append(items, types.LineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
			Image:     line.ImageRef,
		})
	}
	return items
}

// fromLineItems restores lines from a snapshot, dropping lines with a non-positive quantity and
// merging repeated product ids so the cart invariants hold for hand-edited data.
func fromLineItems(items types.LineItems) []Line {
	lines := make([]Line, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			lines[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
			ImageRef:  item.Image,
		})
	}
	return lines
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
