package orders

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/pkg/enums"
	"github.com/angelmondragon/graingrove-backend/pkg/types"
)

// ShipTo is the shipping address captured at checkout.
type ShipTo struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

// Order is what checkout hands to SubmitOrder. Total already includes shipping.
type Order struct {
	ContactEmail string            `json:"contactEmail"`
	ShipTo       ShipTo            `json:"shipTo"`
	Total        decimal.Decimal   `json:"total"`
	Lines        types.LineItems   `json:"items"`
	Status       enums.OrderStatus `json:"status"`
}

// SubmitResult reports the outcome of SubmitOrder. OrderID is set only on success.
type SubmitResult struct {
	Success bool   `json:"success"`
	OrderID *int64 `json:"orderId,omitempty"`
}

func itemCount(lines types.LineItems) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}
