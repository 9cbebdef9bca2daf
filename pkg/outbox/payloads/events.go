package payloads

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/pkg/types"
)

// OrderCreatedEvent announces a newly placed order.
type OrderCreatedEvent struct {
	OrderID      int64           `json:"order_id"`
	ContactEmail string          `json:"contact_email"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"item_count"`
	Items        types.LineItems `json:"items"`
}
