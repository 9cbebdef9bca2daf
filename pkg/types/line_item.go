package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is the persisted shape of one cart line. It is shared by the durable
// cart snapshot and the orders.items column so both keep the same JSON layout.
type LineItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

type lineItemJSON struct {
	ProductID int64       `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image"`
}

// MarshalJSON writes price as a bare JSON number.
func (l LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(lineItemJSON{
		ProductID: l.ProductID,
		Name:      l.Name,
		Price:     json.Number(l.Price.String()),
		Quantity:  l.Quantity,
		Image:     l.Image,
	})
}

// UnmarshalJSON accepts price as a number or a quoted decimal string.
func (l *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID int64           `json:"id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Quantity  int             `json:"quantity"`
		Image     string          `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = LineItem(raw)
	return nil
}

// LineItems is stored as a JSON array (jsonb in Postgres, text in sqlite).
type LineItems []LineItem

// Value implements driver.Valuer.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]LineItem(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (l *LineItems) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("line items: unsupported scan type %T", value)
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("line items: %w", err)
	}
	*l = items
	return nil
}
