package controllers

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// money renders an amount as a JSON number with two decimals.
func money(amount decimal.Decimal) json.Number {
	return json.Number(amount.StringFixed(2))
}
