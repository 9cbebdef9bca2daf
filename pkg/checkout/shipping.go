package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/pkg/config"
)

// ShippingPolicy is the flat-rate shipping rule: orders below the free threshold pay the surcharge,
// empty orders and orders at or above the threshold ship free.
type ShippingPolicy struct {
	FreeThreshold  decimal.Decimal
	Surcharge      decimal.Decimal
	CurrencyCode   string
	CurrencySymbol string
}

// DefaultShippingPolicy is $10.00 below $50.00.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold:  decimal.NewFromInt(50),
		Surcharge:      decimal.NewFromInt(10),
		CurrencyCode:   "USD",
		CurrencySymbol: "$",
	}
}

// PolicyFromConfig builds the policy from validated configuration.
func PolicyFromConfig(cfg config.ShippingConfig) ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold:  cfg.Threshold(),
		Surcharge:      cfg.SurchargeAmount(),
		CurrencyCode:   cfg.CurrencyCode,
		CurrencySymbol: cfg.CurrencySymbol,
	}
}

// Quote is the priced summary of a subtotal.
type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	FreeShipping bool            `json:"free_shipping"`
	Currency     string          `json:"currency"`
}

// Shipping returns the shipping charge for subtotal.
func (p ShippingPolicy) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsPositive() && subtotal.LessThan(p.FreeThreshold) {
		return p.Surcharge
	}
	return decimal.Zero
}

// Quote prices subtotal.
func (p ShippingPolicy) Quote(subtotal decimal.Decimal) Quote {
	shipping := p.Shipping(subtotal)
	return Quote{
		Subtotal:     subtotal,
		Shipping:     shipping,
		Total:        subtotal.Add(shipping),
		FreeShipping: shipping.IsZero(),
		Currency:     p.CurrencyCode,
	}
}

// Format renders amount with the currency symbol and two decimals, e.g. $12.50.
func (p ShippingPolicy) Format(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return fmt.Sprintf("-%s%s", p.CurrencySymbol, amount.Neg().StringFixed(2))
	}
	return p.CurrencySymbol + amount.StringFixed(2)
}
