package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/models"
)

type Rates struct {
	TaxRate  decimal.Decimal
	Shipping decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		TaxRate:  decimal.RequireFromString("0.12"),
		Shipping: decimal.RequireFromString("5.00"),
	}
}

// ComputeTotals keeps full precision; round only through Display.
func ComputeTotals(items []models.CartLineItem, r Rates) models.Totals {
	subtotal := cart.Sum(items)
	tax := subtotal.Mul(r.TaxRate)
	return models.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: r.Shipping,
		Total:    subtotal.Add(tax).Add(r.Shipping),
	}
}

type DisplayTotals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

func Display(t models.Totals) DisplayTotals {
	return DisplayTotals{
		Subtotal: FormatPrice(t.Subtotal),
		Tax:      FormatPrice(t.Tax),
		Shipping: FormatPrice(t.Shipping),
		Total:    FormatPrice(t.Total),
	}
}

func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
