package cart

import "github.com/shopspring/decimal"

// VATRate is the value-added tax applied at checkout.
var VATRate = decimal.RequireFromString("0.21")

// Summary is the checkout breakdown of a cart. Amounts are rounded to cents
// and are for display only.
type Summary struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize computes the checkout breakdown. Shipping is always free.
func Summarize(c Cart) Summary {
	subtotal := CalculateTotal(c.Items)
	tax := subtotal.Mul(VATRate)
	return Summary{
		ItemCount: ItemCount(c),
		Subtotal:  subtotal.Round(2),
		Shipping:  decimal.Zero,
		Tax:       tax.Round(2),
		Total:     subtotal.Add(tax).Round(2),
	}
}
