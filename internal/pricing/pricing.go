// Package pricing derives order totals from a resolved cart. Everything here
// is a pure function of its inputs: the checkout flow computes one Quote and
// passes the same numbers through payment and persistence.
package pricing

import "github.com/shopspring/decimal"

// Config carries the three pricing constants. FXRate converts catalog (base)
// prices into the settlement currency as a fixed multiplier.
type Config struct {
	TaxRate      decimal.Decimal
	ShippingFlat decimal.Decimal
	FXRate       decimal.Decimal
}

// LineAmount is the slice of a cart line pricing cares about.
type LineAmount struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote holds the computed totals. SubtotalBase is in the catalog currency;
// every other amount is in the settlement currency.
type Quote struct {
	SubtotalBase decimal.Decimal `json:"subtotalBase"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// Compute returns the totals for the given lines. Tax is rounded to two
// decimal places; subtotal and shipping are exact.
func Compute(lines []LineAmount, cfg Config) Quote {
	subtotalBase := decimal.Zero
	for _, l := range lines {
		subtotalBase = subtotalBase.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	subtotal := subtotalBase.Mul(cfg.FXRate)
	tax := subtotal.Mul(cfg.TaxRate).Round(2)
	total := subtotal.Add(cfg.ShippingFlat).Add(tax)

	return Quote{
		SubtotalBase: subtotalBase,
		Subtotal:     subtotal,
		Shipping:     cfg.ShippingFlat,
		Tax:          tax,
		Total:        total,
	}
}
