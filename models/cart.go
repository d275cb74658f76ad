package models

import "github.com/shopspring/decimal"

// CartLine is one entry in the checkout working set. Kind decides the stock
// behavior: product lines decrement Product.Stock, repair lines do not.
// Quantity lives only here; the persisted Sale keeps unit prices and the
// precomputed total.
type CartLine struct {
	CartId    string          `json:"cart_id"`
	Kind      LineKind        `json:"kind" binding:"required"`
	RefId     string          `json:"ref_id" binding:"required"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Qty returns the effective quantity (lines default to one).
func (l CartLine) Qty() int {
	if l.Quantity < 1 {
		return 1
	}
	return l.Quantity
}

// Subtotal is unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty())))
}

// CartTotal sums the subtotals of all lines.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
