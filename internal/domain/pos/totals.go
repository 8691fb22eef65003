// internal/domain/pos/totals.go
package pos

import "github.com/your-org/pos-backend/internal/domain/money"

// Totals is the derived financial summary of a cart. Every field is
// rounded exactly once at the step that produces it, so recomputing on
// an unchanged cart yields identical values.
type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	LineDiscountSum float64 `json:"line_discount_sum"`
	GeneralDiscount float64 `json:"general_discount"`
	TotalDiscount   float64 `json:"total_discount"`
	GrandTotal      float64 `json:"grand_total"`
	Surcharge       float64 `json:"surcharge"`
	Change          float64 `json:"change"`
	ItemCount       int     `json:"item_count"`
	TotalQuantity   int     `json:"total_quantity"`
}

// CalculateTotals derives the cart totals. It is a pure function with
// no error conditions; a degenerate cart yields all zeros. The grand
// total clamps at zero regardless of discount magnitude.
func CalculateTotals(lines []CartLine, generalDiscount float64, isPercentage bool, payment *PaymentSelection, amountTendered float64) Totals {
	var t Totals

	t.ItemCount = len(lines)

	var subtotal, lineDiscounts float64
	for _, line := range lines {
		subtotal += float64(line.Quantity) * line.UnitPrice
		lineDiscounts += line.LineDiscount
		t.TotalQuantity += line.Quantity
	}
	t.Subtotal = money.Round(subtotal)
	t.LineDiscountSum = money.Round(lineDiscounts)

	if isPercentage {
		t.GeneralDiscount = money.Round((t.Subtotal - t.LineDiscountSum) * (generalDiscount / 100))
	} else {
		t.GeneralDiscount = money.Round(generalDiscount)
	}

	t.TotalDiscount = money.Round(t.LineDiscountSum + t.GeneralDiscount)

	grand := t.Subtotal - t.TotalDiscount
	if grand < 0 {
		grand = 0
	}
	t.GrandTotal = money.Round(grand)

	// The surcharge is informational for the receipt; it does not feed
	// back into the grand total or the change calculation.
	if payment != nil && payment.SurchargePercent > 0 {
		t.Surcharge = money.Round(t.GrandTotal * payment.SurchargePercent / 100)
	}

	if payment != nil && payment.AllowsChange && amountTendered > t.GrandTotal {
		t.Change = money.Round(amountTendered - t.GrandTotal)
	}

	return t
}

// GeneralDiscountPercent returns the general discount as a percentage
// of the subtotal, used to gate discount authorization.
func (t Totals) GeneralDiscountPercent() float64 {
	if t.Subtotal <= 0 {
		return 0
	}
	return t.GeneralDiscount / t.Subtotal * 100
}
