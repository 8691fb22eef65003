// internal/domain/pos/totals_test.go
package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cashPayment() *PaymentSelection {
	return &PaymentSelection{ID: 1, Code: "cash", Name: "Cash", Type: "cash", AllowsChange: true}
}

func cardPayment(surcharge float64) *PaymentSelection {
	return &PaymentSelection{ID: 2, Code: "credit_card", Name: "Credit Card", Type: "card", SurchargePercent: surcharge}
}

func TestCalculateTotals(t *testing.T) {
	lines := []CartLine{
		{ProductID: 1, Quantity: 3, UnitPrice: 10.00, LineTotal: 30.00},
	}

	t.Run("empty cart yields all zeros", func(t *testing.T) {
		totals := CalculateTotals(nil, 0, false, nil, 0)
		assert.Equal(t, Totals{}, totals)
	})

	t.Run("subtotal and counts", func(t *testing.T) {
		multi := []CartLine{
			{ProductID: 1, Quantity: 3, UnitPrice: 10.00},
			{ProductID: 2, Quantity: 1, UnitPrice: 4.50},
		}
		totals := CalculateTotals(multi, 0, false, nil, 0)
		assert.Equal(t, 34.50, totals.Subtotal)
		assert.Equal(t, 34.50, totals.GrandTotal)
		assert.Equal(t, 2, totals.ItemCount)
		assert.Equal(t, 4, totals.TotalQuantity)
	})

	t.Run("percentage general discount", func(t *testing.T) {
		totals := CalculateTotals(lines, 10, true, nil, 0)
		assert.Equal(t, 30.00, totals.Subtotal)
		assert.Equal(t, 3.00, totals.GeneralDiscount)
		assert.Equal(t, 27.00, totals.GrandTotal)
	})

	t.Run("absolute general discount", func(t *testing.T) {
		totals := CalculateTotals(lines, 5.50, false, nil, 0)
		assert.Equal(t, 5.50, totals.GeneralDiscount)
		assert.Equal(t, 24.50, totals.GrandTotal)
	})

	t.Run("percentage applies after line discounts", func(t *testing.T) {
		discounted := []CartLine{
			{ProductID: 1, Quantity: 3, UnitPrice: 10.00, LineDiscount: 10.00},
		}
		totals := CalculateTotals(discounted, 10, true, nil, 0)
		assert.Equal(t, 30.00, totals.Subtotal)
		assert.Equal(t, 10.00, totals.LineDiscountSum)
		// 10% of the 20.00 remaining after line discounts.
		assert.Equal(t, 2.00, totals.GeneralDiscount)
		assert.Equal(t, 12.00, totals.TotalDiscount)
		assert.Equal(t, 18.00, totals.GrandTotal)
	})

	t.Run("grand total clamps at zero", func(t *testing.T) {
		totals := CalculateTotals(lines, 100.00, false, nil, 0)
		assert.Equal(t, 0.0, totals.GrandTotal)
	})

	t.Run("rounding happens once per step", func(t *testing.T) {
		odd := []CartLine{
			{ProductID: 1, Quantity: 3, UnitPrice: 3.33},
		}
		totals := CalculateTotals(odd, 33.33, true, nil, 0)
		assert.Equal(t, 9.99, totals.Subtotal)
		assert.Equal(t, 3.33, totals.GeneralDiscount)
		assert.Equal(t, 6.66, totals.GrandTotal)

		// Recomputing on identical input yields identical values.
		again := CalculateTotals(odd, 33.33, true, nil, 0)
		assert.Equal(t, totals, again)
	})

	t.Run("surcharge is informational only", func(t *testing.T) {
		totals := CalculateTotals(lines, 10, true, cardPayment(2.5), 0)
		assert.Equal(t, 27.00, totals.GrandTotal)
		assert.Equal(t, 0.68, totals.Surcharge)
		// Change never applies to a card payment.
		assert.Equal(t, 0.0, totals.Change)
	})

	t.Run("change for cash overpayment", func(t *testing.T) {
		totals := CalculateTotals(lines, 10, true, cashPayment(), 30.00)
		assert.Equal(t, 27.00, totals.GrandTotal)
		assert.Equal(t, 3.00, totals.Change)
	})

	t.Run("no change when tendered matches total", func(t *testing.T) {
		totals := CalculateTotals(lines, 10, true, cashPayment(), 27.00)
		assert.Equal(t, 0.0, totals.Change)
	})

	t.Run("no change when payment method disallows it", func(t *testing.T) {
		totals := CalculateTotals(lines, 0, false, cardPayment(0), 50.00)
		assert.Equal(t, 0.0, totals.Change)
	})
}

func TestGeneralDiscountPercent(t *testing.T) {
	t.Run("derives percentage from subtotal", func(t *testing.T) {
		totals := Totals{Subtotal: 30.00, GeneralDiscount: 3.00}
		assert.InDelta(t, 10.0, totals.GeneralDiscountPercent(), 0.001)
	})

	t.Run("zero subtotal yields zero", func(t *testing.T) {
		totals := Totals{Subtotal: 0, GeneralDiscount: 5.00}
		assert.Equal(t, 0.0, totals.GeneralDiscountPercent())
	})
}
