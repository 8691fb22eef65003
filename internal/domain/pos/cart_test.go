// internal/domain/pos/cart_test.go
package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/pos-backend/internal/domain/catalog"
)

func riceProduct() *catalog.Product {
	return &catalog.Product{
		ID:            1,
		Barcode:       "7891000100103",
		Name:          "Rice 5kg",
		SalePrice:     10.00,
		Quantity:      10,
		MinStockLevel: 2,
	}
}

func TestCartAddOrIncrement(t *testing.T) {
	t.Run("adds a new line with captured price", func(t *testing.T) {
		cart := NewCart("s1")
		line := cart.AddOrIncrement(riceProduct(), 2, false)

		assert.Equal(t, uint(1), line.ProductID)
		assert.Equal(t, 2, line.Quantity)
		assert.Equal(t, 10.00, line.UnitPrice)
		assert.Equal(t, 20.00, line.LineTotal)
		assert.Len(t, cart.Lines, 1)
	})

	t.Run("increments an existing line", func(t *testing.T) {
		cart := NewCart("s1")
		product := riceProduct()
		cart.AddOrIncrement(product, 2, false)
		line := cart.AddOrIncrement(product, 3, false)

		assert.Equal(t, 5, line.Quantity)
		assert.Len(t, cart.Lines, 1)
	})

	t.Run("unit price is immune to later catalog changes", func(t *testing.T) {
		cart := NewCart("s1")
		product := riceProduct()
		cart.AddOrIncrement(product, 1, false)

		product.SalePrice = 12.00
		line := cart.AddOrIncrement(product, 1, false)

		assert.Equal(t, 10.00, line.UnitPrice)
		assert.Equal(t, 20.00, line.LineTotal)
	})

	t.Run("quantity clamps to available stock", func(t *testing.T) {
		cart := NewCart("s1")
		product := riceProduct()
		product.Quantity = 3
		line := cart.AddOrIncrement(product, 8, false)

		assert.Equal(t, 3, line.Quantity)
	})

	t.Run("negative stock policy lifts the clamp", func(t *testing.T) {
		cart := NewCart("s1")
		product := riceProduct()
		product.Quantity = 3
		line := cart.AddOrIncrement(product, 8, true)

		assert.Equal(t, 8, line.Quantity)
	})

	t.Run("requested quantity below one defaults to one", func(t *testing.T) {
		cart := NewCart("s1")
		line := cart.AddOrIncrement(riceProduct(), 0, false)

		assert.Equal(t, 1, line.Quantity)
	})
}

func TestCartSetQuantity(t *testing.T) {
	t.Run("sets the quantity of an existing line", func(t *testing.T) {
		cart := NewCart("s1")
		cart.AddOrIncrement(riceProduct(), 2, false)

		err := cart.SetQuantity(1, 5, 10, false)
		assert.NoError(t, err)
		assert.Equal(t, 5, cart.FindLine(1).Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		cart := NewCart("s1")
		cart.AddOrIncrement(riceProduct(), 2, false)

		err := cart.SetQuantity(1, 0, 10, false)
		assert.NoError(t, err)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("clamps to available stock", func(t *testing.T) {
		cart := NewCart("s1")
		cart.AddOrIncrement(riceProduct(), 2, false)

		err := cart.SetQuantity(1, 50, 10, false)
		assert.NoError(t, err)
		assert.Equal(t, 10, cart.FindLine(1).Quantity)
	})

	t.Run("unknown line fails", func(t *testing.T) {
		cart := NewCart("s1")
		err := cart.SetQuantity(99, 1, 10, false)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestCartRemove(t *testing.T) {
	cart := NewCart("s1")
	cart.AddOrIncrement(riceProduct(), 2, false)

	assert.NoError(t, cart.Remove(1))
	assert.True(t, cart.IsEmpty())
	assert.ErrorIs(t, cart.Remove(1), ErrLineNotFound)
}

func TestCartApplyLineDiscount(t *testing.T) {
	t.Run("stores an absolute amount", func(t *testing.T) {
		cart := NewCart("s1")
		cart.AddOrIncrement(riceProduct(), 3, false)

		err := cart.ApplyLineDiscount(1, 5.00, false)
		assert.NoError(t, err)

		line := cart.FindLine(1)
		assert.Equal(t, 5.00, line.LineDiscount)
		assert.Equal(t, 25.00, line.LineTotal)
	})

	t.Run("converts a percentage against the line gross", func(t *testing.T) {
		cart := NewCart("s1")
		cart.AddOrIncrement(riceProduct(), 3, false)

		err := cart.ApplyLineDiscount(1, 10, true)
		assert.NoError(t, err)

		line := cart.FindLine(1)
		assert.Equal(t, 3.00, line.LineDiscount)
		assert.Equal(t, 27.00, line.LineTotal)
	})

	t.Run("negative amounts clamp to zero", func(t *testing.T) {
		cart := NewCart("s1")
		cart.AddOrIncrement(riceProduct(), 1, false)

		err := cart.ApplyLineDiscount(1, -5, false)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, cart.FindLine(1).LineDiscount)
	})

	t.Run("unknown line fails", func(t *testing.T) {
		cart := NewCart("s1")
		err := cart.ApplyLineDiscount(99, 1, false)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestCartRevision(t *testing.T) {
	cart := NewCart("s1")
	assert.Equal(t, int64(0), cart.Revision)

	cart.AddOrIncrement(riceProduct(), 1, false)
	assert.Equal(t, int64(1), cart.Revision)

	cart.SetGeneralDiscount(2.00, false)
	assert.Equal(t, int64(2), cart.Revision)

	assert.NoError(t, cart.Remove(1))
	assert.Equal(t, int64(3), cart.Revision)
}

func TestCartClear(t *testing.T) {
	cart := NewCart("s1")
	cart.AddOrIncrement(riceProduct(), 2, false)
	customerID := uint(7)
	cart.CustomerID = &customerID
	cart.SetGeneralDiscount(5.00, false)
	cart.Payment = cashPayment()
	cart.AmountTendered = 50.00
	cart.Notes = "hold the receipt"
	cart.AuthState = AuthStateApproved
	cart.ApprovedDiscount = 5.00
	cart.ApprovedBy = "supervisor1"
	cart.SubmissionID = "abc-123"
	cart.RecomputeTotals()

	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.Nil(t, cart.CustomerID)
	assert.Equal(t, 0.0, cart.GeneralDiscount)
	assert.Nil(t, cart.Payment)
	assert.Equal(t, 0.0, cart.AmountTendered)
	assert.Empty(t, cart.Notes)
	assert.Equal(t, AuthStateNone, cart.AuthState)
	assert.Equal(t, 0.0, cart.ApprovedDiscount)
	assert.Empty(t, cart.ApprovedBy)
	assert.Empty(t, cart.SubmissionID)
	assert.Equal(t, Totals{}, cart.Totals)
	assert.Equal(t, "s1", cart.SessionID)
}
