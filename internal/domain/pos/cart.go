// internal/domain/pos/cart.go
package pos

import (
	"time"

	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/money"
)

// CartLine represents one product entry in the in-progress sale. The
// unit price is captured when the product is first added and is immune
// to later catalog price changes within the same sale.
type CartLine struct {
	ProductID    uint    `json:"product_id"`
	Barcode      string  `json:"barcode"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	LineDiscount float64 `json:"line_discount"`
	LineTotal    float64 `json:"line_total"`
}

// PaymentSelection is the snapshot of the chosen payment method kept on
// the cart so totals stay computable without a catalog round trip.
type PaymentSelection struct {
	ID               uint                      `json:"id"`
	Code             string                    `json:"code"`
	Name             string                    `json:"name"`
	Type             catalog.PaymentMethodType `json:"type"`
	SurchargePercent float64                   `json:"surcharge_percent"`
	AllowsChange     bool                      `json:"allows_change"`
}

// Cart is the in-progress, unsubmitted sale for one register session.
// Line order is insertion order and is used only for display.
type Cart struct {
	SessionID         string            `json:"session_id"`
	Revision          int64             `json:"revision"`
	Lines             []CartLine        `json:"lines"`
	CustomerID        *uint             `json:"customer_id,omitempty"`
	GeneralDiscount   float64           `json:"general_discount"`
	DiscountIsPercent bool              `json:"discount_is_percent"`
	Payment           *PaymentSelection `json:"payment,omitempty"`
	AmountTendered    float64           `json:"amount_tendered"`
	Notes             string            `json:"notes"`

	// Discount authorization state, scoped to the current general
	// discount value.
	AuthState        AuthState `json:"auth_state"`
	ApprovedDiscount float64   `json:"approved_discount"`
	ApprovedBy       string    `json:"approved_by,omitempty"`

	// SubmissionID is assigned on the first finalize attempt and reused
	// on operator-triggered retries so the persistence layer can
	// deduplicate. Any content mutation clears it: a replayed ID must
	// always describe identical cart contents.
	SubmissionID string `json:"submission_id,omitempty"`

	Totals    Totals    `json:"totals"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCart creates an empty cart for a register session
func NewCart(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		Lines:     []CartLine{},
		AuthState: AuthStateNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// FindLine returns the line for a product, or nil
func (c *Cart) FindLine(productID uint) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// QuantityOf returns the quantity currently in the cart for a product
func (c *Cart) QuantityOf(productID uint) int {
	if line := c.FindLine(productID); line != nil {
		return line.Quantity
	}
	return 0
}

// AddOrIncrement adds a product to the cart or increases its quantity.
// The unit price is read from the product only on the first add. The
// resulting quantity is clamped to available stock unless the
// negative-stock policy is active.
func (c *Cart) AddOrIncrement(product *catalog.Product, requestedQty int, allowNegativeStock bool) *CartLine {
	if requestedQty < 1 {
		requestedQty = 1
	}

	if line := c.FindLine(product.ID); line != nil {
		newQty := line.Quantity + requestedQty
		if !allowNegativeStock && newQty > product.Quantity {
			newQty = product.Quantity
		}
		if newQty < 1 {
			newQty = 1
		}
		line.Quantity = newQty
		line.recompute()
		c.touch()
		return line
	}

	qty := requestedQty
	if !allowNegativeStock && qty > product.Quantity {
		qty = product.Quantity
	}
	if qty < 1 {
		qty = 1
	}

	line := CartLine{
		ProductID: product.ID,
		Barcode:   product.Barcode,
		Name:      product.Name,
		Quantity:  qty,
		UnitPrice: money.Round(product.SalePrice),
	}
	line.recompute()
	c.Lines = append(c.Lines, line)
	c.touch()
	return &c.Lines[len(c.Lines)-1]
}

// SetQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line. Otherwise the quantity is clamped to
// [1, availableStock] unless the negative-stock policy is active.
func (c *Cart) SetQuantity(productID uint, qty, availableStock int, allowNegativeStock bool) error {
	line := c.FindLine(productID)
	if line == nil {
		return ErrLineNotFound
	}

	if qty <= 0 {
		c.removeLine(productID)
		c.touch()
		return nil
	}

	if !allowNegativeStock && qty > availableStock {
		qty = availableStock
	}
	if qty < 1 {
		qty = 1
	}

	line.Quantity = qty
	line.recompute()
	c.touch()
	return nil
}

// Remove deletes a line unconditionally
func (c *Cart) Remove(productID uint) error {
	if c.FindLine(productID) == nil {
		return ErrLineNotFound
	}
	c.removeLine(productID)
	c.touch()
	return nil
}

// ApplyLineDiscount stores an absolute discount on a line. Percentages
// are converted against the line's gross value. The discount is not
// clamped here; the totals calculator guarantees no negative totals.
func (c *Cart) ApplyLineDiscount(productID uint, amount float64, isPercentage bool) error {
	line := c.FindLine(productID)
	if line == nil {
		return ErrLineNotFound
	}

	if amount < 0 {
		amount = 0
	}

	discount := amount
	if isPercentage {
		discount = line.UnitPrice * float64(line.Quantity) * (amount / 100)
	}

	line.LineDiscount = money.Round(discount)
	line.recompute()
	c.touch()
	return nil
}

// SetGeneralDiscount replaces the whole-sale discount. Authorization
// state is re-evaluated by the caller through the state machine.
func (c *Cart) SetGeneralDiscount(amount float64, isPercentage bool) {
	if amount < 0 {
		amount = 0
	}
	c.GeneralDiscount = money.Round(amount)
	c.DiscountIsPercent = isPercentage
	c.touch()
}

// Clear resets the cart to its initial empty state, keeping the session
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.CustomerID = nil
	c.GeneralDiscount = 0
	c.DiscountIsPercent = false
	c.Payment = nil
	c.AmountTendered = 0
	c.Notes = ""
	c.AuthState = AuthStateNone
	c.ApprovedDiscount = 0
	c.ApprovedBy = ""
	c.SubmissionID = ""
	c.Totals = Totals{}
	c.touch()
}

// RecomputeTotals re-derives the totals from current cart state. It is
// called synchronously after every mutation so totals are never stale.
func (c *Cart) RecomputeTotals() {
	c.Totals = CalculateTotals(c.Lines, c.GeneralDiscount, c.DiscountIsPercent, c.Payment, c.AmountTendered)
}

func (c *Cart) removeLine(productID uint) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) touch() {
	c.Revision++
	c.UpdatedAt = time.Now().UTC()
	// The cart no longer matches what a pending submission ID described;
	// the next finalize must submit under a fresh identity.
	c.SubmissionID = ""
}

func (l *CartLine) recompute() {
	l.LineTotal = money.Round(float64(l.Quantity)*l.UnitPrice - l.LineDiscount)
}
