// internal/domain/pos/stock_check.go
package pos

import (
	"fmt"
	"time"

	"github.com/your-org/pos-backend/internal/domain/catalog"
)

// BlockReason identifies why a cart mutation was rejected outright
type BlockReason string

const (
	BlockOutOfStock        BlockReason = "out_of_stock"
	BlockInsufficientStock BlockReason = "insufficient_stock"
	BlockExpired           BlockReason = "expired"
)

// AdvisoryCode identifies a non-blocking warning surfaced to the operator
type AdvisoryCode string

const (
	AdvisoryCriticalExpiry    AdvisoryCode = "critical_expiry"
	AdvisoryApproachingExpiry AdvisoryCode = "approaching_expiry"
	AdvisoryLowStock          AdvisoryCode = "low_stock_remaining"
)

// Advisory is informational and never blocks the mutation
type Advisory struct {
	Code    AdvisoryCode `json:"code"`
	Message string       `json:"message"`
}

// StockPolicy carries the store configuration the validator needs. It
// is passed explicitly at call time, never read from ambient state.
type StockPolicy struct {
	AllowNegativeStock bool
	CriticalExpiryDays int
	AlertExpiryDays    int
}

// CheckOutcome reports the validator's decision for a proposed add or
// increment. A blocked outcome carries no advisories; blocking rules
// short-circuit before advisories are evaluated.
type CheckOutcome struct {
	Allowed        bool        `json:"allowed"`
	BlockReason    BlockReason `json:"block_reason,omitempty"`
	RemainingStock int         `json:"remaining_stock,omitempty"`
	Advisories     []Advisory  `json:"advisories,omitempty"`
}

// BlockedErr converts a blocked outcome into its error form, or nil
func (o CheckOutcome) BlockedErr() error {
	if o.Allowed {
		return nil
	}
	return &BlockedError{Reason: o.BlockReason, RemainingStock: o.RemainingStock}
}

// CheckAddition gatekeeps whether a product may be added or incremented
// in the cart. Rules are evaluated in order and the first blocking rule
// wins. All date comparisons happen on calendar dates at local midnight.
func CheckAddition(product *catalog.Product, quantityInCart, requestedIncrement int, policy StockPolicy, today time.Time) CheckOutcome {
	if requestedIncrement < 1 {
		requestedIncrement = 1
	}

	if !policy.AllowNegativeStock && product.Quantity <= 0 {
		return CheckOutcome{BlockReason: BlockOutOfStock}
	}

	newQuantity := quantityInCart + requestedIncrement
	if !policy.AllowNegativeStock && newQuantity > product.Quantity {
		return CheckOutcome{
			BlockReason:    BlockInsufficientStock,
			RemainingStock: product.Quantity - quantityInCart,
		}
	}

	// Expired stock is never sellable, regardless of stock policy.
	if product.IsExpired(today) {
		return CheckOutcome{BlockReason: BlockExpired}
	}

	outcome := CheckOutcome{Allowed: true}

	if days, ok := product.DaysUntilExpiry(today); ok && days >= 0 {
		if days <= policy.CriticalExpiryDays {
			outcome.Advisories = append(outcome.Advisories, Advisory{
				Code:    AdvisoryCriticalExpiry,
				Message: fmt.Sprintf("%s expires in %d day(s)", product.Name, days),
			})
		} else if days <= policy.AlertExpiryDays {
			outcome.Advisories = append(outcome.Advisories, Advisory{
				Code:    AdvisoryApproachingExpiry,
				Message: fmt.Sprintf("%s expires in %d day(s)", product.Name, days),
			})
		}
	}

	if product.Quantity-newQuantity <= product.MinStockLevel {
		outcome.Advisories = append(outcome.Advisories, Advisory{
			Code:    AdvisoryLowStock,
			Message: fmt.Sprintf("%s will have %d unit(s) left in stock", product.Name, product.Quantity-newQuantity),
		})
	}

	return outcome
}
