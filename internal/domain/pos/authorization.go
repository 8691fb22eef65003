// internal/domain/pos/authorization.go
package pos

import "github.com/your-org/pos-backend/internal/domain/money"

// AuthState tracks the discount authorization workflow for a cart
type AuthState string

const (
	AuthStateNone            AuthState = "none"
	AuthStatePendingApproval AuthState = "pending_approval"
	AuthStateApproved        AuthState = "approved"
)

// OperatorPolicy is the operator's discount configuration, passed in
// explicitly at call time rather than read from session state.
type OperatorPolicy struct {
	Role                 string  `json:"role"`
	DiscountLimitPercent float64 `json:"discount_limit_percent"`
	RequireAuthorization bool    `json:"require_authorization"`
}

// Privileged reports whether the role bypasses discount authorization
func (p OperatorPolicy) Privileged() bool {
	return p.Role == "admin"
}

// EvaluateDiscountAuth re-runs the discount authorization state machine
// after the general discount changed. The evaluation is synchronous and
// side-effect-free beyond the cart's own state fields.
//
// An existing approval is scoped to the approved discount amount:
// lowering the discount keeps the approval, raising it re-evaluates
// against the operator's limit. Quantity changes on other lines do not
// re-trigger evaluation; only discount-value changes route through here.
func EvaluateDiscountAuth(cart *Cart, operator OperatorPolicy) AuthState {
	amount := cart.Totals.GeneralDiscount

	if amount <= 0 {
		cart.AuthState = AuthStateNone
		cart.ApprovedDiscount = 0
		cart.ApprovedBy = ""
		return cart.AuthState
	}

	if operator.Privileged() || !operator.RequireAuthorization {
		cart.AuthState = AuthStateApproved
		cart.ApprovedDiscount = amount
		return cart.AuthState
	}

	if cart.AuthState == AuthStateApproved {
		if amount <= cart.ApprovedDiscount || money.Equal(amount, cart.ApprovedDiscount) {
			return cart.AuthState
		}
		// The discount grew past what was approved; fall through and
		// re-check against the operator's own limit.
	}

	// Tolerance absorbs float drift so a discount sitting exactly on the
	// limit does not flip to pending.
	if cart.Totals.GeneralDiscountPercent() > operator.DiscountLimitPercent+1e-9 {
		cart.AuthState = AuthStatePendingApproval
		cart.ApprovedDiscount = 0
		cart.ApprovedBy = ""
	} else {
		cart.AuthState = AuthStateNone
		cart.ApprovedDiscount = 0
		cart.ApprovedBy = ""
	}

	return cart.AuthState
}

// ApproveDiscount records a successful supervisor override. The
// approval covers the current discount value only.
func ApproveDiscount(cart *Cart, approvedBy string) error {
	if cart.AuthState != AuthStatePendingApproval {
		return ErrNotPendingApproval
	}
	cart.AuthState = AuthStateApproved
	cart.ApprovedDiscount = cart.Totals.GeneralDiscount
	cart.ApprovedBy = approvedBy
	cart.touch()
	return nil
}

// CancelDiscountAuth abandons the approval flow. The pending discount
// is cleared as well, otherwise an over-limit discount would remain on
// the cart with no approval gating it.
func CancelDiscountAuth(cart *Cart) {
	cart.GeneralDiscount = 0
	cart.DiscountIsPercent = false
	cart.AuthState = AuthStateNone
	cart.ApprovedDiscount = 0
	cart.ApprovedBy = ""
	cart.touch()
}
