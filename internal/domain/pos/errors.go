// internal/domain/pos/errors.go
package pos

import (
	"errors"
	"fmt"
)

// Validation errors are local and recoverable; the operator corrects
// the cart and retries. None of them trigger automatic retries.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCustomerRequired  = errors.New("customer is required for this sale")
	ErrLineNotFound      = errors.New("product is not in the cart")
	ErrNoPaymentMethod   = errors.New("payment method is not selected")
	ErrCartNotFound      = errors.New("cart session not found")
	ErrNotPendingApproval = errors.New("no discount approval is pending")
)

// ErrAuthorizationPending signals that finalization must redirect into
// the discount authorization flow. It is a control-flow outcome, not a
// hard failure.
var ErrAuthorizationPending = errors.New("discount authorization is pending approval")

// InsufficientTenderError reports how much cash is still missing for a
// change-bearing payment method.
type InsufficientTenderError struct {
	Shortfall float64
}

func (e *InsufficientTenderError) Error() string {
	return fmt.Sprintf("insufficient tendered amount: short by %.2f", e.Shortfall)
}

// BlockedError is a policy block: the requested cart mutation was
// rejected outright (out of stock, insufficient stock, expired).
type BlockedError struct {
	Reason         BlockReason
	RemainingStock int
}

func (e *BlockedError) Error() string {
	switch e.Reason {
	case BlockInsufficientStock:
		return fmt.Sprintf("insufficient stock: only %d remaining", e.RemainingStock)
	case BlockOutOfStock:
		return "product is out of stock"
	case BlockExpired:
		return "product is expired"
	}
	return string(e.Reason)
}

// SubmissionOutcome distinguishes a submission that definitely did not
// happen from one whose outcome is unknown. Unknown outcomes are never
// treated as success; a blind resubmit could create a duplicate sale.
type SubmissionOutcome string

const (
	OutcomeNotSubmitted SubmissionOutcome = "not_submitted"
	OutcomeUnknown      SubmissionOutcome = "unknown"
)

// SubmissionError reports a failed sale submission together with what
// is known about whether the sale was recorded.
type SubmissionError struct {
	Outcome SubmissionOutcome
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("sale submission failed (%s): %v", e.Outcome, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
