// internal/domain/pos/finalize.go
package pos

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/domain/money"
	"github.com/your-org/pos-backend/internal/domain/sale"
)

// tenderTolerance is the 1-cent slack allowed when comparing the
// tendered amount against the grand total.
const tenderTolerance = 0.01

// FinalizeOptions carries the per-call context the finalizer needs:
// who is completing the sale and under which policy.
type FinalizeOptions struct {
	OperatorID uint
	Operator   OperatorPolicy
}

// Finalize validates the final sale invariants, assembles the frozen
// transaction payload, and submits it to the sale-persistence service
// exactly once per operator action. There is no automatic retry: a
// failed submission is re-triggered explicitly by the operator, and the
// submission ID lets the persistence layer deduplicate those retries.
//
// On success the cart is cleared and authorization resets. On failure
// the cart is preserved unchanged so the operator can correct and retry.
func (s *Service) Finalize(ctx context.Context, sessionID string, opts FinalizeOptions) (*sale.Sale, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.RecomputeTotals()

	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Re-evaluate rather than trusting the stored state: the operator
	// policy is explicit per call and may have changed.
	EvaluateDiscountAuth(cart, opts.Operator)
	if cart.AuthState == AuthStatePendingApproval {
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
		// Not a hard error: the caller redirects into the approval flow.
		return nil, ErrAuthorizationPending
	}

	if s.config.POS.RequireCustomer && cart.CustomerID == nil {
		return nil, ErrCustomerRequired
	}

	if cart.Payment == nil {
		return nil, ErrNoPaymentMethod
	}

	if cart.Payment.AllowsChange {
		shortfall := money.Round(cart.Totals.GrandTotal - cart.AmountTendered)
		if shortfall > tenderTolerance {
			return nil, &InsufficientTenderError{Shortfall: shortfall}
		}
	}

	// Assigned on the first attempt and reused on retries so an unknown
	// outcome can never turn into a duplicate sale.
	if cart.SubmissionID == "" {
		cart.SubmissionID = uuid.New().String()
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
	}

	payload := buildSubmitRequest(cart, opts.OperatorID)
	revisionAtSubmit := cart.Revision

	submitCtx, cancel := context.WithTimeout(ctx, s.config.POS.ServiceCallTimeout)
	defer cancel()

	recorded, err := s.submitter.SubmitSale(submitCtx, payload)
	if err != nil {
		outcome := OutcomeNotSubmitted
		if submitCtx.Err() != nil {
			// The request may have reached the service before the
			// deadline fired; the sale might exist.
			outcome = OutcomeUnknown
		}
		s.logger.WithFields(logrus.Fields{
			"session_id":    sessionID,
			"submission_id": cart.SubmissionID,
			"outcome":       outcome,
		}).WithError(err).Error("Sale submission failed")
		return nil, &SubmissionError{Outcome: outcome, Err: err}
	}

	// Stale-response protection: if the cart changed while the
	// submission was in flight, do not clear a differently-populated
	// cart. The recorded sale stands either way.
	current, loadErr := s.carts.Get(ctx, sessionID)
	if loadErr == nil && current.Revision != revisionAtSubmit {
		s.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"sale_code":  recorded.Code,
		}).Warn("Cart changed during submission; leaving cart untouched")
		return recorded, nil
	}

	cart.Clear()
	if err := s.carts.Save(ctx, cart); err != nil {
		s.logger.WithError(err).Warn("Failed to clear cart after sale")
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":  sessionID,
		"sale_code":   recorded.Code,
		"grand_total": recorded.GrandTotal,
	}).Info("Sale finalized")

	return recorded, nil
}

// buildSubmitRequest freezes the cart into the transaction payload
func buildSubmitRequest(cart *Cart, operatorID uint) *sale.SubmitRequest {
	items := make([]sale.SubmitItem, len(cart.Lines))
	for i, line := range cart.Lines {
		items[i] = sale.SubmitItem{
			ProductID:    line.ProductID,
			Barcode:      line.Barcode,
			Name:         line.Name,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineDiscount: line.LineDiscount,
			LineTotal:    line.LineTotal,
		}
	}

	return &sale.SubmitRequest{
		SubmissionID:      cart.SubmissionID,
		OperatorID:        operatorID,
		CustomerID:        cart.CustomerID,
		Items:             items,
		Subtotal:          cart.Totals.Subtotal,
		LineDiscountSum:   cart.Totals.LineDiscountSum,
		GeneralDiscount:   cart.Totals.GeneralDiscount,
		TotalDiscount:     cart.Totals.TotalDiscount,
		GrandTotal:        cart.Totals.GrandTotal,
		Surcharge:         cart.Totals.Surcharge,
		PaymentMethodID:   cart.Payment.ID,
		PaymentMethodCode: cart.Payment.Code,
		AmountTendered:    money.Round(cart.AmountTendered),
		Change:            cart.Totals.Change,
		Notes:             cart.Notes,
	}
}
