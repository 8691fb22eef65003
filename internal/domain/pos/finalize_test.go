// internal/domain/pos/finalize_test.go
package pos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/domain/sale"
)

func finalizeOpts() FinalizeOptions {
	return FinalizeOptions{
		OperatorID: 1,
		Operator:   OperatorPolicy{Role: "cashier", DiscountLimitPercent: 10, RequireAuthorization: true},
	}
}

// readyCart builds a cart worth 27.00 paid in cash with exact change,
// saved in the store under the given session
func readyCart(t *testing.T, env *testEnv, sessionID string) {
	t.Helper()
	ctx := context.Background()

	_, err := env.svc.AddProduct(ctx, sessionID, 1, 3)
	require.NoError(t, err)
	_, err = env.svc.SetGeneralDiscount(ctx, sessionID, 10, true, finalizeOpts().Operator)
	require.NoError(t, err)
	_, err = env.svc.SetPaymentMethod(ctx, sessionID, 1)
	require.NoError(t, err)
	_, err = env.svc.SetAmountTendered(ctx, sessionID, 30.00)
	require.NoError(t, err)
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart never submits", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.Finalize(ctx, "s1", finalizeOpts())
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Equal(t, 0, env.submitter.calls)
	})

	t.Run("pending discount approval redirects before submission", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")
		_, err := env.svc.SetGeneralDiscount(ctx, "s1", 25, true, finalizeOpts().Operator)
		require.NoError(t, err)

		_, err = env.svc.Finalize(ctx, "s1", finalizeOpts())
		assert.ErrorIs(t, err, ErrAuthorizationPending)
		assert.Equal(t, 0, env.submitter.calls)

		loaded, err := env.svc.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, AuthStatePendingApproval, loaded.AuthState)
	})

	t.Run("customer requirement is enforced when configured", func(t *testing.T) {
		env := newTestEnv()
		env.cfg.POS.RequireCustomer = true
		readyCart(t, env, "s1")

		_, err := env.svc.Finalize(ctx, "s1", finalizeOpts())
		assert.ErrorIs(t, err, ErrCustomerRequired)
		assert.Equal(t, 0, env.submitter.calls)
	})

	t.Run("payment method is required", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.AddProduct(ctx, "s1", 1, 1)
		require.NoError(t, err)

		_, err = env.svc.Finalize(ctx, "s1", finalizeOpts())
		assert.ErrorIs(t, err, ErrNoPaymentMethod)
	})

	t.Run("insufficient tender reports the shortfall", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")
		_, err := env.svc.SetAmountTendered(ctx, "s1", 25.00)
		require.NoError(t, err)

		_, err = env.svc.Finalize(ctx, "s1", finalizeOpts())

		var tender *InsufficientTenderError
		require.ErrorAs(t, err, &tender)
		assert.Equal(t, 2.00, tender.Shortfall)
		assert.Equal(t, 0, env.submitter.calls)
	})

	t.Run("a one cent shortfall is tolerated", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")
		_, err := env.svc.SetAmountTendered(ctx, "s1", 26.99)
		require.NoError(t, err)

		_, err = env.svc.Finalize(ctx, "s1", finalizeOpts())
		assert.NoError(t, err)
	})

	t.Run("card payments skip the tender check", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")
		_, err := env.svc.SetPaymentMethod(ctx, "s1", 2)
		require.NoError(t, err)
		_, err = env.svc.SetAmountTendered(ctx, "s1", 0)
		require.NoError(t, err)

		_, err = env.svc.Finalize(ctx, "s1", finalizeOpts())
		assert.NoError(t, err)
	})

	t.Run("successful sale freezes the cart into the payload and clears it", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")

		recorded, err := env.svc.Finalize(ctx, "s1", finalizeOpts())
		require.NoError(t, err)
		assert.Equal(t, 27.00, recorded.GrandTotal)
		assert.Equal(t, 3.00, recorded.Change)

		require.Equal(t, 1, env.submitter.calls)
		req := env.submitter.requests[0]
		assert.NotEmpty(t, req.SubmissionID)
		assert.Equal(t, uint(1), req.OperatorID)
		assert.Equal(t, 30.00, req.Subtotal)
		assert.Equal(t, 3.00, req.GeneralDiscount)
		assert.Equal(t, "cash", req.PaymentMethodCode)
		require.Len(t, req.Items, 1)
		assert.Equal(t, "Rice 5kg", req.Items[0].Name)
		assert.Equal(t, 3, req.Items[0].Quantity)

		loaded, err := env.svc.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, loaded.IsEmpty())
		assert.Empty(t, loaded.SubmissionID)
	})

	t.Run("failed submission preserves the cart and its submission ID", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")
		env.submitter.err = errors.New("persistence unavailable")

		_, err := env.svc.Finalize(ctx, "s1", finalizeOpts())

		var subErr *SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, OutcomeNotSubmitted, subErr.Outcome)

		loaded, err := env.svc.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, loaded.IsEmpty())
		assert.NotEmpty(t, loaded.SubmissionID)
	})

	t.Run("retry reuses the submission ID", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")
		env.submitter.err = errors.New("persistence unavailable")

		_, err := env.svc.Finalize(ctx, "s1", finalizeOpts())
		require.Error(t, err)
		firstID := env.submitter.requests[0].SubmissionID

		env.submitter.err = nil
		recorded, err := env.svc.Finalize(ctx, "s1", finalizeOpts())
		require.NoError(t, err)

		assert.Equal(t, 2, env.submitter.calls)
		assert.Equal(t, firstID, env.submitter.requests[1].SubmissionID)
		assert.Equal(t, firstID, recorded.SubmissionID)
	})

	t.Run("deadline expiry yields an unknown outcome", func(t *testing.T) {
		env := newTestEnv()
		env.cfg.POS.ServiceCallTimeout = 50 * time.Millisecond
		readyCart(t, env, "s1")
		env.submitter.hang = true

		_, err := env.svc.Finalize(ctx, "s1", finalizeOpts())

		var subErr *SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, OutcomeUnknown, subErr.Outcome)

		// The cart survives: an unknown outcome must never clear it.
		loaded, err := env.svc.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, loaded.IsEmpty())
	})

	t.Run("cart changed mid-submission is left untouched", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")

		env.submitter.onSubmit = func() {
			concurrent, err := env.store.Get(context.Background(), "s1")
			require.NoError(t, err)
			concurrent.Notes = "changed while submitting"
			concurrent.Revision++
			require.NoError(t, env.store.Save(context.Background(), concurrent))
		}

		recorded, err := env.svc.Finalize(ctx, "s1", finalizeOpts())
		require.NoError(t, err)
		assert.NotNil(t, recorded)

		loaded, err := env.svc.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, loaded.IsEmpty())
		assert.Equal(t, "changed while submitting", loaded.Notes)
	})

	t.Run("admin policy finalizes an over-limit discount without approval", func(t *testing.T) {
		env := newTestEnv()
		readyCart(t, env, "s1")
		adminPolicy := OperatorPolicy{Role: "admin", DiscountLimitPercent: 100, RequireAuthorization: true}
		_, err := env.svc.SetGeneralDiscount(ctx, "s1", 50, true, adminPolicy)
		require.NoError(t, err)

		recorded, err := env.svc.Finalize(ctx, "s1", FinalizeOptions{OperatorID: 9, Operator: adminPolicy})
		require.NoError(t, err)
		assert.Equal(t, 15.00, recorded.GrandTotal)
	})
}

// dedupSubmitter mirrors the persistence service's idempotency: it
// records every sale it sees and returns the stored sale when a
// submission ID is replayed, even if the original response was lost.
type dedupSubmitter struct {
	recorded     map[string]*sale.Sale
	loseResponse bool
}

func (d *dedupSubmitter) SubmitSale(ctx context.Context, req *sale.SubmitRequest) (*sale.Sale, error) {
	if existing, ok := d.recorded[req.SubmissionID]; ok {
		return existing, nil
	}

	recorded := &sale.Sale{
		ID:           uint(len(d.recorded) + 1),
		SubmissionID: req.SubmissionID,
		Status:       sale.SaleStatusCompleted,
		GrandTotal:   req.GrandTotal,
	}
	d.recorded[req.SubmissionID] = recorded

	if d.loseResponse {
		d.loseResponse = false
		return nil, errors.New("response lost")
	}
	return recorded, nil
}

func TestFinalizeRetryAfterCorrection(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv()
	dedup := &dedupSubmitter{recorded: map[string]*sale.Sale{}, loseResponse: true}
	env.svc.submitter = dedup

	_, err := env.svc.AddProduct(ctx, "s1", 1, 1)
	require.NoError(t, err)
	_, err = env.svc.SetPaymentMethod(ctx, "s1", 1)
	require.NoError(t, err)
	_, err = env.svc.SetAmountTendered(ctx, "s1", 50.00)
	require.NoError(t, err)

	// The sale lands server-side but the response is lost.
	_, err = env.svc.Finalize(ctx, "s1", finalizeOpts())
	require.Error(t, err)
	require.Len(t, dedup.recorded, 1)

	// The operator corrects the cart before retrying. The corrected
	// cart must never be matched against the old submission.
	_, err = env.svc.SetQuantity(ctx, "s1", 1, 3)
	require.NoError(t, err)

	recorded, err := env.svc.Finalize(ctx, "s1", finalizeOpts())
	require.NoError(t, err)
	assert.Equal(t, 30.00, recorded.GrandTotal)
	assert.Len(t, dedup.recorded, 2)

	// The cart clears only because its actual contents were persisted.
	loaded, err := env.svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestBuildSubmitRequest(t *testing.T) {
	cart := NewCart("s1")
	cart.AddOrIncrement(riceProduct(), 3, false)
	require.NoError(t, cart.ApplyLineDiscount(1, 3.00, false))
	cart.Payment = cashPayment()
	cart.AmountTendered = 30.00
	cart.Notes = "no bag"
	cart.SubmissionID = "sub-1"
	cart.RecomputeTotals()

	req := buildSubmitRequest(cart, 4)

	assert.Equal(t, "sub-1", req.SubmissionID)
	assert.Equal(t, uint(4), req.OperatorID)
	assert.Equal(t, 30.00, req.Subtotal)
	assert.Equal(t, 3.00, req.LineDiscountSum)
	assert.Equal(t, 27.00, req.GrandTotal)
	assert.Equal(t, 3.00, req.Change)
	assert.Equal(t, "no bag", req.Notes)
	require.Len(t, req.Items, 1)
	assert.Equal(t, 3.00, req.Items[0].LineDiscount)
	assert.Equal(t, 27.00, req.Items[0].LineTotal)
}
