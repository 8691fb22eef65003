// internal/domain/pos/service_test.go
package pos

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/operator"
	"github.com/your-org/pos-backend/internal/domain/sale"
)

// fakeCatalog serves products, payment methods and customers from maps
type fakeCatalog struct {
	products  map[uint]*catalog.Product
	methods   map[uint]*catalog.PaymentMethod
	customers map[uint]*catalog.Customer
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id uint) (*catalog.Product, error) {
	if p, ok := f.products[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, fmt.Errorf("product not found")
}

func (f *fakeCatalog) GetProductByBarcode(ctx context.Context, code string) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.Barcode == code {
			clone := *p
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("product not found")
}

func (f *fakeCatalog) GetPaymentMethod(ctx context.Context, id uint) (*catalog.PaymentMethod, error) {
	if m, ok := f.methods[id]; ok {
		clone := *m
		return &clone, nil
	}
	return nil, fmt.Errorf("payment method not found")
}

func (f *fakeCatalog) GetCustomer(ctx context.Context, id uint) (*catalog.Customer, error) {
	if c, ok := f.customers[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, fmt.Errorf("customer not found")
}

// fakeSubmitter records submissions and can be told to fail or to block
// until the caller's deadline fires
type fakeSubmitter struct {
	calls    int
	requests []*sale.SubmitRequest
	err      error
	hang     bool
	onSubmit func()
}

func (f *fakeSubmitter) SubmitSale(ctx context.Context, req *sale.SubmitRequest) (*sale.Sale, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.onSubmit != nil {
		f.onSubmit()
	}
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &sale.Sale{
		ID:           uint(f.calls),
		Code:         fmt.Sprintf("SALE-20260829-%05d", f.calls),
		SubmissionID: req.SubmissionID,
		OperatorID:   req.OperatorID,
		Status:       sale.SaleStatusCompleted,
		GrandTotal:   req.GrandTotal,
		Change:       req.Change,
	}, nil
}

type fakeAuthorizer struct {
	op  *operator.Operator
	err error
}

func (f *fakeAuthorizer) Authorize(ctx context.Context, req *operator.AuthorizeRequest) (*operator.Operator, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.op, nil
}

type testEnv struct {
	svc        *Service
	store      *MemoryCartStore
	catalog    *fakeCatalog
	submitter  *fakeSubmitter
	authorizer *fakeAuthorizer
	cfg        *config.Config
}

func newTestEnv() *testEnv {
	cfg := &config.Config{
		POS: config.POSConfig{
			AllowNegativeStock:          false,
			RequireCustomer:             false,
			RequireDiscountAuth:         true,
			DefaultDiscountLimitPercent: 10,
			CriticalExpiryDays:          7,
			AlertExpiryDays:             30,
			CartTTL:                     12 * time.Hour,
			ServiceCallTimeout:          5 * time.Second,
		},
	}

	catalogFake := &fakeCatalog{
		products: map[uint]*catalog.Product{
			1: {ID: 1, Barcode: "7891000100103", Name: "Rice 5kg", SalePrice: 10.00, Quantity: 10, MinStockLevel: 2},
			2: {ID: 2, Barcode: "7891000100202", Name: "Dish Soap", SalePrice: 2.99, Quantity: 0, MinStockLevel: 5},
		},
		methods: map[uint]*catalog.PaymentMethod{
			1: {ID: 1, Code: "cash", Name: "Cash", Type: catalog.PaymentTypeCash, AllowsChange: true},
			2: {ID: 2, Code: "credit_card", Name: "Credit Card", Type: catalog.PaymentTypeCard, SurchargePercent: 2.5},
		},
		customers: map[uint]*catalog.Customer{
			7: {ID: 7, Name: "Maria Silva", Email: "maria@example.com", IsActive: true},
		},
	}

	submitter := &fakeSubmitter{}
	authorizer := &fakeAuthorizer{
		op: &operator.Operator{ID: 2, Username: "supervisor1", Role: operator.RoleSupervisor},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := NewMemoryCartStore()
	svc := NewService(store, catalogFake, submitter, authorizer, cfg, logger)

	return &testEnv{
		svc:        svc,
		store:      store,
		catalog:    catalogFake,
		submitter:  submitter,
		authorizer: authorizer,
		cfg:        cfg,
	}
}

func TestServiceNewSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cart, err := env.svc.NewSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cart.SessionID)
	assert.True(t, cart.IsEmpty())

	loaded, err := env.svc.GetCart(ctx, cart.SessionID)
	require.NoError(t, err)
	assert.Equal(t, cart.SessionID, loaded.SessionID)
}

func TestServiceScanProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	t.Run("adds the scanned product and persists the cart", func(t *testing.T) {
		result, err := env.svc.ScanProduct(ctx, "s1", "7891000100103", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Cart.QuantityOf(1))
		assert.Equal(t, 20.00, result.Cart.Totals.GrandTotal)

		loaded, err := env.svc.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.QuantityOf(1))
	})

	t.Run("unknown barcode fails", func(t *testing.T) {
		_, err := env.svc.ScanProduct(ctx, "s1", "0000000000000", 1)
		assert.Error(t, err)
	})
}

func TestServiceAddProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	t.Run("out of stock addition is blocked and the cart untouched", func(t *testing.T) {
		_, err := env.svc.AddProduct(ctx, "s1", 2, 1)

		var blocked *BlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, BlockOutOfStock, blocked.Reason)

		loaded, err := env.svc.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, loaded.IsEmpty())
	})

	t.Run("surfaces advisories without blocking", func(t *testing.T) {
		// Draining rice to its minimum stock level raises a low stock
		// advisory but the addition still succeeds.
		result, err := env.svc.AddProduct(ctx, "s2", 1, 8)
		require.NoError(t, err)
		require.Len(t, result.Advisories, 1)
		assert.Equal(t, AdvisoryLowStock, result.Advisories[0].Code)
	})
}

func TestServiceSetQuantity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.AddProduct(ctx, "s1", 1, 2)
	require.NoError(t, err)

	t.Run("grows the line after a stock check", func(t *testing.T) {
		result, err := env.svc.SetQuantity(ctx, "s1", 1, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, result.Cart.QuantityOf(1))
	})

	t.Run("blocks growth past available stock", func(t *testing.T) {
		_, err := env.svc.SetQuantity(ctx, "s1", 1, 50)

		var blocked *BlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, BlockInsufficientStock, blocked.Reason)
	})

	t.Run("zero removes the line without a catalog lookup", func(t *testing.T) {
		result, err := env.svc.SetQuantity(ctx, "s1", 1, 0)
		require.NoError(t, err)
		assert.True(t, result.Cart.IsEmpty())
	})

	t.Run("unknown line fails", func(t *testing.T) {
		_, err := env.svc.SetQuantity(ctx, "s1", 99, 1)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestServiceDiscountAuthorizationFlow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	policy := OperatorPolicy{Role: "cashier", DiscountLimitPercent: 10, RequireAuthorization: true}

	_, err := env.svc.AddProduct(ctx, "s1", 1, 3)
	require.NoError(t, err)

	t.Run("over-limit discount goes pending", func(t *testing.T) {
		cart, err := env.svc.SetGeneralDiscount(ctx, "s1", 15, true, policy)
		require.NoError(t, err)
		assert.Equal(t, AuthStatePendingApproval, cart.AuthState)
	})

	t.Run("supervisor credentials approve the discount", func(t *testing.T) {
		cart, err := env.svc.ApproveDiscount(ctx, "s1", "supervisor1", "secret")
		require.NoError(t, err)
		assert.Equal(t, AuthStateApproved, cart.AuthState)
		assert.Equal(t, "supervisor1", cart.ApprovedBy)
	})

	t.Run("approving again fails once nothing is pending", func(t *testing.T) {
		_, err := env.svc.ApproveDiscount(ctx, "s1", "supervisor1", "secret")
		assert.ErrorIs(t, err, ErrNotPendingApproval)
	})

	t.Run("rejected credentials propagate", func(t *testing.T) {
		_, err := env.svc.SetGeneralDiscount(ctx, "s1", 25, true, policy)
		require.NoError(t, err)

		env.authorizer.err = operator.ErrBadCredentials
		_, err = env.svc.ApproveDiscount(ctx, "s1", "supervisor1", "wrong")
		assert.ErrorIs(t, err, operator.ErrBadCredentials)
		env.authorizer.err = nil
	})

	t.Run("cancelling clears the discount and the pending state", func(t *testing.T) {
		cart, err := env.svc.CancelAuthorization(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, AuthStateNone, cart.AuthState)
		assert.Equal(t, 0.0, cart.GeneralDiscount)
		assert.Equal(t, 30.00, cart.Totals.GrandTotal)
	})
}

func TestServiceCartSetters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.AddProduct(ctx, "s1", 1, 1)
	require.NoError(t, err)

	t.Run("attaches a known customer", func(t *testing.T) {
		customerID := uint(7)
		cart, err := env.svc.SetCustomer(ctx, "s1", &customerID)
		require.NoError(t, err)
		require.NotNil(t, cart.CustomerID)
		assert.Equal(t, uint(7), *cart.CustomerID)
	})

	t.Run("rejects an unknown customer", func(t *testing.T) {
		customerID := uint(99)
		_, err := env.svc.SetCustomer(ctx, "s1", &customerID)
		assert.Error(t, err)
	})

	t.Run("detaches the customer", func(t *testing.T) {
		cart, err := env.svc.SetCustomer(ctx, "s1", nil)
		require.NoError(t, err)
		assert.Nil(t, cart.CustomerID)
	})

	t.Run("snapshots the payment method onto the cart", func(t *testing.T) {
		cart, err := env.svc.SetPaymentMethod(ctx, "s1", 2)
		require.NoError(t, err)
		require.NotNil(t, cart.Payment)
		assert.Equal(t, "credit_card", cart.Payment.Code)
		assert.Equal(t, 2.5, cart.Payment.SurchargePercent)
		assert.False(t, cart.Payment.AllowsChange)
	})

	t.Run("records the tendered amount", func(t *testing.T) {
		cart, err := env.svc.SetAmountTendered(ctx, "s1", 50.00)
		require.NoError(t, err)
		assert.Equal(t, 50.00, cart.AmountTendered)
	})

	t.Run("negative tendered amounts clamp to zero", func(t *testing.T) {
		cart, err := env.svc.SetAmountTendered(ctx, "s1", -5)
		require.NoError(t, err)
		assert.Equal(t, 0.0, cart.AmountTendered)
	})

	t.Run("stores notes", func(t *testing.T) {
		cart, err := env.svc.SetNotes(ctx, "s1", "deliver to the counter")
		require.NoError(t, err)
		assert.Equal(t, "deliver to the counter", cart.Notes)
	})

	t.Run("clear abandons the sale", func(t *testing.T) {
		cart, err := env.svc.ClearCart(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		assert.Nil(t, cart.Payment)
	})
}
