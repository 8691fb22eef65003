// internal/domain/pos/service.go
package pos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/operator"
	"github.com/your-org/pos-backend/internal/domain/sale"
)

// CatalogLookup is the catalog/stock boundary the engine consumes
type CatalogLookup interface {
	GetProduct(ctx context.Context, id uint) (*catalog.Product, error)
	GetProductByBarcode(ctx context.Context, code string) (*catalog.Product, error)
	GetPaymentMethod(ctx context.Context, id uint) (*catalog.PaymentMethod, error)
	GetCustomer(ctx context.Context, id uint) (*catalog.Customer, error)
}

// SaleSubmitter is the sale-persistence boundary
type SaleSubmitter interface {
	SubmitSale(ctx context.Context, req *sale.SubmitRequest) (*sale.Sale, error)
}

// ManagerAuthorizer validates elevated credentials for overrides
type ManagerAuthorizer interface {
	Authorize(ctx context.Context, req *operator.AuthorizeRequest) (*operator.Operator, error)
}

// Service composes scan and discount events into a consistent,
// policy-compliant sale. All cart mutations flow through here so totals
// and authorization state are re-derived synchronously on every change.
type Service struct {
	carts      CartStore
	catalog    CatalogLookup
	submitter  SaleSubmitter
	authorizer ManagerAuthorizer
	config     *config.Config
	logger     *logrus.Logger
}

// NewService creates a new sale composition service
func NewService(carts CartStore, catalogSvc CatalogLookup, submitter SaleSubmitter, authorizer ManagerAuthorizer, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		carts:      carts,
		catalog:    catalogSvc,
		submitter:  submitter,
		authorizer: authorizer,
		config:     cfg,
		logger:     logger,
	}
}

// MutationResult is returned by every cart mutation: the updated cart
// plus any advisories the stock/expiry validator raised.
type MutationResult struct {
	Cart       *Cart      `json:"cart"`
	Advisories []Advisory `json:"advisories,omitempty"`
}

// NewSession opens a new register session with an empty cart
func (s *Service) NewSession(ctx context.Context) (*Cart, error) {
	cart := NewCart(uuid.New().String())
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the current cart for a session
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	return s.carts.Get(ctx, sessionID)
}

// stockPolicy builds the validator policy from store configuration
func (s *Service) stockPolicy() StockPolicy {
	return StockPolicy{
		AllowNegativeStock: s.config.POS.AllowNegativeStock,
		CriticalExpiryDays: s.config.POS.CriticalExpiryDays,
		AlertExpiryDays:    s.config.POS.AlertExpiryDays,
	}
}

// ScanProduct looks a product up by barcode and adds it to the cart
func (s *Service) ScanProduct(ctx context.Context, sessionID, barcode string, qty int) (*MutationResult, error) {
	product, err := s.catalog.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	return s.addProduct(ctx, sessionID, product, qty)
}

// AddProduct adds a product to the cart by ID
func (s *Service) AddProduct(ctx context.Context, sessionID string, productID uint, qty int) (*MutationResult, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.addProduct(ctx, sessionID, product, qty)
}

func (s *Service) addProduct(ctx context.Context, sessionID string, product *catalog.Product, qty int) (*MutationResult, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	outcome := CheckAddition(product, cart.QuantityOf(product.ID), qty, s.stockPolicy(), time.Now())
	if err := outcome.BlockedErr(); err != nil {
		return nil, err
	}

	cart.AddOrIncrement(product, qty, s.config.POS.AllowNegativeStock)
	cart.RecomputeTotals()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	return &MutationResult{Cart: cart, Advisories: outcome.Advisories}, nil
}

// SetQuantity changes a line's quantity; zero removes the line
func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID uint, qty int) (*MutationResult, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line := cart.FindLine(productID)
	if line == nil {
		return nil, ErrLineNotFound
	}

	var advisories []Advisory
	availableStock := 0
	if qty > 0 {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		availableStock = product.Quantity

		if increment := qty - line.Quantity; increment > 0 {
			outcome := CheckAddition(product, line.Quantity, increment, s.stockPolicy(), time.Now())
			if err := outcome.BlockedErr(); err != nil {
				return nil, err
			}
			advisories = outcome.Advisories
		}
	}

	if err := cart.SetQuantity(productID, qty, availableStock, s.config.POS.AllowNegativeStock); err != nil {
		return nil, err
	}
	cart.RecomputeTotals()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	return &MutationResult{Cart: cart, Advisories: advisories}, nil
}

// RemoveLine removes a product line unconditionally
func (s *Service) RemoveLine(ctx context.Context, sessionID string, productID uint) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		return cart.Remove(productID)
	})
}

// ApplyLineDiscount applies a per-line discount, converting percentages
// to absolute amounts against the line's gross value
func (s *Service) ApplyLineDiscount(ctx context.Context, sessionID string, productID uint, amount float64, isPercentage bool) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		return cart.ApplyLineDiscount(productID, amount, isPercentage)
	})
}

// SetGeneralDiscount changes the whole-sale discount and re-runs the
// authorization state machine with the operator's explicit policy
func (s *Service) SetGeneralDiscount(ctx context.Context, sessionID string, amount float64, isPercentage bool, op OperatorPolicy) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		cart.SetGeneralDiscount(amount, isPercentage)
		cart.RecomputeTotals()
		EvaluateDiscountAuth(cart, op)
		return nil
	})
}

// ApproveDiscount validates supervisor credentials against the manager
// authorization service and, on success, approves the pending discount
func (s *Service) ApproveDiscount(ctx context.Context, sessionID, username, password string) (*Cart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if cart.AuthState != AuthStatePendingApproval {
		return nil, ErrNotPendingApproval
	}

	authCtx, cancel := context.WithTimeout(ctx, s.config.POS.ServiceCallTimeout)
	defer cancel()

	approver, err := s.authorizer.Authorize(authCtx, &operator.AuthorizeRequest{
		Username: username,
		Password: password,
		Action:   "discount_override",
	})
	if err != nil {
		return nil, err
	}

	if err := ApproveDiscount(cart, approver.Username); err != nil {
		return nil, err
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":  sessionID,
		"approved_by": approver.Username,
		"discount":    cart.Totals.GeneralDiscount,
	}).Info("Over-limit discount approved")

	return cart, nil
}

// CancelAuthorization abandons a pending approval, clearing the
// discount that required it
func (s *Service) CancelAuthorization(ctx context.Context, sessionID string) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		CancelDiscountAuth(cart)
		return nil
	})
}

// SetCustomer attaches or detaches a customer
func (s *Service) SetCustomer(ctx context.Context, sessionID string, customerID *uint) (*Cart, error) {
	if customerID != nil {
		if _, err := s.catalog.GetCustomer(ctx, *customerID); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		cart.CustomerID = customerID
		cart.touch()
		return nil
	})
}

// SetPaymentMethod selects a payment method, snapshotting its surcharge
// and change behavior onto the cart
func (s *Service) SetPaymentMethod(ctx context.Context, sessionID string, paymentMethodID uint) (*Cart, error) {
	method, err := s.catalog.GetPaymentMethod(ctx, paymentMethodID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		cart.Payment = &PaymentSelection{
			ID:               method.ID,
			Code:             method.Code,
			Name:             method.Name,
			Type:             method.Type,
			SurchargePercent: method.SurchargePercent,
			AllowsChange:     method.AllowsChange,
		}
		cart.touch()
		return nil
	})
}

// SetAmountTendered records the cash handed over by the customer
func (s *Service) SetAmountTendered(ctx context.Context, sessionID string, amount float64) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		if amount < 0 {
			amount = 0
		}
		cart.AmountTendered = amount
		cart.touch()
		return nil
	})
}

// SetNotes replaces the free-text sale notes
func (s *Service) SetNotes(ctx context.Context, sessionID, notes string) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		cart.Notes = notes
		cart.touch()
		return nil
	})
}

// ClearCart abandons the in-progress sale
func (s *Service) ClearCart(ctx context.Context, sessionID string) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) error {
		cart.Clear()
		return nil
	})
}

// mutate runs a cart mutation, recomputes totals, and persists. Totals
// are never left stale after a mutation.
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(cart *Cart) error) (*Cart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := fn(cart); err != nil {
		return nil, err
	}

	cart.RecomputeTotals()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// ensure interface satisfaction at compile time
var (
	_ CatalogLookup     = (*catalog.Service)(nil)
	_ SaleSubmitter     = (*sale.Service)(nil)
	_ ManagerAuthorizer = (*operator.Service)(nil)
)
