// internal/interfaces/http/handlers/pos.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/operator"
	"github.com/your-org/pos-backend/internal/domain/pos"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// POSHandler handles register session endpoints
type POSHandler struct {
	posService      *pos.Service
	operatorService *operator.Service
	config          *config.Config
}

// NewPOSHandler creates a new POS handler
func NewPOSHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) *POSHandler {
	catalogService := catalog.NewService(db, redisClient, cfg)
	saleService := sale.NewService(db, cfg, logger)
	operatorService := operator.NewService(db, cfg, logger)
	carts := pos.NewRedisCartStore(redisClient, cfg.POS.CartTTL)

	return &POSHandler{
		posService:      pos.NewService(carts, catalogService, saleService, operatorService, cfg, logger),
		operatorService: operatorService,
		config:          cfg,
	}
}

// NewSession handles POST /pos/sessions
func (h *POSHandler) NewSession(c *gin.Context) {
	cart, err := h.posService.NewSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create register session",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Register session created",
		"data":    cart,
	})
}

// GetCart handles GET /pos/sessions/:session_id/cart
func (h *POSHandler) GetCart(c *gin.Context) {
	cart, err := h.posService.GetCart(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cart,
	})
}

// ScanProduct handles POST /pos/sessions/:session_id/scan
func (h *POSHandler) ScanProduct(c *gin.Context) {
	var req struct {
		Barcode  string `json:"barcode" binding:"required"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.posService.ScanProduct(c.Request.Context(), c.Param("session_id"), req.Barcode, req.Quantity)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to cart",
		"data":    result,
	})
}

// AddProduct handles POST /pos/sessions/:session_id/items
func (h *POSHandler) AddProduct(c *gin.Context) {
	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.posService.AddProduct(c.Request.Context(), c.Param("session_id"), req.ProductID, req.Quantity)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to cart",
		"data":    result,
	})
}

// SetQuantity handles PUT /pos/sessions/:session_id/items/:product_id
func (h *POSHandler) SetQuantity(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.posService.SetQuantity(c.Request.Context(), c.Param("session_id"), uint(productID), req.Quantity)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quantity updated",
		"data":    result,
	})
}

// RemoveLine handles DELETE /pos/sessions/:session_id/items/:product_id
func (h *POSHandler) RemoveLine(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	cart, err := h.posService.RemoveLine(c.Request.Context(), c.Param("session_id"), uint(productID))
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    cart,
	})
}

// ApplyLineDiscount handles PUT /pos/sessions/:session_id/items/:product_id/discount
func (h *POSHandler) ApplyLineDiscount(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req struct {
		Amount       float64 `json:"amount"`
		IsPercentage bool    `json:"is_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cart, err := h.posService.ApplyLineDiscount(c.Request.Context(), c.Param("session_id"), uint(productID), req.Amount, req.IsPercentage)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Line discount applied",
		"data":    cart,
	})
}

// SetGeneralDiscount handles PUT /pos/sessions/:session_id/discount
func (h *POSHandler) SetGeneralDiscount(c *gin.Context) {
	var req struct {
		Amount       float64 `json:"amount"`
		IsPercentage bool    `json:"is_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	policy, err := h.operatorPolicy(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": err.Error(),
		})
		return
	}

	cart, err := h.posService.SetGeneralDiscount(c.Request.Context(), c.Param("session_id"), req.Amount, req.IsPercentage, policy)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount applied",
		"data":    cart,
	})
}

// ApproveDiscount handles POST /pos/sessions/:session_id/discount/approve
func (h *POSHandler) ApproveDiscount(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cart, err := h.posService.ApproveDiscount(c.Request.Context(), c.Param("session_id"), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, operator.ErrBadCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, operator.ErrInsufficientPrivilege):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.respondCartError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount approved",
		"data":    cart,
	})
}

// CancelAuthorization handles POST /pos/sessions/:session_id/discount/cancel
func (h *POSHandler) CancelAuthorization(c *gin.Context) {
	cart, err := h.posService.CancelAuthorization(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount authorization cancelled",
		"data":    cart,
	})
}

// SetCustomer handles PUT /pos/sessions/:session_id/customer
func (h *POSHandler) SetCustomer(c *gin.Context) {
	var req struct {
		CustomerID *uint `json:"customer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cart, err := h.posService.SetCustomer(c.Request.Context(), c.Param("session_id"), req.CustomerID)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer updated",
		"data":    cart,
	})
}

// SetPaymentMethod handles PUT /pos/sessions/:session_id/payment-method
func (h *POSHandler) SetPaymentMethod(c *gin.Context) {
	var req struct {
		PaymentMethodID uint `json:"payment_method_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cart, err := h.posService.SetPaymentMethod(c.Request.Context(), c.Param("session_id"), req.PaymentMethodID)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment method selected",
		"data":    cart,
	})
}

// SetAmountTendered handles PUT /pos/sessions/:session_id/tendered
func (h *POSHandler) SetAmountTendered(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cart, err := h.posService.SetAmountTendered(c.Request.Context(), c.Param("session_id"), req.Amount)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tendered amount updated",
		"data":    cart,
	})
}

// SetNotes handles PUT /pos/sessions/:session_id/notes
func (h *POSHandler) SetNotes(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cart, err := h.posService.SetNotes(c.Request.Context(), c.Param("session_id"), req.Notes)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notes updated",
		"data":    cart,
	})
}

// ClearCart handles DELETE /pos/sessions/:session_id/cart
func (h *POSHandler) ClearCart(c *gin.Context) {
	cart, err := h.posService.ClearCart(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
		"data":    cart,
	})
}

// Finalize handles POST /pos/sessions/:session_id/finalize
func (h *POSHandler) Finalize(c *gin.Context) {
	operatorID, exists := middleware.GetOperatorIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Operator not authenticated",
		})
		return
	}

	policy, err := h.operatorPolicy(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": err.Error(),
		})
		return
	}

	recorded, err := h.posService.Finalize(c.Request.Context(), c.Param("session_id"), pos.FinalizeOptions{
		OperatorID: operatorID,
		Operator:   policy,
	})
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale completed successfully",
		"data":    recorded,
	})
}

// operatorPolicy builds the discount policy for the authenticated operator
func (h *POSHandler) operatorPolicy(c *gin.Context) (pos.OperatorPolicy, error) {
	operatorID, exists := middleware.GetOperatorIDFromContext(c)
	if !exists {
		return pos.OperatorPolicy{}, errors.New("operator not authenticated")
	}

	op, err := h.operatorService.GetOperator(c.Request.Context(), operatorID)
	if err != nil {
		return pos.OperatorPolicy{}, err
	}

	return pos.OperatorPolicy{
		Role:                 string(op.Role),
		DiscountLimitPercent: h.operatorService.DiscountLimitFor(op),
		RequireAuthorization: h.config.POS.RequireDiscountAuth,
	}, nil
}

// respondCartError maps domain errors to HTTP responses
func (h *POSHandler) respondCartError(c *gin.Context, err error) {
	var blocked *pos.BlockedError
	var tender *pos.InsufficientTenderError
	var submission *pos.SubmissionError

	switch {
	case errors.Is(err, pos.ErrAuthorizationPending):
		c.JSON(http.StatusConflict, gin.H{
			"error":  err.Error(),
			"status": "pending_approval",
		})
	case errors.As(err, &blocked):
		c.JSON(http.StatusConflict, gin.H{
			"error":           blocked.Error(),
			"reason":          blocked.Reason,
			"remaining_stock": blocked.RemainingStock,
		})
	case errors.As(err, &tender):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     tender.Error(),
			"shortfall": tender.Shortfall,
		})
	case errors.As(err, &submission):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   submission.Error(),
			"outcome": submission.Outcome,
		})
	case errors.Is(err, pos.ErrLineNotFound), errors.Is(err, pos.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, pos.ErrEmptyCart),
		errors.Is(err, pos.ErrCustomerRequired),
		errors.Is(err, pos.ErrNoPaymentMethod),
		errors.Is(err, pos.ErrNotPendingApproval):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	}
}
