// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/money"
	"gorm.io/gorm"
)

// Service handles catalog and stock lookups for the register
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// barcodeCacheTTL bounds how long a barcode lookup may be served from
// cache; price and stock edits must become visible quickly.
const barcodeCacheTTL = 30 * time.Second

// ValidationResult reports whether a product may be sold in the
// requested quantity, with the product snapshot for the cart.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Product *Product `json:"product,omitempty"`
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Barcode       string  `json:"barcode" binding:"required"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	SalePrice     float64 `json:"sale_price" binding:"required,gt=0"`
	CostPrice     float64 `json:"cost_price"`
	Quantity      int     `json:"quantity"`
	MinStockLevel int     `json:"min_stock_level"`
	ExpiryDate    string  `json:"expiry_date,omitempty"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	SalePrice     *float64 `json:"sale_price,omitempty"`
	CostPrice     *float64 `json:"cost_price,omitempty"`
	Quantity      *int     `json:"quantity,omitempty"`
	MinStockLevel *int     `json:"min_stock_level,omitempty"`
	ExpiryDate    *string  `json:"expiry_date,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// SearchProducts searches active products by name, barcode or SKU
func (s *Service) SearchProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var products []Product
	pattern := "%" + strings.TrimSpace(query) + "%"
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("name ILIKE ? OR barcode ILIKE ? OR sku ILIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return products, nil
}

// GetProduct retrieves a single active product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetProductByBarcode retrieves a product by barcode, serving recent
// lookups from Redis to keep scan latency low
func (s *Service) GetProductByBarcode(ctx context.Context, code string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("barcode is required")
	}

	cacheKey := fmt.Sprintf("catalog:barcode:%s", code)
	if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		var product Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			return &product, nil
		}
	}

	var product Product
	err := s.db.WithContext(ctx).Where("barcode = ? AND is_active = ?", code, true).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if data, err := json.Marshal(&product); err == nil {
		s.redisClient.Set(ctx, cacheKey, data, barcodeCacheTTL)
	}

	return &product, nil
}

// ValidateProduct checks whether a product can be sold in the requested
// quantity and returns the product snapshot either way
func (s *Service) ValidateProduct(ctx context.Context, productID uint, quantity int) (*ValidationResult, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		return &ValidationResult{Valid: false, Reason: "quantity must be positive", Product: product}, nil
	}

	if product.IsExpired(time.Now()) {
		return &ValidationResult{Valid: false, Reason: "product is expired", Product: product}, nil
	}

	if !s.config.POS.AllowNegativeStock && product.Quantity < quantity {
		return &ValidationResult{
			Valid:   false,
			Reason:  fmt.Sprintf("insufficient stock: available %d, requested %d", product.Quantity, quantity),
			Product: product,
		}, nil
	}

	return &ValidationResult{Valid: true, Product: product}, nil
}

// CreateProduct creates a new catalog product
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	var existing Product
	if err := s.db.WithContext(ctx).Where("barcode = ?", req.Barcode).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with barcode '%s' already exists", req.Barcode)
	}

	expiry, err := parseExpiryDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	product := &Product{
		Barcode:       strings.TrimSpace(req.Barcode),
		SKU:           strings.TrimSpace(req.SKU),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		SalePrice:     money.Round(req.SalePrice),
		CostPrice:     money.Round(req.CostPrice),
		Quantity:      req.Quantity,
		MinStockLevel: req.MinStockLevel,
		ExpiryDate:    expiry,
		IsActive:      true,
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct updates an existing product and invalidates its cache entry
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest) (*Product, error) {
	var product Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.SalePrice != nil {
		if *req.SalePrice <= 0 {
			return nil, fmt.Errorf("sale price must be positive")
		}
		product.SalePrice = money.Round(*req.SalePrice)
	}
	if req.CostPrice != nil {
		product.CostPrice = money.Round(*req.CostPrice)
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.ExpiryDate != nil {
		expiry, err := parseExpiryDate(*req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		product.ExpiryDate = expiry
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.redisClient.Del(ctx, fmt.Sprintf("catalog:barcode:%s", product.Barcode))

	return &product, nil
}

// GetPaymentMethods retrieves the active payment methods in display order
func (s *Service) GetPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment methods: %w", err)
	}
	return methods, nil
}

// GetPaymentMethod retrieves a single active payment method
func (s *Service) GetPaymentMethod(ctx context.Context, id uint) (*PaymentMethod, error) {
	var method PaymentMethod
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&method).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment method not found")
		}
		return nil, fmt.Errorf("failed to retrieve payment method: %w", err)
	}
	return &method, nil
}

// GetCustomer retrieves a single active customer
func (s *Service) GetCustomer(ctx context.Context, id uint) (*Customer, error) {
	var customer Customer
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&customer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("customer not found")
		}
		return nil, fmt.Errorf("failed to retrieve customer: %w", err)
	}
	return &customer, nil
}

// SearchCustomers searches active customers by name or document
func (s *Service) SearchCustomers(ctx context.Context, query string, limit int) ([]Customer, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var customers []Customer
	pattern := "%" + strings.TrimSpace(query) + "%"
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("name ILIKE ? OR document ILIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	return customers, nil
}

// expiryDateFormats lists the accepted input formats. Dates are
// normalized to the canonical 2006-01-02 form at this boundary so the
// rest of the engine never infers formats per call site.
var expiryDateFormats = []string{"2006-01-02", "02/01/2006"}

func parseExpiryDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	for _, layout := range expiryDateFormats {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			d := DateOnly(t)
			return &d, nil
		}
	}

	return nil, fmt.Errorf("invalid expiry date '%s': expected format 2006-01-02", value)
}
