// internal/domain/sale/service.go
package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Service handles durable sale persistence
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new sale service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// SubmitItem is one frozen line of a submission payload
type SubmitItem struct {
	ProductID    uint    `json:"product_id"`
	Barcode      string  `json:"barcode"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	LineDiscount float64 `json:"line_discount"`
	LineTotal    float64 `json:"line_total"`
}

// SubmitRequest is the transaction payload assembled by the finalizer
type SubmitRequest struct {
	SubmissionID      string       `json:"submission_id"`
	OperatorID        uint         `json:"operator_id"`
	CustomerID        *uint        `json:"customer_id,omitempty"`
	Items             []SubmitItem `json:"items"`
	Subtotal          float64      `json:"subtotal"`
	LineDiscountSum   float64      `json:"line_discount_sum"`
	GeneralDiscount   float64      `json:"general_discount"`
	TotalDiscount     float64      `json:"total_discount"`
	GrandTotal        float64      `json:"grand_total"`
	Surcharge         float64      `json:"surcharge"`
	PaymentMethodID   uint         `json:"payment_method_id"`
	PaymentMethodCode string       `json:"payment_method_code"`
	AmountTendered    float64      `json:"amount_tendered"`
	Change            float64      `json:"change"`
	Notes             string       `json:"notes"`
}

// SaleListRequest represents sale list query parameters
type SaleListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	OperatorID uint   `form:"operator_id"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
}

// SaleListResponse represents sales with pagination
type SaleListResponse struct {
	Sales      []Sale     `json:"sales"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// SubmitSale durably records a finalized transaction and returns the
// canonical receipt record. Submission is idempotent per submission ID:
// a retry after an unknown outcome returns the already-recorded sale
// instead of creating a duplicate.
func (s *Service) SubmitSale(ctx context.Context, req *SubmitRequest) (*Sale, error) {
	if req.SubmissionID == "" {
		return nil, fmt.Errorf("submission ID is required")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("sale has no items")
	}

	// Duplicate submit: return the original.
	var existing Sale
	err := s.db.WithContext(ctx).Preload("Items").Where("submission_id = ?", req.SubmissionID).First(&existing).Error
	if err == nil {
		s.logger.WithFields(logrus.Fields{
			"submission_id": req.SubmissionID,
			"sale_code":     existing.Code,
		}).Warn("Duplicate sale submission, returning existing sale")
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check submission: %w", err)
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	newSale := Sale{
		SubmissionID:      req.SubmissionID,
		OperatorID:        req.OperatorID,
		CustomerID:        req.CustomerID,
		Status:            SaleStatusCompleted,
		Subtotal:          req.Subtotal,
		LineDiscountSum:   req.LineDiscountSum,
		GeneralDiscount:   req.GeneralDiscount,
		TotalDiscount:     req.TotalDiscount,
		GrandTotal:        req.GrandTotal,
		Surcharge:         req.Surcharge,
		AmountTendered:    req.AmountTendered,
		Change:            req.Change,
		PaymentMethodID:   req.PaymentMethodID,
		PaymentMethodCode: req.PaymentMethodCode,
		Notes:             req.Notes,
	}

	if err := tx.Create(&newSale).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	newSale.Code = newSale.GenerateCode()
	if err := tx.Model(&newSale).Update("code", newSale.Code).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to assign sale code: %w", err)
	}

	for _, item := range req.Items {
		saleItem := SaleItem{
			SaleID:       newSale.ID,
			ProductID:    item.ProductID,
			Barcode:      item.Barcode,
			Name:         item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineDiscount: item.LineDiscount,
			LineTotal:    item.LineTotal,
		}
		if err := tx.Create(&saleItem).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create sale item: %w", err)
		}

		if err := s.decrementStock(tx, newSale.ID, item.ProductID, item.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("Items").First(&newSale, newSale.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load complete sale: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"sale_code":   newSale.Code,
		"operator_id": newSale.OperatorID,
		"grand_total": newSale.GrandTotal,
		"items":       len(newSale.Items),
	}).Info("Sale recorded")

	return &newSale, nil
}

// GetSale retrieves a single sale by ID
func (s *Service) GetSale(ctx context.Context, id uint) (*Sale, error) {
	var recorded Sale
	err := s.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&recorded).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("sale not found")
		}
		return nil, fmt.Errorf("failed to retrieve sale: %w", err)
	}
	return &recorded, nil
}

// GetSaleByCode retrieves a single sale by its human-readable code
func (s *Service) GetSaleByCode(ctx context.Context, code string) (*Sale, error) {
	var recorded Sale
	err := s.db.WithContext(ctx).Preload("Items").Where("code = ?", code).First(&recorded).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("sale not found")
		}
		return nil, fmt.Errorf("failed to retrieve sale: %w", err)
	}
	return &recorded, nil
}

// GetSales retrieves sales with filtering and pagination
func (s *Service) GetSales(ctx context.Context, req *SaleListRequest) (*SaleListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	var sales []Sale
	var total int64

	query := s.db.WithContext(ctx).Model(&Sale{}).Preload("Items")

	if req.OperatorID > 0 {
		query = query.Where("operator_id = ?", req.OperatorID)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &SaleListResponse{
		Sales: sales,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// VoidSale marks a completed sale as voided and restores its stock
func (s *Service) VoidSale(ctx context.Context, id uint, operatorID uint) (*Sale, error) {
	recorded, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	if !recorded.CanBeVoided() {
		return nil, fmt.Errorf("sale %s cannot be voided", recorded.Code)
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&Sale{}).Where("id = ?", id).Update("status", SaleStatusVoided).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to void sale: %w", err)
	}

	for _, item := range recorded.Items {
		if err := tx.Model(&catalog.Product{}).Where("id = ?", item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit void transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"sale_code":   recorded.Code,
		"operator_id": operatorID,
	}).Info("Sale voided")

	recorded.Status = SaleStatusVoided
	return recorded, nil
}

func (s *Service) decrementStock(tx *gorm.DB, saleID, productID uint, quantity int) error {
	var product catalog.Product
	if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
		return fmt.Errorf("product %d not found for stock decrement: %w", productID, err)
	}

	previous := product.Quantity
	newQuantity := previous - quantity

	if newQuantity < 0 && !s.config.POS.AllowNegativeStock {
		return fmt.Errorf("insufficient stock for product %s: available %d, requested %d", product.Name, previous, quantity)
	}

	if err := tx.Model(&catalog.Product{}).Where("id = ?", productID).
		Update("quantity", newQuantity).Error; err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	movement := StockMovement{
		ProductID:        productID,
		SaleID:           saleID,
		Quantity:         quantity,
		PreviousQuantity: previous,
		NewQuantity:      newQuantity,
		CreatedAt:        time.Now().UTC(),
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	return nil
}
