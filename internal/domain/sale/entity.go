// internal/domain/sale/entity.go
package sale

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SaleStatus represents the sale lifecycle status
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusVoided    SaleStatus = "voided"
)

// Sale is the durable record of a finalized transaction. It is a
// frozen snapshot of the cart at completion time; later catalog edits
// never change it.
type Sale struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Code         string     `gorm:"uniqueIndex;not null;size:50" json:"code"`
	SubmissionID string     `gorm:"uniqueIndex;not null;size:64" json:"submission_id"`
	OperatorID   uint       `gorm:"not null;index" json:"operator_id"`
	CustomerID   *uint      `gorm:"index" json:"customer_id,omitempty"`
	Status       SaleStatus `gorm:"not null;default:'completed'" json:"status"`

	// Financial snapshot
	Subtotal        float64 `gorm:"not null" json:"subtotal"`
	LineDiscountSum float64 `gorm:"default:0" json:"line_discount_sum"`
	GeneralDiscount float64 `gorm:"default:0" json:"general_discount"`
	TotalDiscount   float64 `gorm:"default:0" json:"total_discount"`
	GrandTotal      float64 `gorm:"not null" json:"grand_total"`
	Surcharge       float64 `gorm:"default:0" json:"surcharge"`
	AmountTendered  float64 `gorm:"default:0" json:"amount_tendered"`
	Change          float64 `gorm:"default:0" json:"change"`

	// Payment snapshot
	PaymentMethodID   uint   `gorm:"not null" json:"payment_method_id"`
	PaymentMethodCode string `gorm:"size:50" json:"payment_method_code"`

	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// SaleItem represents one line of a finalized sale
type SaleItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SaleID       uint      `gorm:"not null;index" json:"sale_id"`
	ProductID    uint      `gorm:"not null;index" json:"product_id"`
	Barcode      string    `gorm:"size:64" json:"barcode"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	UnitPrice    float64   `gorm:"not null" json:"unit_price"`
	LineDiscount float64   `gorm:"default:0" json:"line_discount"`
	LineTotal    float64   `gorm:"not null" json:"line_total"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockMovement records the stock decrement a sale caused, for audit
type StockMovement struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	SaleID           uint      `gorm:"not null;index" json:"sale_id"`
	Quantity         int       `gorm:"not null" json:"quantity"`
	PreviousQuantity int       `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int       `gorm:"not null" json:"new_quantity"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName overrides
func (Sale) TableName() string          { return "sales" }
func (SaleItem) TableName() string      { return "sale_items" }
func (StockMovement) TableName() string { return "stock_movements" }

// GenerateCode generates the human-readable sale code.
// Format: SALE-YYYYMMDD-XXXXX
func (s *Sale) GenerateCode() string {
	return fmt.Sprintf("SALE-%s-%05d", time.Now().Format("20060102"), s.ID)
}

// CanBeVoided checks if the sale can still be voided
func (s *Sale) CanBeVoided() bool {
	return s.Status == SaleStatusCompleted
}
