// internal/domain/catalog/entity.go
package catalog

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable product in the catalog
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Barcode       string         `gorm:"uniqueIndex;not null;size:64" json:"barcode"`
	SKU           string         `gorm:"index;size:100" json:"sku"`
	Name          string         `gorm:"not null;size:255" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	SalePrice     float64        `gorm:"not null" json:"sale_price"`
	CostPrice     float64        `gorm:"default:0" json:"cost_price"`
	Quantity      int            `gorm:"default:0" json:"quantity"`
	MinStockLevel int            `gorm:"default:5" json:"min_stock_level"`
	ExpiryDate    *time.Time     `gorm:"type:date" json:"expiry_date,omitempty"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// PaymentMethodType classifies how a payment method settles
type PaymentMethodType string

const (
	PaymentTypeCash    PaymentMethodType = "cash"
	PaymentTypeCard    PaymentMethodType = "card"
	PaymentTypeVoucher PaymentMethodType = "voucher"
	PaymentTypePix     PaymentMethodType = "pix"
)

// PaymentMethod represents a payment option available at the register
type PaymentMethod struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"not null;size:100" json:"name"`
	Code             string            `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Type             PaymentMethodType `gorm:"not null;size:20" json:"type"`
	SurchargePercent float64           `gorm:"default:0" json:"surcharge_percent"`
	AllowsChange     bool              `gorm:"default:false" json:"allows_change"`
	IsActive         bool              `gorm:"default:true" json:"is_active"`
	SortOrder        int               `gorm:"default:0" json:"sort_order"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Customer represents a registered customer that can be attached to a sale
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Document  string         `gorm:"index;size:50" json:"document"`
	Email     string         `gorm:"size:255" json:"email"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string       { return "products" }
func (PaymentMethod) TableName() string { return "payment_methods" }
func (Customer) TableName() string      { return "customers" }

// Entity methods

// IsOutOfStock checks if the product has no sellable stock
func (p *Product) IsOutOfStock() bool {
	return p.Quantity <= 0
}

// IsLowStock checks if remaining stock is at or below the minimum level
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStockLevel
}

// IsExpired checks whether the expiry date falls strictly before the
// given calendar day. Products without an expiry date never expire.
func (p *Product) IsExpired(today time.Time) bool {
	if p.ExpiryDate == nil {
		return false
	}
	return DateOnly(*p.ExpiryDate).Before(DateOnly(today))
}

// DaysUntilExpiry returns the number of whole calendar days between
// today and the expiry date. Negative values mean the product expired.
func (p *Product) DaysUntilExpiry(today time.Time) (int, bool) {
	if p.ExpiryDate == nil {
		return 0, false
	}
	// Rounding keeps the count stable across DST transitions, where a
	// calendar day between local midnights is 23 or 25 hours long.
	days := int(math.Round(DateOnly(*p.ExpiryDate).Sub(DateOnly(today)).Hours() / 24))
	return days, true
}

// DateOnly truncates a timestamp to local midnight. Expiry comparisons
// always happen on calendar dates to avoid timezone off-by-one errors.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
