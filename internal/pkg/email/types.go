// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeReceipt    EmailType = "receipt"
	EmailTypeSaleVoided EmailType = "sale_voided"
	EmailTypeStockAlert EmailType = "stock_alert"
)

// Email represents an email message
type Email struct {
	To          []string               `json:"to"`
	CC          []string               `json:"cc,omitempty"`
	BCC         []string               `json:"bcc,omitempty"`
	Subject     string                 `json:"subject"`
	HTMLContent string                 `json:"html_content"`
	TextContent string                 `json:"text_content,omitempty"`
	Type        EmailType              `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	StoreName     string `json:"store_name"`
	StoreAddress  string `json:"store_address"`
	StorePhone    string `json:"store_phone"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Year          int    `json:"year"`
}

// ReceiptItem represents one line of a receipt email
type ReceiptItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// ReceiptEmailData contains data for the receipt email
type ReceiptEmailData struct {
	EmailTemplateData
	SaleCode       string        `json:"sale_code"`
	SaleDate       string        `json:"sale_date"`
	Items          []ReceiptItem `json:"items"`
	Subtotal       float64       `json:"subtotal"`
	TotalDiscount  float64       `json:"total_discount"`
	Surcharge      float64       `json:"surcharge"`
	GrandTotal     float64       `json:"grand_total"`
	AmountTendered float64       `json:"amount_tendered"`
	Change         float64       `json:"change"`
	PaymentMethod  string        `json:"payment_method"`
}

// StockAlertData contains data for the low stock alert email
type StockAlertData struct {
	EmailTemplateData
	ProductName    string `json:"product_name"`
	Barcode        string `json:"barcode"`
	RemainingStock int    `json:"remaining_stock"`
	MinStockLevel  int    `json:"min_stock_level"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(storeName, storeAddress, storePhone, customerName, customerEmail string) EmailTemplateData {
	return EmailTemplateData{
		StoreName:     storeName,
		StoreAddress:  storeAddress,
		StorePhone:    storePhone,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Year:          time.Now().Year(),
	}
}
