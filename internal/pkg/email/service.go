// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/sale"
)

// EmailService handles all email operations
type EmailService struct {
	config    *config.Config
	templates map[string]*template.Template
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	service := &EmailService{
		config:    cfg,
		templates: make(map[string]*template.Template),
	}

	service.loadTemplates()

	return service
}

// SendEmail sends an email over the configured SMTP server
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	return s.sendSMTPEmail(email)
}

// SendReceiptEmail sends the digital receipt for a finalized sale
func (s *EmailService) SendReceiptEmail(ctx context.Context, customerEmail, customerName string, recorded *sale.Sale) error {
	if customerEmail == "" {
		return fmt.Errorf("customer email is required")
	}

	items := make([]ReceiptItem, len(recorded.Items))
	for i, item := range recorded.Items {
		items[i] = ReceiptItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}

	data := ReceiptEmailData{
		EmailTemplateData: GetBaseTemplateData(
			s.config.App.StoreName,
			s.config.App.StoreAddress,
			s.config.App.StorePhone,
			customerName,
			customerEmail,
		),
		SaleCode:       recorded.Code,
		SaleDate:       recorded.CreatedAt.Format("02/01/2006 15:04"),
		Items:          items,
		Subtotal:       recorded.Subtotal,
		TotalDiscount:  recorded.TotalDiscount,
		Surcharge:      recorded.Surcharge,
		GrandTotal:     recorded.GrandTotal,
		AmountTendered: recorded.AmountTendered,
		Change:         recorded.Change,
		PaymentMethod:  recorded.PaymentMethodCode,
	}

	htmlContent, err := s.renderTemplate("receipt", data)
	if err != nil {
		return fmt.Errorf("failed to render receipt template: %w", err)
	}

	email := &Email{
		To:          []string{customerEmail},
		Subject:     fmt.Sprintf("Your receipt from %s - %s", s.config.App.StoreName, recorded.Code),
		HTMLContent: htmlContent,
		Type:        EmailTypeReceipt,
		Data: map[string]interface{}{
			"sale_code":   recorded.Code,
			"grand_total": recorded.GrandTotal,
		},
	}

	return s.SendEmail(ctx, email)
}

// SendStockAlertEmail notifies the store contact that a product crossed
// its minimum stock level
func (s *EmailService) SendStockAlertEmail(ctx context.Context, data StockAlertData) error {
	if s.config.App.StoreEmail == "" {
		return fmt.Errorf("store email is not configured")
	}

	data.EmailTemplateData = GetBaseTemplateData(
		s.config.App.StoreName,
		s.config.App.StoreAddress,
		s.config.App.StorePhone,
		"",
		s.config.App.StoreEmail,
	)

	htmlContent, err := s.renderTemplate("stock_alert", data)
	if err != nil {
		return fmt.Errorf("failed to render stock alert template: %w", err)
	}

	email := &Email{
		To:          []string{s.config.App.StoreEmail},
		Subject:     fmt.Sprintf("Low stock alert - %s", data.ProductName),
		HTMLContent: htmlContent,
		Type:        EmailTypeStockAlert,
		Data: map[string]interface{}{
			"barcode":         data.Barcode,
			"remaining_stock": data.RemainingStock,
		},
	}

	return s.SendEmail(ctx, email)
}

// loadTemplates parses the built-in email templates
func (s *EmailService) loadTemplates() {
	s.templates["receipt"] = template.Must(template.New("receipt").Parse(receiptEmailTemplate))
	s.templates["stock_alert"] = template.Must(template.New("stock_alert").Parse(stockAlertTemplate))
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

const receiptEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.SaleCode}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 480px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333; text-align: center;">{{.StoreName}}</h1>
        {{if .StoreAddress}}<p style="text-align: center; color: #666;">{{.StoreAddress}}</p>{{end}}
        <hr>
        <p>{{if .CustomerName}}Hello {{.CustomerName}},{{else}}Hello,{{end}}</p>
        <p>Thank you for your purchase. Here is your receipt <strong>{{.SaleCode}}</strong> from {{.SaleDate}}.</p>
        <table style="width: 100%; border-collapse: collapse; margin: 16px 0;">
            <thead>
                <tr style="border-bottom: 1px solid #333;">
                    <th style="text-align: left; padding: 4px;">Item</th>
                    <th style="text-align: right; padding: 4px;">Qty</th>
                    <th style="text-align: right; padding: 4px;">Price</th>
                    <th style="text-align: right; padding: 4px;">Total</th>
                </tr>
            </thead>
            <tbody>
                {{range .Items}}
                <tr>
                    <td style="padding: 4px;">{{.Name}}</td>
                    <td style="text-align: right; padding: 4px;">{{.Quantity}}</td>
                    <td style="text-align: right; padding: 4px;">{{printf "%.2f" .UnitPrice}}</td>
                    <td style="text-align: right; padding: 4px;">{{printf "%.2f" .LineTotal}}</td>
                </tr>
                {{end}}
            </tbody>
        </table>
        <table style="width: 100%; border-collapse: collapse;">
            <tr>
                <td style="padding: 2px;">Subtotal:</td>
                <td style="text-align: right; padding: 2px;">{{printf "%.2f" .Subtotal}}</td>
            </tr>
            {{if gt .TotalDiscount 0.0}}
            <tr>
                <td style="padding: 2px;">Discount:</td>
                <td style="text-align: right; padding: 2px;">-{{printf "%.2f" .TotalDiscount}}</td>
            </tr>
            {{end}}
            {{if gt .Surcharge 0.0}}
            <tr>
                <td style="padding: 2px;">Card surcharge:</td>
                <td style="text-align: right; padding: 2px;">{{printf "%.2f" .Surcharge}}</td>
            </tr>
            {{end}}
            <tr style="font-weight: bold; font-size: 16px;">
                <td style="padding: 4px 2px; border-top: 2px solid #333;">Total:</td>
                <td style="text-align: right; padding: 4px 2px; border-top: 2px solid #333;">{{printf "%.2f" .GrandTotal}}</td>
            </tr>
            {{if gt .AmountTendered 0.0}}
            <tr>
                <td style="padding: 2px;">Tendered ({{.PaymentMethod}}):</td>
                <td style="text-align: right; padding: 2px;">{{printf "%.2f" .AmountTendered}}</td>
            </tr>
            <tr>
                <td style="padding: 2px;">Change:</td>
                <td style="text-align: right; padding: 2px;">{{printf "%.2f" .Change}}</td>
            </tr>
            {{end}}
        </table>
        <hr>
        <p style="font-size: 12px; color: #666; text-align: center;">
            © {{.Year}} {{.StoreName}}. All rights reserved.
        </p>
    </div>
</body>
</html>`

const stockAlertTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Low stock alert</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 480px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.StoreName}}</h1>
        <p><strong>{{.ProductName}}</strong> (barcode {{.Barcode}}) is running low.</p>
        <p>Remaining stock: <strong>{{.RemainingStock}}</strong> (minimum level {{.MinStockLevel}}).</p>
        <p>Consider restocking before the register starts blocking sales.</p>
        <hr>
        <p style="font-size: 12px; color: #666;">
            © {{.Year}} {{.StoreName}}. All rights reserved.
        </p>
    </div>
</body>
</html>`
