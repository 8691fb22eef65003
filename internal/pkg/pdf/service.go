// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/sale"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateReceipt generates a PDF receipt for a finalized sale
func (s *Service) GenerateReceipt(recorded *sale.Sale) (*bytes.Buffer, error) {
	// Prepare template data
	data := ReceiptData{
		Sale:     recorded,
		SaleDate: recorded.CreatedAt.Format("02/01/2006 15:04"),
		Store: StoreInfo{
			Name:    s.config.App.StoreName,
			Address: s.config.App.StoreAddress,
			Phone:   s.config.App.StorePhone,
			Email:   s.config.App.StoreEmail,
		},
	}

	// Generate HTML from template
	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	// Convert HTML to PDF
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	// Set PDF options
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(true)

	// Add page from HTML content
	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	// Create PDF
	err = pdfg.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data ReceiptData) (string, error) {
	tmpl := template.Must(template.New("receipt").Parse(receiptTemplate))

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	Sale     *sale.Sale `json:"sale"`
	SaleDate string     `json:"sale_date"`
	Store    StoreInfo  `json:"store"`
}

// StoreInfo represents store information shown on the receipt header
type StoreInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Receipt HTML template
const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.Sale.Code}}</title>
    <style>
        body {
            font-family: 'Courier New', monospace;
            margin: 0 auto;
            padding: 20px;
            max-width: 420px;
            color: #111;
            font-size: 13px;
        }
        .store-header {
            text-align: center;
            border-bottom: 1px dashed #333;
            padding-bottom: 12px;
            margin-bottom: 12px;
        }
        .store-header h1 {
            font-size: 18px;
            margin: 0 0 6px 0;
        }
        .store-header p {
            margin: 2px 0;
        }
        .sale-meta {
            margin-bottom: 12px;
        }
        .sale-meta p {
            margin: 2px 0;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 12px;
        }
        .items-table th,
        .items-table td {
            padding: 4px 2px;
            text-align: left;
        }
        .items-table th {
            border-bottom: 1px solid #333;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            white-space: nowrap;
        }
        .totals {
            border-top: 1px dashed #333;
            padding-top: 8px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 2px 0;
        }
        .totals .amount {
            text-align: right;
        }
        .grand-total {
            font-size: 16px;
            font-weight: bold;
        }
        .voided {
            text-align: center;
            font-size: 20px;
            font-weight: bold;
            letter-spacing: 4px;
            margin: 12px 0;
        }
        .footer {
            margin-top: 16px;
            padding-top: 10px;
            border-top: 1px dashed #333;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="store-header">
        <h1>{{.Store.Name}}</h1>
        {{if .Store.Address}}<p>{{.Store.Address}}</p>{{end}}
        {{if .Store.Phone}}<p>Phone: {{.Store.Phone}}</p>{{end}}
        {{if .Store.Email}}<p>{{.Store.Email}}</p>{{end}}
    </div>

    {{if eq .Sale.Status "voided"}}<div class="voided">* VOIDED *</div>{{end}}

    <div class="sale-meta">
        <p><strong>Receipt:</strong> {{.Sale.Code}}</p>
        <p><strong>Date:</strong> {{.SaleDate}}</p>
        <p><strong>Payment:</strong> {{.Sale.PaymentMethodCode}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Sale.Items}}
            <tr>
                <td>{{.Name}}</td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{printf "%.2f" .UnitPrice}}</td>
                <td class="total-col">{{printf "%.2f" .LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td>Subtotal:</td>
                <td class="amount">{{printf "%.2f" .Sale.Subtotal}}</td>
            </tr>
            {{if gt .Sale.TotalDiscount 0.0}}
            <tr>
                <td>Discount:</td>
                <td class="amount">-{{printf "%.2f" .Sale.TotalDiscount}}</td>
            </tr>
            {{end}}
            {{if gt .Sale.Surcharge 0.0}}
            <tr>
                <td>Card surcharge:</td>
                <td class="amount">{{printf "%.2f" .Sale.Surcharge}}</td>
            </tr>
            {{end}}
            <tr class="grand-total">
                <td>TOTAL:</td>
                <td class="amount">{{printf "%.2f" .Sale.GrandTotal}}</td>
            </tr>
            {{if gt .Sale.AmountTendered 0.0}}
            <tr>
                <td>Tendered:</td>
                <td class="amount">{{printf "%.2f" .Sale.AmountTendered}}</td>
            </tr>
            <tr>
                <td>Change:</td>
                <td class="amount">{{printf "%.2f" .Sale.Change}}</td>
            </tr>
            {{end}}
        </table>
    </div>

    <div class="footer">
        <p>Thank you for shopping with us!</p>
        {{if .Sale.Notes}}<p>{{.Sale.Notes}}</p>{{end}}
    </div>
</body>
</html>
`
