// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/shopfront/internal/config"
	"github.com/your-org/shopfront/internal/domain/order"
)

// Service renders order invoices
type Service struct {
	company CompanyInfo
	tmpl    *template.Template
	now     func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg config.InvoiceConfig) *Service {
	return &Service{
		company: CompanyInfo{
			Name:    cfg.CompanyName,
			Address: cfg.CompanyAddress,
			Email:   cfg.CompanyEmail,
		},
		tmpl: template.Must(template.New("invoice").Parse(invoiceTemplate)),
		now:  time.Now,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	Lines         []InvoiceLine
	Company       CompanyInfo
}

// InvoiceLine is one pre-formatted order line
type InvoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

// CompanyInfo represents the seller
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) ([]byte, error) {
	html, err := s.RenderHTML(o)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

// RenderHTML renders the invoice markup
func (s *Service) RenderHTML(o *order.Order) ([]byte, error) {
	data := InvoiceData{
		InvoiceNumber: "INV-" + o.OrderNumber,
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Order:         o,
		Company:       s.company,
	}
	for i := range o.Items {
		item := &o.Items[i]
		data.Lines = append(data.Lines, InvoiceLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price.StringFixed(2),
			Total:     item.LineTotal().StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { padding: 8px; border-bottom: 1px solid #eee; text-align: left; }
        .num { text-align: right; }
        .totals td { border: none; }
        .grand { font-weight: bold; font-size: 16px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="invoice-title">INVOICE</div>
        <div>{{.InvoiceNumber}} &middot; {{.InvoiceDate}}</div>
        <div><strong>{{.Company.Name}}</strong></div>
        <div>{{.Company.Address}}</div>
        <div>{{.Company.Email}}</div>
    </div>

    <div>
        <strong>Ship to</strong><br>
        {{with .Order.ShippingAddress}}
        {{.FullName}}<br>
        {{.Address}}<br>
        {{if .City}}{{.City}} {{.PostalCode}}<br>{{end}}
        {{if .Country}}{{.Country}}<br>{{end}}
        {{if .Phone}}{{.Phone}}{{end}}
        {{end}}
    </div>

    <div>
        Order {{.Order.OrderNumber}} &middot; Status: {{.Order.Status}} &middot;
        Payment: {{.Order.PaymentMethod}} ({{.Order.PaymentStatus}})
    </div>

    <table>
        <thead>
            <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">${{.UnitPrice}}</td><td class="num">${{.Total}}</td></tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td class="num">Items</td><td class="num">${{.Order.ItemsPrice.StringFixed 2}}</td></tr>
        <tr><td class="num">Shipping</td><td class="num">${{.Order.ShippingPrice.StringFixed 2}}</td></tr>
        <tr><td class="num">Tax</td><td class="num">${{.Order.TaxPrice.StringFixed 2}}</td></tr>
        <tr class="grand"><td class="num">Total</td><td class="num">${{.Order.TotalPrice.StringFixed 2}}</td></tr>
    </table>
</body>
</html>
`
