package quotes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// PaymentInfo is the bank account printed on receipts for privileged users.
type PaymentInfo struct {
	BankName      string
	AccountHolder string
	AccountNumber string
	CLABE         string
}

// ReceiptData is the view model of the receipt template.
type ReceiptData struct {
	Quote              Quote
	GeneratedAt        time.Time
	IncludePaymentInfo bool
	Payment            PaymentInfo
}

// Receipt is a rendered PDF.
type Receipt struct {
	Filename string
	PDF      []byte
}

// ReceiptRenderer turns receipt data into a PDF.
type ReceiptRenderer interface {
	Render(ctx context.Context, data ReceiptData) ([]byte, error)
}

// TemplateExecutor executes a named HTML template.
type TemplateExecutor interface {
	Execute(w io.Writer, name string, data any) error
}

// HTMLConverter converts an HTML document into a PDF.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

const receiptTemplate = "receipts/quote.html"

// PDFReceipts renders the receipt template and converts it with Gotenberg.
type PDFReceipts struct {
	templates TemplateExecutor
	pdf       HTMLConverter
}

// NewPDFReceipts constructs a ReceiptRenderer.
func NewPDFReceipts(templates TemplateExecutor, pdf HTMLConverter) *PDFReceipts {
	return &PDFReceipts{templates: templates, pdf: pdf}
}

// Render implements ReceiptRenderer.
func (p *PDFReceipts) Render(ctx context.Context, data ReceiptData) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.templates.Execute(&buf, receiptTemplate, data); err != nil {
		return nil, fmt.Errorf("quotes: render receipt template: %w", err)
	}
	pdf, err := p.pdf.RenderHTML(ctx, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("quotes: convert receipt: %w", err)
	}
	return pdf, nil
}

func receiptFilename(q Quote) string {
	return "recibo-" + q.Folio + ".pdf"
}
