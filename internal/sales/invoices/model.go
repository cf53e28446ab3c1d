package invoices

import (
	"time"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
)

// Status is the lifecycle state of an invoice request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Label is the Spanish display name.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendiente"
	case StatusCompleted:
		return "Completada"
	case StatusCancelled:
		return "Cancelada"
	}
	return string(s)
}

// Invoice is a request to bill a scheduled quote.
type Invoice struct {
	ID               int64      `json:"id"`
	QuoteID          int64      `json:"quoteId"`
	QuoteFolio       string     `json:"folio"`
	ClientName       string     `json:"clientName"`
	RequestedBy      *int64     `json:"requestedById,omitempty"`
	RequestedByName  string     `json:"requestedByName"`
	RequestedByEmail string     `json:"-"`
	Status           Status     `json:"status"`
	RequestDate      time.Time  `json:"requestDate"`
	ProcessDate      *time.Time `json:"processDate,omitempty"`
	ProcessedBy      *int64     `json:"processedById,omitempty"`
	ProcessedByName  string     `json:"processedByName,omitempty"`
	InvoiceNumber    string     `json:"invoiceNumber,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CancelReason     string     `json:"cancelReason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ListFilters combine the grid parameters with an optional status filter.
type ListFilters struct {
	httpx.DataTablesRequest
	Status Status
}

var listSortColumns = map[string]string{
	"folio":         "q.folio",
	"clientName":    "c.company_name",
	"status":        "ir.status",
	"requestDate":   "ir.request_date",
	"processDate":   "ir.process_date",
	"invoiceNumber": "ir.invoice_number",
}
