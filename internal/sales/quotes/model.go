package quotes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Status is the reservation state of a quote.
type Status string

const (
	StatusRequested Status = "requested"
	StatusHold      Status = "hold"
	StatusScheduled Status = "scheduled"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusHold, StatusScheduled, StatusRejected:
		return true
	}
	return false
}

// Label is the Spanish display name.
func (s Status) Label() string {
	switch s {
	case StatusRequested:
		return "Solicitada"
	case StatusHold:
		return "En espera"
	case StatusScheduled:
		return "Programada"
	case StatusRejected:
		return "Rechazada"
	}
	return string(s)
}

// transitions lists the moves allowed through the generic status update.
// scheduled -> rejected exists only through CancelReservation.
var transitions = map[Status][]Status{
	StatusRequested: {StatusHold, StatusScheduled, StatusRejected},
	StatusHold:      {StatusScheduled, StatusRejected},
}

// CanTransition reports whether a quote in from may be moved to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ServiceItem is one priced line of a service day.
type ServiceItem struct {
	ServiceID   *int64          `json:"serviceId,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// ServiceDay groups the items of one itinerary day.
type ServiceDay struct {
	Date  string        `json:"date,omitempty"`
	Items []ServiceItem `json:"items"`
}

// ServiceItems is the priced itinerary stored with the quote.
type ServiceItems struct {
	Days     []ServiceDay    `json:"days"`
	Subtotal decimal.Decimal `json:"subtotal"`
	IVA      decimal.Decimal `json:"iva"`
	Total    decimal.Decimal `json:"total"`
}

// Quote is a client's reservation request.
type Quote struct {
	ID                 int64              `json:"id"`
	Folio              string             `json:"folio"`
	Status             Status             `json:"status"`
	ClientID           *int64             `json:"clientId,omitempty"`
	ClientName         string             `json:"clientName"`
	RateID             *int64             `json:"rateId,omitempty"`
	RateName           string             `json:"rateName,omitempty"`
	NumberOfPeople     int                `json:"numberOfPeople"`
	ContactPerson      string             `json:"contactPerson"`
	ContactEmail       string             `json:"contactEmail"`
	ContactPhone       string             `json:"contactPhone"`
	ServiceItems       ServiceItems       `json:"serviceItems"`
	Currency           string             `json:"currency"`
	ValidUntil         *time.Time         `json:"validUntil,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	InvoiceRequested   bool               `json:"invoiceRequested"`
	InvoiceRequestDate *time.Time         `json:"invoiceRequestDate,omitempty"`
	InvoiceRequestedBy *int64             `json:"invoiceRequestedBy,omitempty"`
	CancelReason       string             `json:"cancelReason,omitempty"`
	State              shared.RecordState `json:"-"`
	CreatedBy          *int64             `json:"createdBy,omitempty"`
	CreatedByName      string             `json:"createdByName,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// StatusChange reports the outcome of a status update.
type StatusChange struct {
	Quote    Quote  `json:"quote"`
	Previous Status `json:"previousStatus"`
	New      Status `json:"newStatus"`
}

// ListFilters combine the grid parameters with an optional status filter.
type ListFilters struct {
	httpx.DataTablesRequest
	Status Status
}

var listSortColumns = map[string]string{
	"folio":      "q.folio",
	"clientName": "c.company_name",
	"status":     "q.status",
	"total":      "q.total",
	"createdAt":  "q.created_at",
	"validUntil": "q.valid_until",
}
