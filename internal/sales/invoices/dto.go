package invoices

import "time"

// CompleteRequest is the payload for completing an invoice request.
type CompleteRequest struct {
	InvoiceNumber string `json:"invoiceNumber" validate:"max=64"`
	Notes         string `json:"notes,omitempty" validate:"max=1000"`
}

// CancelRequest carries the optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// TransitionResponse is returned by complete and cancel.
type TransitionResponse struct {
	ID            int64   `json:"id"`
	QuoteID       int64   `json:"quoteId"`
	Status        Status  `json:"status"`
	InvoiceNumber string  `json:"invoiceNumber,omitempty"`
	ProcessDate   *string `json:"processDate,omitempty"`
}

func toTransition(inv Invoice) TransitionResponse {
	resp := TransitionResponse{ID: inv.ID, QuoteID: inv.QuoteID, Status: inv.Status, InvoiceNumber: inv.InvoiceNumber}
	if inv.ProcessDate != nil {
		s := inv.ProcessDate.UTC().Format(time.RFC3339)
		resp.ProcessDate = &s
	}
	return resp
}
