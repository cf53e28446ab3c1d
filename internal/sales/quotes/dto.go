package quotes

import "github.com/shopspring/decimal"

// ItemRequest is one priced line in a create payload.
type ItemRequest struct {
	ServiceID   *int64          `json:"serviceId,omitempty"`
	Description string          `json:"description" validate:"required,max=300"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// DayRequest groups the items of one itinerary day.
type DayRequest struct {
	Date  string        `json:"date,omitempty"`
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateRequest is the payload for a new quote.
type CreateRequest struct {
	ClientID       int64        `json:"clientId" validate:"required,gt=0"`
	RateID         *int64       `json:"rateId,omitempty"`
	NumberOfPeople int          `json:"numberOfPeople" validate:"gt=0"`
	ContactPerson  string       `json:"contactPerson" validate:"required,max=150"`
	ContactEmail   string       `json:"contactEmail" validate:"omitempty,email,max=150"`
	ContactPhone   string       `json:"contactPhone" validate:"max=30"`
	Currency       string       `json:"currency,omitempty" validate:"omitempty,len=3"`
	ValidUntil     string       `json:"validUntil,omitempty"`
	Notes          string       `json:"notes,omitempty" validate:"max=2000"`
	Days           []DayRequest `json:"days" validate:"required,min=1,dive"`
}

// UpdateRequest is a partial update; only the listed fields may change.
type UpdateRequest struct {
	Status         *string `json:"status,omitempty"`
	NumberOfPeople *int    `json:"numberOfPeople,omitempty"`
	ContactPerson  *string `json:"contactPerson,omitempty" validate:"omitempty,max=150"`
	ContactEmail   *string `json:"contactEmail,omitempty" validate:"omitempty,email,max=150"`
	ContactPhone   *string `json:"contactPhone,omitempty" validate:"omitempty,max=30"`
	ValidUntil     *string `json:"validUntil,omitempty"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Reason         string  `json:"reason,omitempty" validate:"max=500"`
}

func (r UpdateRequest) empty() bool {
	return r.Status == nil && r.NumberOfPeople == nil && r.ContactPerson == nil && r.ContactEmail == nil &&
		r.ContactPhone == nil && r.ValidUntil == nil && r.Notes == nil
}

// StatusRequest is the payload for PATCH /status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// ReasonRequest carries an optional reason for cancel and delete.
type ReasonRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}
