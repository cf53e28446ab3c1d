package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amexing/amexing-ops/internal/shared"
)

// CreateRequest is the payload for a new adjustment.
type CreateRequest struct {
	Kind          Kind             `json:"-"`
	Value         *decimal.Decimal `json:"value"`
	Currency      string           `json:"currency,omitempty"`
	EffectiveDate string           `json:"effectiveDate,omitempty"`
	Note          string           `json:"note,omitempty" validate:"max=500"`
}

// AdjustmentResponse is the API representation of an adjustment.
type AdjustmentResponse struct {
	ID             int64      `json:"id"`
	Kind           string     `json:"type"`
	Label          string     `json:"label"`
	Value          float64    `json:"value"`
	FormattedValue string     `json:"formattedValue"`
	Currency       string     `json:"currency,omitempty"`
	EffectiveDate  string     `json:"effectiveDate,omitempty"`
	Note           string     `json:"note,omitempty"`
	Active         bool       `json:"active"`
	Exists         bool       `json:"exists"`
	CreatedBy      *creator   `json:"createdBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

type creator struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HistoryResponse is one page of history.
type HistoryResponse struct {
	Items      []AdjustmentResponse `json:"items"`
	Pagination shared.Pagination    `json:"pagination"`
}

// ToResponse converts a domain adjustment for the API.
func ToResponse(a Adjustment) AdjustmentResponse {
	resp := AdjustmentResponse{
		ID:             a.ID,
		Kind:           a.Kind.Slug(),
		Label:          a.Kind.Label(),
		Value:          a.Value.InexactFloat64(),
		FormattedValue: FormatValue(a),
		Currency:       a.Currency,
		Note:           a.Note,
		Active:         a.State.Active(),
		Exists:         a.State.Exists(),
		CreatedAt:      a.CreatedAt,
	}
	if a.EffectiveDate != nil {
		resp.EffectiveDate = a.EffectiveDate.Format(time.DateOnly)
	}
	if a.CreatedBy != nil {
		resp.CreatedBy = &creator{ID: *a.CreatedBy, Name: a.CreatedByName}
	}
	if !a.UpdatedAt.IsZero() {
		updated := a.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// ToResponses converts a slice.
func ToResponses(items []Adjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ToResponse(a))
	}
	return out
}
