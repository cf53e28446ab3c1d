package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amexing/amexing-ops/internal/shared"
)

// Kind identifies one of the four independently versioned adjustment series.
type Kind string

const (
	KindExchangeRate Kind = "exchange_rate"
	KindInflation    Kind = "inflation"
	KindAgency       Kind = "agency"
	KindTransfer     Kind = "transfer"
)

// Kinds lists every adjustment kind in display order.
var Kinds = []Kind{KindExchangeRate, KindInflation, KindAgency, KindTransfer}

// DefaultCurrency applies to exchange-rate adjustments submitted without one.
const DefaultCurrency = "USD"

// Value bounds shared by every kind.
var (
	MinValue = decimal.RequireFromString("0.01")
	MaxValue = decimal.RequireFromString("50.00")
)

// ParseKind accepts both the URL slug ("exchange-rate") and the stored form.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	switch k {
	case KindExchangeRate, KindInflation, KindAgency, KindTransfer:
		return k, nil
	}
	return "", ErrUnknownKind
}

// Slug is the URL form of the kind.
func (k Kind) Slug() string {
	return strings.ReplaceAll(string(k), "_", "-")
}

// Label is the Spanish display name.
func (k Kind) Label() string {
	switch k {
	case KindExchangeRate:
		return "Tipo de cambio"
	case KindInflation:
		return "Inflación"
	case KindAgency:
		return "Comisión de agencia"
	case KindTransfer:
		return "Cargo por transferencia"
	}
	return string(k)
}

// UsesCurrency reports whether the kind is denominated in a currency rather
// than a percentage.
func (k Kind) UsesCurrency() bool { return k == KindExchangeRate }

// IsValidValue reports whether v lies in [MinValue, MaxValue].
func IsValidValue(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(MinValue) && v.LessThanOrEqual(MaxValue)
}

// Adjustment is one historical row of an adjustment series.
type Adjustment struct {
	ID            int64              `json:"id"`
	Kind          Kind               `json:"kind"`
	Value         decimal.Decimal    `json:"value"`
	Currency      string             `json:"currency,omitempty"`
	Note          string             `json:"note,omitempty"`
	EffectiveDate *time.Time         `json:"effectiveDate,omitempty"`
	State         shared.RecordState `json:"state"`
	CreatedBy     *int64             `json:"createdBy,omitempty"`
	CreatedByName string             `json:"createdByName,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// HistoryFilters drive the paginated history listing.
type HistoryFilters struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir string
	Search  string
}

var historySortColumns = map[string]string{
	"created_at":     "pa.created_at",
	"createdAt":      "pa.created_at",
	"value":          "pa.value",
	"effective_date": "pa.effective_date",
	"effectiveDate":  "pa.effective_date",
}
