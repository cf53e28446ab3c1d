package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	rate := Adjustment{Kind: KindExchangeRate, Value: decimal.RequireFromString("17.2500"), Currency: "EUR"}
	assert.Regexp(t, `^\$17[.,]2500 MXN por EUR$`, FormatValue(rate))

	noCurrency := Adjustment{Kind: KindExchangeRate, Value: decimal.RequireFromString("18")}
	assert.Contains(t, FormatValue(noCurrency), "por USD")

	pct := Adjustment{Kind: KindInflation, Value: decimal.RequireFromString("4.5")}
	assert.Regexp(t, `^4[.,]50\s?%$`, FormatValue(pct))
}

func TestNormalizeCurrency(t *testing.T) {
	got, err := NormalizeCurrency("")
	require.NoError(t, err)
	assert.Equal(t, "USD", got)

	got, err = NormalizeCurrency("EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", got)

	_, err = NormalizeCurrency("ZZZZ")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestParseKind(t *testing.T) {
	for raw, want := range map[string]Kind{
		"exchange-rate": KindExchangeRate,
		"exchange_rate": KindExchangeRate,
		"Inflation":     KindInflation,
		" agency ":      KindAgency,
		"transfer":      KindTransfer,
	} {
		got, err := ParseKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("discount")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "exchange-rate", KindExchangeRate.Slug())
}
