package pricing

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("es-MX"))

// FormatValue renders an adjustment for display: exchange rates as pesos per
// unit of foreign currency, everything else as a percentage.
func FormatValue(a Adjustment) string {
	v := a.Value.InexactFloat64()
	if a.Kind.UsesCurrency() {
		cur := a.Currency
		if cur == "" {
			cur = DefaultCurrency
		}
		return printer.Sprintf("$%.4f MXN por %s", v, cur)
	}
	return printer.Sprintf("%.2f%%", v)
}

// NormalizeCurrency validates an ISO 4217 code, returning its canonical
// upper-case form.
func NormalizeCurrency(raw string) (string, error) {
	if raw == "" {
		return DefaultCurrency, nil
	}
	unit, err := currency.ParseISO(raw)
	if err != nil {
		return "", ErrInvalidCurrency.Wrap(err)
	}
	return unit.String(), nil
}
