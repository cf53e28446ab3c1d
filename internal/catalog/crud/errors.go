package crud

import "github.com/amexing/amexing-ops/internal/shared"

var (
	ErrNoChanges        = shared.Validation("catalog.no_changes", "No se enviaron cambios")
	ErrInvalidReference = shared.Validation("catalog.invalid_reference", "Un registro relacionado no existe")
	ErrInvalidCurrency  = shared.Validation("catalog.invalid_currency", "Moneda inválida")
)
