package pricing

import "github.com/amexing/amexing-ops/internal/shared"

var (
	ErrUnknownKind          = shared.Validation("price_adjustment.unknown_kind", "Tipo de ajuste no válido")
	ErrValueRequired        = shared.Validation("price_adjustment.value_required", "El valor es obligatorio")
	ErrValueOutOfRange      = shared.Validation("price_adjustment.value_out_of_range", "El valor debe estar entre 0.01 y 50.00")
	ErrInvalidCurrency      = shared.Validation("price_adjustment.invalid_currency", "La moneda debe ser un código ISO 4217 válido")
	ErrInvalidEffectiveDate = shared.Validation("price_adjustment.invalid_effective_date", "La fecha efectiva no es válida")
	ErrNoteTooLong          = shared.Validation("price_adjustment.note_too_long", "La nota no puede exceder 500 caracteres")
	ErrNotFound             = shared.NewError(shared.ErrNotFound, "price_adjustment.not_found", "Ajuste no encontrado")
	ErrDeleteActive         = shared.NewError(shared.ErrInvalidState, "price_adjustment.delete_active", "No se puede eliminar el ajuste vigente")
	ErrConcurrentCreate     = shared.NewError(shared.ErrConflict, "price_adjustment.concurrent_create", "Otro ajuste del mismo tipo se registró al mismo tiempo, intente de nuevo")
)
