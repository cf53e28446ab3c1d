package quotes

import "github.com/amexing/amexing-ops/internal/shared"

var (
	ErrNotFound          = shared.NewError(shared.ErrNotFound, "quote.not_found", "Cotización no encontrada")
	ErrInvalidStatus     = shared.Validation("quote.invalid_status", "Estado de cotización no válido")
	ErrInvalidTransition = shared.NewError(shared.ErrInvalidState, "quote.invalid_transition", "Transición de estado no permitida")
	ErrScheduledLocked   = shared.NewError(shared.ErrInvalidState, "quote.scheduled_locked", "Una cotización programada solo puede cancelarse mediante la cancelación de la reservación")
	ErrNotScheduled      = shared.NewError(shared.ErrInvalidState, "quote.not_scheduled", "La cotización debe estar programada")
	ErrNoChanges         = shared.Validation("quote.no_changes", "No hay campos para actualizar")
	ErrNoItems           = shared.Validation("quote.no_items", "La cotización debe incluir al menos un servicio")
	ErrInvalidItem       = shared.Validation("quote.invalid_item", "Cada servicio requiere descripción, cantidad mayor a cero y precio mayor a cero")
	ErrInvalidDate       = shared.Validation("quote.invalid_date", "Fecha no válida, use el formato AAAA-MM-DD")
	ErrInvalidPeople     = shared.Validation("quote.invalid_people", "El número de personas debe ser mayor a cero")
	ErrClientNotFound    = shared.NewError(shared.ErrNotFound, "quote.client_not_found", "Cliente no encontrado")
	ErrFolioConflict     = shared.NewError(shared.ErrConflict, "quote.folio_conflict", "El folio generado ya existe, intente de nuevo")
)
