package invoices

import "github.com/amexing/amexing-ops/internal/shared"

var (
	ErrNotFound              = shared.NewError(shared.ErrNotFound, "invoice.not_found", "Solicitud de factura no encontrada")
	ErrCompleteNotPending    = shared.NewError(shared.ErrInvalidState, "invoice.complete_not_pending", "Solo se pueden completar facturas pendientes")
	ErrCancelNotPending      = shared.NewError(shared.ErrInvalidState, "invoice.cancel_not_pending", "Solo se pueden cancelar facturas pendientes")
	ErrInvoiceNumberRequired = shared.Validation("invoice.number_required", "El número de factura es obligatorio")
	ErrPendingExists         = shared.NewError(shared.ErrConflict, "invoice.pending_exists", "Ya existe una solicitud de factura pendiente para esta cotización")
	ErrInvalidStatusFilter   = shared.Validation("invoice.invalid_status", "Estado de factura no válido")
)
