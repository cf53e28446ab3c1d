package rates

import (
	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Rate is a commercial tier (Económica, Premium...) that services and quotes
// are priced against.
type Rate struct {
	crud.Base
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CreateRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type UpdateRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// DefaultColor applies when a rate is created without one.
const DefaultColor = "#6c757d"

var (
	ErrNotFound     = shared.NewError(shared.ErrNotFound, "rate.not_found", "Tarifa no encontrada")
	ErrNameTaken    = shared.NewError(shared.ErrConflict, "rate.name_taken", "Ya existe una tarifa con ese nombre")
	ErrNameRequired = shared.Validation("rate.name_required", "El nombre es obligatorio")
)
