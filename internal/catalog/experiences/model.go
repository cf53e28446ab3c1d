package experiences

import (
	"github.com/shopspring/decimal"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Kind separates in-house experiences from third-party providers.
type Kind string

const (
	KindExperience Kind = "experience"
	KindProvider   Kind = "provider"
)

// Valid reports whether k is known.
func (k Kind) Valid() bool {
	return k == KindExperience || k == KindProvider
}

// Experience is a tour or activity that can be added to a quote.
type Experience struct {
	crud.Base
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"durationMinutes"`
	Kind            Kind            `json:"type"`
}

type CreateRequest struct {
	Name            string          `json:"name" validate:"required,max=150"`
	Description     string          `json:"description" validate:"max=2000"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"durationMinutes" validate:"gte=0,lte=10080"`
	Kind            string          `json:"type,omitempty"`
}

type UpdateRequest struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,max=150"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	DurationMinutes *int             `json:"durationMinutes,omitempty" validate:"omitempty,gte=0,lte=10080"`
	Kind            *string          `json:"type,omitempty"`
}

var (
	ErrNotFound     = shared.NewError(shared.ErrNotFound, "experience.not_found", "Experiencia no encontrada")
	ErrNameRequired = shared.Validation("experience.name_required", "El nombre es obligatorio")
	ErrInvalidPrice = shared.Validation("experience.invalid_price", "El precio no puede ser negativo")
	ErrInvalidKind  = shared.Validation("experience.invalid_type", "Tipo de experiencia inválido")
)
