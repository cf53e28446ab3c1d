package vehicletypes

import (
	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// VehicleType classifies the fleet (sedan, van, sprinter...).
type VehicleType struct {
	crud.Base
	Code     string `json:"code"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type CreateRequest struct {
	Code     string `json:"code" validate:"required,max=30"`
	Name     string `json:"name" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"gt=0,lte=100"`
}

type UpdateRequest struct {
	Code     *string `json:"code,omitempty" validate:"omitempty,max=30"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Capacity *int    `json:"capacity,omitempty" validate:"omitempty,gt=0,lte=100"`
}

var (
	ErrNotFound      = shared.NewError(shared.ErrNotFound, "vehicle_type.not_found", "Tipo de vehículo no encontrado")
	ErrCodeTaken     = shared.NewError(shared.ErrConflict, "vehicle_type.code_taken", "Ya existe un tipo de vehículo con ese código")
	ErrFieldRequired = shared.Validation("vehicle_type.field_required", "Código y nombre son obligatorios")
	ErrCapacity      = shared.Validation("vehicle_type.invalid_capacity", "La capacidad debe ser mayor a cero")
)
