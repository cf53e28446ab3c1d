package vehicles

import (
	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Vehicle is a fleet unit.
type Vehicle struct {
	crud.Base
	Plate           string `json:"plate"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	Year            int    `json:"year"`
	VehicleTypeID   int64  `json:"vehicleTypeId"`
	VehicleTypeName string `json:"vehicleTypeName"`
	Capacity        int    `json:"capacity"`
}

type CreateRequest struct {
	Plate         string `json:"plate" validate:"required,max=15"`
	Brand         string `json:"brand" validate:"required,max=60"`
	Model         string `json:"model" validate:"required,max=60"`
	Year          int    `json:"year" validate:"required"`
	VehicleTypeID int64  `json:"vehicleTypeId" validate:"required,gt=0"`
	Capacity      int    `json:"capacity" validate:"gt=0,lte=100"`
}

type UpdateRequest struct {
	Plate         *string `json:"plate,omitempty" validate:"omitempty,max=15"`
	Brand         *string `json:"brand,omitempty" validate:"omitempty,max=60"`
	Model         *string `json:"model,omitempty" validate:"omitempty,max=60"`
	Year          *int    `json:"year,omitempty"`
	VehicleTypeID *int64  `json:"vehicleTypeId,omitempty" validate:"omitempty,gt=0"`
	Capacity      *int    `json:"capacity,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// MinYear is the oldest model year accepted into the fleet.
const MinYear = 1990

var (
	ErrNotFound      = shared.NewError(shared.ErrNotFound, "vehicle.not_found", "Vehículo no encontrado")
	ErrPlateTaken    = shared.NewError(shared.ErrConflict, "vehicle.plate_taken", "Ya existe un vehículo con esas placas")
	ErrFieldRequired = shared.Validation("vehicle.field_required", "Placas, marca y modelo son obligatorios")
	ErrInvalidYear   = shared.Validation("vehicle.invalid_year", "Año de modelo inválido")
	ErrCapacity      = shared.Validation("vehicle.invalid_capacity", "La capacidad debe ser mayor a cero")
)
