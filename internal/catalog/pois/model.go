package pois

import (
	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// POI is a pickup or drop-off location used by services.
type POI struct {
	crud.Base
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// CreateRequest is the payload for POST /api/pois.
type CreateRequest struct {
	Name      string   `json:"name" validate:"required,max=150"`
	Address   string   `json:"address" validate:"max=300"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// UpdateRequest is a partial update.
type UpdateRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,max=150"`
	Address   *string  `json:"address,omitempty" validate:"omitempty,max=300"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

var (
	ErrNotFound     = shared.NewError(shared.ErrNotFound, "poi.not_found", "Punto de interés no encontrado")
	ErrNameRequired = shared.Validation("poi.name_required", "El nombre es obligatorio")
	ErrCoordinates  = shared.Validation("poi.invalid_coordinates", "Coordenadas fuera de rango")
)
