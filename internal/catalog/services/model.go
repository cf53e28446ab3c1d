package services

import (
	"github.com/shopspring/decimal"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Service is a priced route: origin and destination POIs served by a
// vehicle type under a rate. A nil origin means "any pickup point".
type Service struct {
	crud.Base
	OriginPOIID      *int64          `json:"originPoiId,omitempty"`
	OriginName       string          `json:"originName"`
	DestinationPOIID int64           `json:"destinationPoiId"`
	DestinationName  string          `json:"destinationName"`
	VehicleTypeID    int64           `json:"vehicleTypeId"`
	VehicleTypeName  string          `json:"vehicleTypeName"`
	RateID           int64           `json:"rateId"`
	RateName         string          `json:"rateName"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	IsRoundTrip      bool            `json:"isRoundTrip"`
	Note             string          `json:"note"`
}

// RouteKey is the tuple that must be unique among non-deleted services.
type RouteKey struct {
	OriginPOIID      *int64
	DestinationPOIID int64
	VehicleTypeID    int64
	RateID           int64
}

// Key returns the uniqueness tuple of s.
func (s Service) Key() RouteKey {
	return RouteKey{
		OriginPOIID:      s.OriginPOIID,
		DestinationPOIID: s.DestinationPOIID,
		VehicleTypeID:    s.VehicleTypeID,
		RateID:           s.RateID,
	}
}

// Equal compares two keys by value.
func (k RouteKey) Equal(o RouteKey) bool {
	if (k.OriginPOIID == nil) != (o.OriginPOIID == nil) {
		return false
	}
	if k.OriginPOIID != nil && *k.OriginPOIID != *o.OriginPOIID {
		return false
	}
	return k.DestinationPOIID == o.DestinationPOIID && k.VehicleTypeID == o.VehicleTypeID && k.RateID == o.RateID
}

type CreateRequest struct {
	OriginPOIID      *int64          `json:"originPoiId,omitempty" validate:"omitempty,gt=0"`
	DestinationPOIID int64           `json:"destinationPoiId" validate:"required,gt=0"`
	VehicleTypeID    int64           `json:"vehicleTypeId" validate:"required,gt=0"`
	RateID           int64           `json:"rateId" validate:"required,gt=0"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency,omitempty"`
	IsRoundTrip      bool            `json:"isRoundTrip"`
	Note             string          `json:"note,omitempty" validate:"max=500"`
}

// UpdateRequest is a partial update. ClearOrigin removes the origin POI.
type UpdateRequest struct {
	OriginPOIID      *int64           `json:"originPoiId,omitempty" validate:"omitempty,gt=0"`
	ClearOrigin      bool             `json:"clearOrigin,omitempty"`
	DestinationPOIID *int64           `json:"destinationPoiId,omitempty" validate:"omitempty,gt=0"`
	VehicleTypeID    *int64           `json:"vehicleTypeId,omitempty" validate:"omitempty,gt=0"`
	RateID           *int64           `json:"rateId,omitempty" validate:"omitempty,gt=0"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Currency         *string          `json:"currency,omitempty"`
	IsRoundTrip      *bool            `json:"isRoundTrip,omitempty"`
	Note             *string          `json:"note,omitempty" validate:"omitempty,max=500"`
}

// DefaultCurrency applies when a service is created without one.
const DefaultCurrency = "MXN"

var (
	ErrNotFound     = shared.NewError(shared.ErrNotFound, "service.not_found", "Servicio no encontrado")
	ErrRouteTaken   = shared.NewError(shared.ErrConflict, "service.route_taken", "Ya existe un servicio con la misma ruta, tipo de vehículo y tarifa")
	ErrInvalidPrice = shared.Validation("service.invalid_price", "El precio debe ser mayor a cero")
	ErrSameEndpoint = shared.Validation("service.same_endpoints", "El origen y el destino deben ser distintos")
)
