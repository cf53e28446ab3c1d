package vehicles

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

type Service = crud.Service[Vehicle, *Vehicle, CreateRequest, UpdateRequest]

func NewService(repo crud.Repository[Vehicle], audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return crud.NewService[Vehicle, *Vehicle](repo, crud.Hooks[Vehicle, CreateRequest, UpdateRequest]{
		Entity: "vehicle",
		Build:  build,
		Patch:  patch,
		Check:  check,
	}, audit, logger)
}

var now = time.Now

func normalizePlate(p string) string {
	return strings.ToUpper(strings.Join(strings.Fields(p), ""))
}

func check(_ context.Context, v Vehicle) error {
	if v.Plate == "" || v.Brand == "" || v.Model == "" {
		return ErrFieldRequired
	}
	if v.Year < MinYear || v.Year > now().Year()+1 {
		return ErrInvalidYear
	}
	if v.Capacity <= 0 {
		return ErrCapacity
	}
	return nil
}

func build(_ context.Context, req CreateRequest) (Vehicle, error) {
	return Vehicle{
		Plate:         normalizePlate(req.Plate),
		Brand:         strings.TrimSpace(req.Brand),
		Model:         strings.TrimSpace(req.Model),
		Year:          req.Year,
		VehicleTypeID: req.VehicleTypeID,
		Capacity:      req.Capacity,
	}, nil
}

func patch(_ context.Context, v *Vehicle, req UpdateRequest) error {
	if req == (UpdateRequest{}) {
		return crud.ErrNoChanges
	}
	if req.Plate != nil {
		v.Plate = normalizePlate(*req.Plate)
	}
	if req.Brand != nil {
		v.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		v.Model = strings.TrimSpace(*req.Model)
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.VehicleTypeID != nil {
		v.VehicleTypeID = *req.VehicleTypeID
	}
	if req.Capacity != nil {
		v.Capacity = *req.Capacity
	}
	return nil
}
