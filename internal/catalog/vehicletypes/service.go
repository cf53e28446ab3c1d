package vehicletypes

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

type Service = crud.Service[VehicleType, *VehicleType, CreateRequest, UpdateRequest]

func NewService(repo crud.Repository[VehicleType], audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return crud.NewService[VehicleType, *VehicleType](repo, crud.Hooks[VehicleType, CreateRequest, UpdateRequest]{
		Entity: "vehicle_type",
		Build:  build,
		Patch:  patch,
	}, audit, logger)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func build(_ context.Context, req CreateRequest) (VehicleType, error) {
	vt := VehicleType{
		Code:     normalizeCode(req.Code),
		Name:     strings.TrimSpace(req.Name),
		Capacity: req.Capacity,
	}
	if vt.Code == "" || vt.Name == "" {
		return VehicleType{}, ErrFieldRequired
	}
	if vt.Capacity <= 0 {
		return VehicleType{}, ErrCapacity
	}
	return vt, nil
}

func patch(_ context.Context, vt *VehicleType, req UpdateRequest) error {
	if req.Code == nil && req.Name == nil && req.Capacity == nil {
		return crud.ErrNoChanges
	}
	if req.Code != nil {
		vt.Code = normalizeCode(*req.Code)
	}
	if req.Name != nil {
		vt.Name = strings.TrimSpace(*req.Name)
	}
	if req.Capacity != nil {
		vt.Capacity = *req.Capacity
	}
	if vt.Code == "" || vt.Name == "" {
		return ErrFieldRequired
	}
	if vt.Capacity <= 0 {
		return ErrCapacity
	}
	return nil
}
