package pois

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Service is the POI catalog service.
type Service = crud.Service[POI, *POI, CreateRequest, UpdateRequest]

// NewService wires the POI rules into the shared catalog service.
func NewService(repo crud.Repository[POI], audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return crud.NewService[POI, *POI](repo, crud.Hooks[POI, CreateRequest, UpdateRequest]{
		Entity: "poi",
		Build:  build,
		Patch:  patch,
	}, audit, logger)
}

func checkCoordinates(lat, lng *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return ErrCoordinates
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return ErrCoordinates
	}
	return nil
}

func build(_ context.Context, req CreateRequest) (POI, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return POI{}, ErrNameRequired
	}
	if err := checkCoordinates(req.Latitude, req.Longitude); err != nil {
		return POI{}, err
	}
	return POI{
		Name:      name,
		Address:   strings.TrimSpace(req.Address),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}, nil
}

func patch(_ context.Context, p *POI, req UpdateRequest) error {
	if req.Name == nil && req.Address == nil && req.Latitude == nil && req.Longitude == nil {
		return crud.ErrNoChanges
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return ErrNameRequired
		}
		p.Name = name
	}
	if req.Address != nil {
		p.Address = strings.TrimSpace(*req.Address)
	}
	if err := checkCoordinates(req.Latitude, req.Longitude); err != nil {
		return err
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	return nil
}
