package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Repository adds the route tuple lookup to the catalog contract.
type Repository interface {
	crud.Repository[Service]
	// RouteTaken reports whether a non-deleted service other than excludeID
	// already uses key. Inactive rows count.
	RouteTaken(ctx context.Context, key RouteKey, excludeID int64) (bool, error)
}

// Catalog is the services catalog service.
type Catalog = crud.Service[Service, *Service, CreateRequest, UpdateRequest]

// NewCatalog wires the route rules into the shared catalog service.
func NewCatalog(repo Repository, audit shared.AuditRecorder, logger *slog.Logger) *Catalog {
	return crud.NewService[Service, *Service](repo, crud.Hooks[Service, CreateRequest, UpdateRequest]{
		Entity: "service",
		Build:  build,
		Patch:  patch,
		Check: func(ctx context.Context, s Service) error {
			return check(ctx, repo, s)
		},
	}, audit, logger)
}

func normalizeCurrency(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultCurrency, nil
	}
	unit, err := currency.ParseISO(raw)
	if err != nil {
		return "", crud.ErrInvalidCurrency.Wrap(err)
	}
	return unit.String(), nil
}

func build(_ context.Context, req CreateRequest) (Service, error) {
	cur, err := normalizeCurrency(req.Currency)
	if err != nil {
		return Service{}, err
	}
	return Service{
		OriginPOIID:      req.OriginPOIID,
		DestinationPOIID: req.DestinationPOIID,
		VehicleTypeID:    req.VehicleTypeID,
		RateID:           req.RateID,
		Price:            req.Price.Round(2),
		Currency:         cur,
		IsRoundTrip:      req.IsRoundTrip,
		Note:             strings.TrimSpace(req.Note),
	}, nil
}

func patch(_ context.Context, s *Service, req UpdateRequest) error {
	if req == (UpdateRequest{}) {
		return crud.ErrNoChanges
	}
	switch {
	case req.ClearOrigin:
		s.OriginPOIID = nil
	case req.OriginPOIID != nil:
		s.OriginPOIID = req.OriginPOIID
	}
	if req.DestinationPOIID != nil {
		s.DestinationPOIID = *req.DestinationPOIID
	}
	if req.VehicleTypeID != nil {
		s.VehicleTypeID = *req.VehicleTypeID
	}
	if req.RateID != nil {
		s.RateID = *req.RateID
	}
	if req.Price != nil {
		s.Price = req.Price.Round(2)
	}
	if req.Currency != nil {
		cur, err := normalizeCurrency(*req.Currency)
		if err != nil {
			return err
		}
		s.Currency = cur
	}
	if req.IsRoundTrip != nil {
		s.IsRoundTrip = *req.IsRoundTrip
	}
	if req.Note != nil {
		s.Note = strings.TrimSpace(*req.Note)
	}
	return nil
}

// check validates the row and rejects a duplicate route. The partial unique
// index on services backs this check up under concurrent writers.
func check(ctx context.Context, repo Repository, s Service) error {
	if !s.Price.GreaterThan(decimal.Zero) {
		return ErrInvalidPrice
	}
	if s.OriginPOIID != nil && *s.OriginPOIID == s.DestinationPOIID {
		return ErrSameEndpoint
	}
	taken, err := repo.RouteTaken(ctx, s.Key(), s.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrRouteTaken
	}
	return nil
}
