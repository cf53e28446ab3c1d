package experiences

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

type Service = crud.Service[Experience, *Experience, CreateRequest, UpdateRequest]

func NewService(repo crud.Repository[Experience], audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return crud.NewService[Experience, *Experience](repo, crud.Hooks[Experience, CreateRequest, UpdateRequest]{
		Entity: "experience",
		Build:  build,
		Patch:  patch,
		Check:  check,
	}, audit, logger)
}

func parseKind(raw string) (Kind, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return KindExperience, nil
	}
	k := Kind(raw)
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

func check(_ context.Context, e Experience) error {
	if e.Name == "" {
		return ErrNameRequired
	}
	if e.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

func build(_ context.Context, req CreateRequest) (Experience, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return Experience{}, err
	}
	return Experience{
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price.Round(2),
		DurationMinutes: req.DurationMinutes,
		Kind:            kind,
	}, nil
}

func patch(_ context.Context, e *Experience, req UpdateRequest) error {
	if req == (UpdateRequest{}) {
		return crud.ErrNoChanges
	}
	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		e.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		e.Price = req.Price.Round(2)
	}
	if req.DurationMinutes != nil {
		e.DurationMinutes = *req.DurationMinutes
	}
	if req.Kind != nil {
		kind, err := parseKind(*req.Kind)
		if err != nil {
			return err
		}
		e.Kind = kind
	}
	return nil
}
