package rates

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

type Service = crud.Service[Rate, *Rate, CreateRequest, UpdateRequest]

func NewService(repo crud.Repository[Rate], audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return crud.NewService[Rate, *Rate](repo, crud.Hooks[Rate, CreateRequest, UpdateRequest]{
		Entity: "rate",
		Build:  build,
		Patch:  patch,
	}, audit, logger)
}

func normalizeColor(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return DefaultColor
	}
	return c
}

func build(_ context.Context, req CreateRequest) (Rate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Rate{}, ErrNameRequired
	}
	return Rate{Name: name, Color: normalizeColor(req.Color)}, nil
}

func patch(_ context.Context, r *Rate, req UpdateRequest) error {
	if req.Name == nil && req.Color == nil {
		return crud.ErrNoChanges
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return ErrNameRequired
		}
		r.Name = name
	}
	if req.Color != nil {
		r.Color = normalizeColor(*req.Color)
	}
	return nil
}
