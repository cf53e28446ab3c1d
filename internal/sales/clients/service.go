package clients

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Service is the clients service.
type Service = crud.Service[Client, *Client, CreateRequest, UpdateRequest]

// NewService constructs the clients service.
func NewService(repo crud.Repository[Client], audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return crud.NewService[Client, *Client](repo, crud.Hooks[Client, CreateRequest, UpdateRequest]{
		Entity: "client",
		Build:  build,
		Patch:  patch,
	}, audit, logger)
}

func build(_ context.Context, req CreateRequest) (Client, error) {
	c := Client{
		CompanyName: strings.TrimSpace(req.CompanyName),
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		TaxID:       strings.ToUpper(strings.TrimSpace(req.TaxID)),
	}
	if c.CompanyName == "" {
		return Client{}, ErrCompanyRequired
	}
	return c, nil
}

func patch(_ context.Context, c *Client, req UpdateRequest) error {
	if req == (UpdateRequest{}) {
		return crud.ErrNoChanges
	}
	if req.CompanyName != nil {
		name := strings.TrimSpace(*req.CompanyName)
		if name == "" {
			return ErrCompanyRequired
		}
		c.CompanyName = name
	}
	if req.ContactName != nil {
		c.ContactName = strings.TrimSpace(*req.ContactName)
	}
	if req.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.TaxID != nil {
		c.TaxID = strings.ToUpper(strings.TrimSpace(*req.TaxID))
	}
	return nil
}
