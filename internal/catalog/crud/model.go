// Package crud holds the list/get/create/update/toggle/delete plumbing shared
// by the catalog resources and clients.
package crud

import (
	"time"

	"github.com/amexing/amexing-ops/internal/platform/httpx"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Base carries the columns every catalog row has. Active and Exists mirror
// State for clients that still read the flag pair.
type Base struct {
	ID        int64              `json:"id"`
	State     shared.RecordState `json:"-"`
	Active    bool               `json:"active"`
	Exists    bool               `json:"exists"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Meta returns the embedded base.
func (b *Base) Meta() *Base { return b }

// SetState updates State and the derived flags.
func (b *Base) SetState(s shared.RecordState) {
	b.State = s
	b.Active = s.Active()
	b.Exists = s.Exists()
}

// Model is satisfied by pointers to structs that embed Base.
type Model[T any] interface {
	*T
	Meta() *Base
}

// ListFilters combine the grid parameters with an optional active filter.
type ListFilters struct {
	httpx.DataTablesRequest
	Active *bool
}

// ToggleRequest is the payload of PATCH /{id}/toggle-status.
type ToggleRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// StateFor maps the toggle flag onto a RecordState.
func StateFor(active bool) shared.RecordState {
	if active {
		return shared.StateActive
	}
	return shared.StateInactive
}
