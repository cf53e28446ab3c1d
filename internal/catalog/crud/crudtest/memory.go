// Package crudtest provides an in-memory crud.Repository for tests.
package crudtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Memory is a map backed crud.Repository. Unique, when set, reports whether
// two rows clash on a unique column; Match implements the grid search.
type Memory[T any, P crud.Model[T]] struct {
	mu       sync.Mutex
	rows     map[int64]T
	nextID   int64
	NotFound error
	Conflict error
	Unique   func(a, b T) bool
	Match    func(v T, term string) bool
	Fail     error
}

// New returns an empty Memory.
func New[T any, P crud.Model[T]](notFound error) *Memory[T, P] {
	return &Memory[T, P]{rows: map[int64]T{}, NotFound: notFound}
}

// Seed stores v with the next id and the given state.
func (m *Memory[T, P]) Seed(v T, state shared.RecordState) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	base := P(&v).Meta()
	base.ID = m.nextID
	base.SetState(state)
	base.CreatedAt = time.Now()
	base.UpdatedAt = base.CreatedAt
	m.rows[base.ID] = v
	return v
}

// Raw returns the stored row regardless of state.
func (m *Memory[T, P]) Raw(id int64) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	return v, ok
}

// Live returns every non-deleted row ordered by id.
func (m *Memory[T, P]) Live() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live()
}

func (m *Memory[T, P]) live() []T {
	out := make([]T, 0, len(m.rows))
	for _, v := range m.rows {
		if P(&v).Meta().State != shared.StateDeleted {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return P(&out[i]).Meta().ID < P(&out[j]).Meta().ID })
	return out
}

func (m *Memory[T, P]) clash(v T) bool {
	if m.Unique == nil {
		return false
	}
	id := P(&v).Meta().ID
	for _, other := range m.live() {
		if P(&other).Meta().ID != id && m.Unique(v, other) {
			return true
		}
	}
	return false
}

func (m *Memory[T, P]) Get(_ context.Context, id int64) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	v, ok := m.rows[id]
	if !ok || P(&v).Meta().State == shared.StateDeleted {
		return zero, m.NotFound
	}
	return v, nil
}

func (m *Memory[T, P]) List(_ context.Context, f crud.ListFilters) ([]T, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, 0, 0, m.Fail
	}
	all := m.live()
	var filtered []T
	for _, v := range all {
		if f.Active != nil && P(&v).Meta().State != crud.StateFor(*f.Active) {
			continue
		}
		if f.Search != "" && m.Match != nil && !m.Match(v, f.Search) {
			continue
		}
		filtered = append(filtered, v)
	}
	page := filtered
	if f.Start < len(page) {
		page = page[f.Start:]
	} else {
		page = nil
	}
	if f.Length > 0 && len(page) > f.Length {
		page = page[:f.Length]
	}
	return page, len(all), len(filtered), nil
}

func (m *Memory[T, P]) Insert(_ context.Context, v T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if m.Fail != nil {
		return zero, m.Fail
	}
	if m.clash(v) {
		return zero, m.Conflict
	}
	m.nextID++
	base := P(&v).Meta()
	base.ID = m.nextID
	base.SetState(shared.StateActive)
	base.CreatedAt = time.Now()
	base.UpdatedAt = base.CreatedAt
	m.rows[base.ID] = v
	return v, nil
}

func (m *Memory[T, P]) Update(_ context.Context, v T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	base := P(&v).Meta()
	current, ok := m.rows[base.ID]
	if !ok || P(&current).Meta().State == shared.StateDeleted {
		return zero, m.NotFound
	}
	if m.clash(v) {
		return zero, m.Conflict
	}
	base.SetState(P(&current).Meta().State)
	base.UpdatedAt = time.Now()
	m.rows[base.ID] = v
	return v, nil
}

func (m *Memory[T, P]) SetState(_ context.Context, id int64, state shared.RecordState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok || P(&v).Meta().State == shared.StateDeleted {
		return m.NotFound
	}
	P(&v).Meta().SetState(state)
	m.rows[id] = v
	return nil
}
