package crud

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/amexing/amexing-ops/internal/shared"
)

// Hooks supply the resource specific rules to a Service.
type Hooks[T any, C any, U any] struct {
	// Entity names the resource in audit entries and logs.
	Entity string
	// Build validates a create payload and returns the new row.
	Build func(ctx context.Context, req C) (T, error)
	// Patch applies a partial update in place. It returns ErrNoChanges when
	// req carries nothing.
	Patch func(ctx context.Context, current *T, req U) error
	// Check runs before every insert and update. Optional.
	Check func(ctx context.Context, v T) error
}

// Service implements the uniform catalog contract on top of a Repository.
type Service[T any, P Model[T], C any, U any] struct {
	repo   Repository[T]
	hooks  Hooks[T, C, U]
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService constructs a Service. audit may be nil.
func NewService[T any, P Model[T], C any, U any](repo Repository[T], hooks Hooks[T, C, U], audit shared.AuditRecorder, logger *slog.Logger) *Service[T, P, C, U] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service[T, P, C, U]{repo: repo, hooks: hooks, audit: audit, logger: logger}
}

func (s *Service[T, P, C, U]) record(ctx context.Context, actor shared.Actor, action string, id int64, meta map[string]any) {
	shared.RecordBestEffort(ctx, s.logger, s.audit, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   s.hooks.Entity + "." + action,
		Entity:   s.hooks.Entity,
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

// List returns a grid page.
func (s *Service[T, P, C, U]) List(ctx context.Context, filters ListFilters) ([]T, int, int, error) {
	rows, total, filtered, err := s.repo.List(ctx, filters)
	if err != nil {
		s.logger.ErrorContext(ctx, "list "+s.hooks.Entity, slog.Any("error", err))
		return nil, 0, 0, err
	}
	return rows, total, filtered, nil
}

// Get returns a non-deleted row.
func (s *Service[T, P, C, U]) Get(ctx context.Context, id int64) (T, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a new active row.
func (s *Service[T, P, C, U]) Create(ctx context.Context, actor shared.Actor, req C) (T, error) {
	var zero T
	v, err := s.hooks.Build(ctx, req)
	if err != nil {
		return zero, err
	}
	if s.hooks.Check != nil {
		if err := s.hooks.Check(ctx, v); err != nil {
			return zero, err
		}
	}
	created, err := s.repo.Insert(ctx, v)
	if err != nil {
		s.logger.WarnContext(ctx, "create "+s.hooks.Entity, slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return zero, err
	}
	id := P(&created).Meta().ID
	s.record(ctx, actor, "create", id, nil)
	s.logger.InfoContext(ctx, s.hooks.Entity+" created", slog.Int64("id", id), slog.Int64("actor_id", actor.ID))
	return created, nil
}

// Update applies a partial update.
func (s *Service[T, P, C, U]) Update(ctx context.Context, actor shared.Actor, id int64, req U) (T, error) {
	var zero T
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := s.hooks.Patch(ctx, &current, req); err != nil {
		return zero, err
	}
	if s.hooks.Check != nil {
		if err := s.hooks.Check(ctx, current); err != nil {
			return zero, err
		}
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		s.logger.WarnContext(ctx, "update "+s.hooks.Entity, slog.Int64("id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return zero, err
	}
	s.record(ctx, actor, "update", id, nil)
	return updated, nil
}

// ToggleStatus switches a row between active and inactive.
func (s *Service[T, P, C, U]) ToggleStatus(ctx context.Context, actor shared.Actor, id int64, active bool) (T, error) {
	var zero T
	state := StateFor(active)
	if err := s.repo.SetState(ctx, id, state); err != nil {
		s.logger.WarnContext(ctx, "toggle "+s.hooks.Entity, slog.Int64("id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return zero, err
	}
	s.record(ctx, actor, "toggle", id, map[string]any{"active": active})
	return s.repo.Get(ctx, id)
}

// Delete soft deletes a row.
func (s *Service[T, P, C, U]) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	if err := s.repo.SetState(ctx, id, shared.StateDeleted); err != nil {
		s.logger.WarnContext(ctx, "delete "+s.hooks.Entity, slog.Int64("id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return err
	}
	s.record(ctx, actor, "delete", id, nil)
	s.logger.InfoContext(ctx, s.hooks.Entity+" deleted", slog.Int64("id", id), slog.Int64("actor_id", actor.ID))
	return nil
}
