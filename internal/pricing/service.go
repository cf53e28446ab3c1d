package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amexing/amexing-ops/internal/shared"
)

const maxNoteLength = 500

// Service manages the adjustment series.
type Service struct {
	repo    Repository
	cache   *Cache
	audit   shared.AuditRecorder
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs a Service. cache, audit and metrics may be nil.
func NewService(repo Repository, cache *Cache, audit shared.AuditRecorder, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, audit: audit, metrics: metrics, logger: logger, now: time.Now}
}

// Create validates and records a new adjustment, superseding the previous
// active one of the same kind atomically.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateRequest) (Adjustment, error) {
	adj, err := s.prepare(req)
	if err != nil {
		return Adjustment{}, err
	}
	adj.CreatedBy = actor.IDPtr()

	var (
		created     Adjustment
		deactivated int64
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockKind(ctx, adj.Kind); err != nil {
			return err
		}
		n, err := tx.DeactivateActive(ctx, adj.Kind)
		if err != nil {
			return err
		}
		deactivated = n
		created, err = tx.Insert(ctx, adj)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "create price adjustment",
			slog.String("kind", string(adj.Kind)),
			slog.Int64("actor_id", actor.ID),
			slog.Any("error", err),
		)
		if errors.Is(err, shared.ErrConflict) {
			return Adjustment{}, err
		}
		return Adjustment{}, fmt.Errorf("pricing: create %s: %w", adj.Kind, err)
	}
	created.CreatedByName = actor.Name

	if err := s.cache.Invalidate(ctx, adj.Kind); err != nil {
		s.logger.WarnContext(ctx, "invalidate pricing cache", slog.Any("error", err))
	}
	s.metrics.recordCreated(adj.Kind)
	shared.RecordBestEffort(ctx, s.logger, s.audit, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "price_adjustment.create",
		Entity:   "price_adjustment",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta: map[string]any{
			"kind":        string(adj.Kind),
			"value":       adj.Value.String(),
			"currency":    adj.Currency,
			"deactivated": deactivated,
		},
	})
	s.logger.InfoContext(ctx, "price adjustment created",
		slog.String("kind", string(adj.Kind)),
		slog.Int64("id", created.ID),
		slog.String("value", adj.Value.String()),
		slog.Int64("actor_id", actor.ID),
	)
	return created, nil
}

// prepare validates the request and builds the row to insert.
func (s *Service) prepare(req CreateRequest) (Adjustment, error) {
	if _, err := ParseKind(string(req.Kind)); err != nil {
		return Adjustment{}, err
	}
	if req.Value == nil {
		return Adjustment{}, ErrValueRequired
	}
	if !IsValidValue(*req.Value) {
		return Adjustment{}, ErrValueOutOfRange
	}
	note := strings.TrimSpace(req.Note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return Adjustment{}, ErrNoteTooLong
	}

	adj := Adjustment{
		Kind:  req.Kind,
		Value: req.Value.Round(4),
		Note:  note,
		State: shared.StateActive,
	}
	if req.Kind.UsesCurrency() {
		cur, err := NormalizeCurrency(strings.ToUpper(strings.TrimSpace(req.Currency)))
		if err != nil {
			return Adjustment{}, err
		}
		adj.Currency = cur
	}
	effective, err := parseEffectiveDate(req.EffectiveDate, s.now())
	if err != nil {
		return Adjustment{}, err
	}
	adj.EffectiveDate = &effective
	return adj, nil
}

// parseEffectiveDate accepts YYYY-MM-DD or RFC 3339; blank means today.
func parseEffectiveDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrInvalidEffectiveDate.Wrap(err)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// Current returns the active adjustment for kind, or nil when none exists.
func (s *Service) Current(ctx context.Context, kind Kind) (*Adjustment, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	adj, err := s.cache.Current(ctx, kind, func(ctx context.Context) (*Adjustment, error) {
		return s.repo.Current(ctx, kind)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "load current price adjustment", slog.String("kind", string(kind)), slog.Any("error", err))
		return nil, err
	}
	return adj, nil
}

// CurrentAll returns the active adjustment of every kind; kinds without one
// map to nil.
func (s *Service) CurrentAll(ctx context.Context) (map[Kind]*Adjustment, error) {
	rows, err := s.repo.CurrentAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "load current price adjustments", slog.Any("error", err))
		return nil, err
	}
	out := make(map[Kind]*Adjustment, len(Kinds))
	for _, k := range Kinds {
		out[k] = nil
	}
	for i := range rows {
		adj := rows[i]
		if existing := out[adj.Kind]; existing == nil || adj.CreatedAt.After(existing.CreatedAt) {
			out[adj.Kind] = &adj
		}
	}
	return out, nil
}

// History returns a page of the series for kind.
func (s *Service) History(ctx context.Context, kind Kind, filters HistoryFilters) ([]Adjustment, shared.Pagination, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, shared.Pagination{}, err
	}
	filters.Page, filters.Limit = shared.NormalizePage(filters.Page, filters.Limit)
	filters.Search = strings.TrimSpace(filters.Search)
	items, total, err := s.repo.History(ctx, kind, filters)
	if err != nil {
		s.logger.ErrorContext(ctx, "list price adjustment history", slog.String("kind", string(kind)), slog.Any("error", err))
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, filters.Limit, total), nil
}

// Delete soft deletes a historical adjustment. The active one can only be
// superseded, never deleted.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, kind Kind, id int64) error {
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockKind(ctx, kind); err != nil {
			return err
		}
		adj, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if adj.Kind != kind || adj.State == shared.StateDeleted {
			return ErrNotFound
		}
		if adj.State == shared.StateActive {
			return ErrDeleteActive
		}
		return tx.SetState(ctx, id, shared.StateDeleted)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "delete price adjustment",
			slog.Int64("id", id),
			slog.String("kind", string(kind)),
			slog.Int64("actor_id", actor.ID),
			slog.Any("error", err),
		)
		return err
	}
	s.metrics.recordDeleted(kind)
	shared.RecordBestEffort(ctx, s.logger, s.audit, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "price_adjustment.delete",
		Entity:   "price_adjustment",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"kind": string(kind)},
	})
	return nil
}
