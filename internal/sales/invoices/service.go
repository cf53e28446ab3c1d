package invoices

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/amexing/amexing-ops/internal/shared"
)

// Notifier is told about completed requests so the requester can be emailed.
type Notifier interface {
	InvoiceCompleted(ctx context.Context, inv Invoice) error
}

// Service drives the pending -> completed | cancelled lifecycle.
type Service struct {
	repo     Repository
	audit    shared.AuditRecorder
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service. audit and notifier may be nil.
func NewService(repo Repository, audit shared.AuditRecorder, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, notifier: notifier, logger: logger, now: time.Now}
}

// Get returns a single request.
func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of requests for the grid.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Invoice, int, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, 0, ErrInvalidStatusFilter
	}
	rows, total, filtered, err := s.repo.List(ctx, filters)
	if err != nil {
		s.logger.ErrorContext(ctx, "list invoice requests", slog.Any("error", err))
		return nil, 0, 0, err
	}
	return rows, total, filtered, nil
}

// lockPending loads the request, locks its quote and then the request row,
// and checks it is still pending.
func lockPending(ctx context.Context, tx TxRepository, id int64, notPending error) (Invoice, error) {
	inv, err := tx.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if err := tx.LockQuote(ctx, inv.QuoteID); err != nil {
		return Invoice{}, err
	}
	inv, err = tx.GetForUpdate(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status != StatusPending {
		return Invoice{}, notPending
	}
	return inv, nil
}

// Complete records the issued invoice number for a pending request.
func (s *Service) Complete(ctx context.Context, actor shared.Actor, id int64, req CompleteRequest) (Invoice, error) {
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return Invoice{}, ErrInvoiceNumberRequired
	}
	notes := strings.TrimSpace(req.Notes)
	at := s.now().UTC()

	var inv Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		inv, err = lockPending(ctx, tx, id, ErrCompleteNotPending)
		if err != nil {
			return err
		}
		return tx.Complete(ctx, id, number, notes, actor.IDPtr(), at)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "complete invoice request",
			slog.Int64("id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return Invoice{}, err
	}
	inv.Status = StatusCompleted
	inv.InvoiceNumber = number
	inv.Notes = notes
	inv.ProcessDate = &at
	inv.ProcessedBy = actor.IDPtr()
	inv.ProcessedByName = actor.Name

	shared.RecordBestEffort(ctx, s.logger, s.audit, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "invoice.complete",
		Entity:   "invoice_request",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"quote_id": inv.QuoteID, "invoice_number": number},
	})
	if s.notifier != nil {
		if err := s.notifier.InvoiceCompleted(ctx, inv); err != nil {
			s.logger.WarnContext(ctx, "notify invoice completed", slog.Int64("id", id), slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "invoice request completed",
		slog.Int64("id", id), slog.Int64("quote_id", inv.QuoteID), slog.Int64("actor_id", actor.ID))
	return inv, nil
}

// Cancel cancels a pending request and clears the quote's request stamp in
// the same transaction.
func (s *Service) Cancel(ctx context.Context, actor shared.Actor, id int64, reason string) (Invoice, error) {
	reason = strings.TrimSpace(reason)
	at := s.now().UTC()

	var inv Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		inv, err = lockPending(ctx, tx, id, ErrCancelNotPending)
		if err != nil {
			return err
		}
		if err := tx.Cancel(ctx, id, reason, actor.IDPtr(), at); err != nil {
			return err
		}
		return tx.ClearQuoteInvoiceFlags(ctx, inv.QuoteID)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "cancel invoice request",
			slog.Int64("id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return Invoice{}, err
	}
	inv.Status = StatusCancelled
	inv.CancelReason = reason
	inv.ProcessDate = &at
	inv.ProcessedBy = actor.IDPtr()
	inv.ProcessedByName = actor.Name

	shared.RecordBestEffort(ctx, s.logger, s.audit, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "invoice.cancel",
		Entity:   "invoice_request",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"quote_id": inv.QuoteID, "reason": reason},
	})
	s.logger.InfoContext(ctx, "invoice request cancelled",
		slog.Int64("id", id), slog.Int64("quote_id", inv.QuoteID), slog.Int64("actor_id", actor.ID))
	return inv, nil
}
