package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amexing/amexing-ops/internal/sales/invoices"
	"github.com/amexing/amexing-ops/internal/shared"
)

var errReceiptsDisabled = errors.New("quotes: receipt renderer not configured")

// DefaultCurrency applies to quotes created without one.
const DefaultCurrency = "MXN"

// Notifier is told about new invoice requests so administrators can be
// emailed.
type Notifier interface {
	InvoiceRequested(ctx context.Context, q Quote, inv invoices.Invoice) error
}

// Config carries the tax rate and receipt payment details.
type Config struct {
	IVARate decimal.Decimal
	Payment PaymentInfo
}

// Service implements the quote lifecycle.
type Service struct {
	repo     Repository
	receipts ReceiptRenderer
	cfg      Config
	audit    shared.AuditRecorder
	notifier Notifier
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service. receipts, audit, notifier and metrics may
// be nil.
func NewService(repo Repository, receipts ReceiptRenderer, cfg Config, audit shared.AuditRecorder, notifier Notifier, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		receipts: receipts,
		cfg:      cfg,
		audit:    audit,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) record(ctx context.Context, actor shared.Actor, action string, id int64, meta map[string]any) {
	shared.RecordBestEffort(ctx, s.logger, s.audit, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "quote",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, ErrInvalidDate.Wrap(err)
	}
	return &t, nil
}

// priceItems computes line totals, subtotal, IVA and total.
func priceItems(days []DayRequest, ivaRate decimal.Decimal) (ServiceItems, error) {
	if len(days) == 0 {
		return ServiceItems{}, ErrNoItems
	}
	out := ServiceItems{Days: make([]ServiceDay, 0, len(days))}
	subtotal := decimal.Zero
	count := 0
	for _, d := range days {
		day := ServiceDay{Date: strings.TrimSpace(d.Date), Items: make([]ServiceItem, 0, len(d.Items))}
		if day.Date != "" {
			if _, err := time.Parse(time.DateOnly, day.Date); err != nil {
				return ServiceItems{}, ErrInvalidDate.Wrap(err)
			}
		}
		for _, it := range d.Items {
			desc := strings.TrimSpace(it.Description)
			if desc == "" || it.Quantity <= 0 || !it.UnitPrice.IsPositive() {
				return ServiceItems{}, ErrInvalidItem
			}
			unit := it.UnitPrice.Round(2)
			total := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
			day.Items = append(day.Items, ServiceItem{
				ServiceID:   it.ServiceID,
				Description: desc,
				Quantity:    it.Quantity,
				UnitPrice:   unit,
				Total:       total,
			})
			subtotal = subtotal.Add(total)
			count++
		}
		out.Days = append(out.Days, day)
	}
	if count == 0 {
		return ServiceItems{}, ErrNoItems
	}
	out.Subtotal = subtotal
	out.IVA = subtotal.Mul(ivaRate).Round(2)
	out.Total = out.Subtotal.Add(out.IVA)
	return out, nil
}

// Create prices the itinerary, assigns the next folio and stores the quote
// as requested.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateRequest) (Quote, error) {
	if req.NumberOfPeople <= 0 {
		return Quote{}, ErrInvalidPeople
	}
	items, err := priceItems(req.Days, s.cfg.IVARate)
	if err != nil {
		return Quote{}, err
	}
	validUntil, err := parseDate(req.ValidUntil)
	if err != nil {
		return Quote{}, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	clientID := req.ClientID
	quote := Quote{
		Status:         StatusRequested,
		ClientID:       &clientID,
		RateID:         req.RateID,
		NumberOfPeople: req.NumberOfPeople,
		ContactPerson:  strings.TrimSpace(req.ContactPerson),
		ContactEmail:   strings.TrimSpace(req.ContactEmail),
		ContactPhone:   strings.TrimSpace(req.ContactPhone),
		ServiceItems:   items,
		Currency:       currency,
		ValidUntil:     validUntil,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedBy:      actor.IDPtr(),
	}

	now := s.now()
	var created Quote
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ok, err := tx.ClientActive(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrClientNotFound
		}
		key := "quote:" + now.Format("0601")
		n, err := tx.NextSequence(ctx, key)
		if err != nil {
			return err
		}
		quote.Folio = fmt.Sprintf("QT-%s-%04d", now.Format("0601"), n)
		created, err = tx.Insert(ctx, quote)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "create quote", slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return Quote{}, err
	}
	created.CreatedByName = actor.Name
	s.record(ctx, actor, "quote.create", created.ID, map[string]any{
		"folio": created.Folio,
		"total": created.ServiceItems.Total.String(),
	})
	s.logger.InfoContext(ctx, "quote created", slog.Int64("id", created.ID), slog.String("folio", created.Folio), slog.Int64("actor_id", actor.ID))
	return created, nil
}

// Get returns a non-deleted quote.
func (s *Service) Get(ctx context.Context, id int64) (Quote, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of quotes for the grid.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Quote, int, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, 0, ErrInvalidStatus
	}
	rows, total, filtered, err := s.repo.List(ctx, filters)
	if err != nil {
		s.logger.ErrorContext(ctx, "list quotes", slog.Any("error", err))
		return nil, 0, 0, err
	}
	return rows, total, filtered, nil
}

// checkTransition applies the status rules shared by UpdateStatus and
// Update. A scheduled quote only leaves that state through
// CancelReservation.
func checkTransition(from, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if from == to {
		return nil
	}
	if from == StatusScheduled {
		return ErrScheduledLocked
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition.WithMessage(fmt.Sprintf("No se puede cambiar de %s a %s", from.Label(), to.Label()))
	}
	return nil
}

// UpdateStatus moves a quote along the transition table. Same-status
// updates are no-ops.
func (s *Service) UpdateStatus(ctx context.Context, actor shared.Actor, id int64, status Status, reason string) (StatusChange, error) {
	if !status.Valid() {
		return StatusChange{}, ErrInvalidStatus
	}
	var change StatusChange
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		quote, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		change = StatusChange{Quote: quote, Previous: quote.Status, New: status}
		if quote.Status == status {
			return nil
		}
		if err := checkTransition(quote.Status, status); err != nil {
			return err
		}
		if err := tx.Update(ctx, id, UpdateFields{Status: &status}); err != nil {
			return err
		}
		change.Quote.Status = status
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "update quote status",
			slog.Int64("id", id), slog.String("status", string(status)), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return StatusChange{}, err
	}
	if change.Previous != change.New {
		s.metrics.transition(change.Previous, change.New)
		s.record(ctx, actor, "quote.status", id, map[string]any{
			"from":   string(change.Previous),
			"to":     string(change.New),
			"reason": strings.TrimSpace(reason),
		})
		s.logger.InfoContext(ctx, "quote status changed",
			slog.Int64("id", id),
			slog.String("from", string(change.Previous)),
			slog.String("to", string(change.New)),
			slog.Int64("actor_id", actor.ID),
		)
	}
	return change, nil
}

// Update applies a whitelisted partial update.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateRequest) (Quote, error) {
	if req.empty() {
		return Quote{}, ErrNoChanges
	}
	fields := UpdateFields{
		ContactPerson: trimmed(req.ContactPerson),
		ContactEmail:  trimmed(req.ContactEmail),
		ContactPhone:  trimmed(req.ContactPhone),
		Notes:         trimmed(req.Notes),
	}
	if req.NumberOfPeople != nil {
		if *req.NumberOfPeople <= 0 {
			return Quote{}, ErrInvalidPeople
		}
		fields.NumberOfPeople = req.NumberOfPeople
	}
	if req.ValidUntil != nil {
		t, err := parseDate(*req.ValidUntil)
		if err != nil {
			return Quote{}, err
		}
		fields.ValidUntil = t
		fields.ClearValidUntil = t == nil
	}
	var target *Status
	if req.Status != nil {
		st := Status(strings.ToLower(strings.TrimSpace(*req.Status)))
		if !st.Valid() {
			return Quote{}, ErrInvalidStatus
		}
		target = &st
	}

	var (
		updated  Quote
		previous Status
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		quote, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous = quote.Status
		if target != nil && *target != quote.Status {
			if err := checkTransition(quote.Status, *target); err != nil {
				return err
			}
			fields.Status = target
		}
		if err := tx.Update(ctx, id, fields); err != nil {
			return err
		}
		updated = applyFields(quote, fields)
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "update quote", slog.Int64("id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return Quote{}, err
	}
	if fields.Status != nil {
		s.metrics.transition(previous, *fields.Status)
	}
	s.record(ctx, actor, "quote.update", id, map[string]any{
		"fields": changedFields(fields),
		"reason": strings.TrimSpace(req.Reason),
	})
	return updated, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func applyFields(q Quote, f UpdateFields) Quote {
	if f.Status != nil {
		q.Status = *f.Status
	}
	if f.NumberOfPeople != nil {
		q.NumberOfPeople = *f.NumberOfPeople
	}
	if f.ContactPerson != nil {
		q.ContactPerson = *f.ContactPerson
	}
	if f.ContactEmail != nil {
		q.ContactEmail = *f.ContactEmail
	}
	if f.ContactPhone != nil {
		q.ContactPhone = *f.ContactPhone
	}
	if f.ClearValidUntil {
		q.ValidUntil = nil
	} else if f.ValidUntil != nil {
		q.ValidUntil = f.ValidUntil
	}
	if f.Notes != nil {
		q.Notes = *f.Notes
	}
	return q
}

func changedFields(f UpdateFields) []string {
	var out []string
	if f.Status != nil {
		out = append(out, "status")
	}
	if f.NumberOfPeople != nil {
		out = append(out, "numberOfPeople")
	}
	if f.ContactPerson != nil {
		out = append(out, "contactPerson")
	}
	if f.ContactEmail != nil {
		out = append(out, "contactEmail")
	}
	if f.ContactPhone != nil {
		out = append(out, "contactPhone")
	}
	if f.ValidUntil != nil || f.ClearValidUntil {
		out = append(out, "validUntil")
	}
	if f.Notes != nil {
		out = append(out, "notes")
	}
	return out
}

// SoftDelete hides the quote from every read.
func (s *Service) SoftDelete(ctx context.Context, actor shared.Actor, id int64, reason string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetForUpdate(ctx, id); err != nil {
			return err
		}
		return tx.SetState(ctx, id, shared.StateDeleted)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "delete quote", slog.Int64("id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return err
	}
	s.record(ctx, actor, "quote.delete", id, map[string]any{"reason": strings.TrimSpace(reason)})
	return nil
}

// RequestInvoice opens a pending invoice request for a scheduled quote and
// stamps the quote, both in one transaction.
func (s *Service) RequestInvoice(ctx context.Context, actor shared.Actor, id int64) (invoices.Invoice, error) {
	at := s.now().UTC()
	var (
		quote Quote
		inv   invoices.Invoice
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		quote, err = tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if quote.Status != StatusScheduled {
			return ErrNotScheduled.WithMessage("Solo se puede solicitar factura de cotizaciones programadas")
		}
		pending, err := tx.HasPendingInvoice(ctx, id)
		if err != nil {
			return err
		}
		if pending {
			return invoices.ErrPendingExists
		}
		inv, err = tx.InsertPendingInvoice(ctx, id, actor.IDPtr(), at)
		if err != nil {
			return err
		}
		return tx.MarkInvoiceRequested(ctx, id, actor.IDPtr(), at)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "request invoice", slog.Int64("quote_id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return invoices.Invoice{}, err
	}
	inv.QuoteFolio = quote.Folio
	inv.ClientName = quote.ClientName
	inv.RequestedByName = actor.Name
	inv.RequestedByEmail = actor.Email
	quote.InvoiceRequested = true
	quote.InvoiceRequestDate = &at
	quote.InvoiceRequestedBy = actor.IDPtr()

	s.record(ctx, actor, "quote.invoice_request", id, map[string]any{"invoice_id": inv.ID})
	if s.notifier != nil {
		if err := s.notifier.InvoiceRequested(ctx, quote, inv); err != nil {
			s.logger.WarnContext(ctx, "notify invoice request", slog.Int64("quote_id", id), slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "invoice requested", slog.Int64("quote_id", id), slog.Int64("invoice_id", inv.ID), slog.Int64("actor_id", actor.ID))
	return inv, nil
}

// CancelReservation rejects a scheduled quote. A pending invoice request is
// cancelled and the quote's request stamp cleared in the same transaction.
func (s *Service) CancelReservation(ctx context.Context, actor shared.Actor, id int64, reason string) (Quote, error) {
	reason = strings.TrimSpace(reason)
	at := s.now().UTC()
	var (
		quote     Quote
		cancelled int64
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		quote, err = tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if quote.Status != StatusScheduled {
			return ErrNotScheduled.WithMessage("Solo se pueden cancelar reservaciones programadas")
		}
		if err := tx.SetCancelled(ctx, id, reason); err != nil {
			return err
		}
		cancelled, err = tx.CancelPendingInvoice(ctx, id, reason, actor.IDPtr(), at)
		if err != nil {
			return err
		}
		if cancelled > 0 || quote.InvoiceRequested {
			return tx.ClearInvoiceRequest(ctx, id)
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "cancel reservation", slog.Int64("id", id), slog.Int64("actor_id", actor.ID), slog.Any("error", err))
		return Quote{}, err
	}
	s.metrics.transition(StatusScheduled, StatusRejected)
	quote.Status = StatusRejected
	quote.CancelReason = reason
	if cancelled > 0 || quote.InvoiceRequested {
		quote.InvoiceRequested = false
		quote.InvoiceRequestDate = nil
		quote.InvoiceRequestedBy = nil
	}
	s.record(ctx, actor, "quote.cancel", id, map[string]any{
		"reason":             reason,
		"invoices_cancelled": cancelled,
	})
	s.logger.InfoContext(ctx, "reservation cancelled", slog.Int64("id", id), slog.Int64("actor_id", actor.ID))
	return quote, nil
}

// GenerateReceipt renders the stored itinerary and totals of a scheduled
// quote as a PDF. Payment details are shown to admins by default; only
// admins may override that choice.
func (s *Service) GenerateReceipt(ctx context.Context, actor shared.Actor, id int64, includePaymentInfo *bool) (Receipt, error) {
	if s.receipts == nil {
		return Receipt{}, errReceiptsDisabled
	}
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return Receipt{}, err
	}
	if quote.Status != StatusScheduled {
		return Receipt{}, ErrNotScheduled.WithMessage("Solo se pueden generar recibos de cotizaciones programadas")
	}

	include := actor.IsAdmin()
	if includePaymentInfo != nil {
		if actor.IsAdmin() {
			include = *includePaymentInfo
		} else if *includePaymentInfo {
			s.logger.DebugContext(ctx, "ignoring payment info override", slog.Int64("actor_id", actor.ID), slog.String("role", string(actor.Role)))
		}
	}

	pdf, err := s.receipts.Render(ctx, ReceiptData{
		Quote:              quote,
		GeneratedAt:        s.now(),
		IncludePaymentInfo: include,
		Payment:            s.cfg.Payment,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "generate receipt", slog.Int64("id", id), slog.Any("error", err))
		return Receipt{}, err
	}
	if len(pdf) == 0 {
		return Receipt{}, errors.New("quotes: receipt renderer returned an empty document")
	}
	s.metrics.receipt()
	s.record(ctx, actor, "quote.receipt", id, map[string]any{"include_payment_info": include})
	return Receipt{Filename: receiptFilename(quote), PDF: pdf}, nil
}
