package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/amexing/amexing-ops/internal/platform/db"
)

// Repository exposes invoice request reads and transactional writes.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Invoice, error)
	List(ctx context.Context, filters ListFilters) (rows []Invoice, total, filtered int, err error)
}

// TxRepository holds the statements the lifecycle runs under the quote lock.
type TxRepository interface {
	Get(ctx context.Context, id int64) (Invoice, error)
	LockQuote(ctx context.Context, quoteID int64) error
	GetForUpdate(ctx context.Context, id int64) (Invoice, error)
	Complete(ctx context.Context, id int64, number, notes string, actor *int64, at time.Time) error
	Cancel(ctx context.Context, id int64, reason string, actor *int64, at time.Time) error
	ClearQuoteInvoiceFlags(ctx context.Context, quoteID int64) error
}

type pgRepository struct {
	pool  *pgxpool.Pool
	store Store
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool, store: NewStore(pool)}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewStore(tx))
	})
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Invoice, error) {
	return r.store.Get(ctx, id)
}

func (r *pgRepository) List(ctx context.Context, filters ListFilters) ([]Invoice, int, int, error) {
	return r.store.list(ctx, filters)
}

// Store runs invoice request statements against a pool or a transaction.
// The quote lifecycle uses it inside its own transaction to create and cancel
// requests atomically with the quote write.
type Store struct {
	db db.DBTX
}

// NewStore wraps conn.
func NewStore(conn db.DBTX) Store {
	return Store{db: conn}
}

var requestsTable = goqu.T("invoice_requests").As("ir")

func selectInvoices() *goqu.SelectDataset {
	return db.Dialect.From(requestsTable).
		InnerJoin(goqu.T("quotes").As("q"), goqu.On(goqu.I("q.id").Eq(goqu.I("ir.quote_id")))).
		LeftJoin(goqu.T("clients").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("q.client_id")))).
		LeftJoin(goqu.T("users").As("ru"), goqu.On(goqu.I("ru.id").Eq(goqu.I("ir.requested_by")))).
		LeftJoin(goqu.T("users").As("pu"), goqu.On(goqu.I("pu.id").Eq(goqu.I("ir.processed_by")))).
		Prepared(true)
}

var invoiceColumns = []any{
	goqu.I("ir.id"),
	goqu.I("ir.quote_id"),
	goqu.I("q.folio"),
	goqu.COALESCE(goqu.I("c.company_name"), "").As("client_name"),
	goqu.I("ir.requested_by"),
	goqu.COALESCE(goqu.I("ru.name"), "").As("requested_by_name"),
	goqu.COALESCE(goqu.I("ru.email"), "").As("requested_by_email"),
	goqu.I("ir.status"),
	goqu.I("ir.request_date"),
	goqu.I("ir.process_date"),
	goqu.I("ir.processed_by"),
	goqu.COALESCE(goqu.I("pu.name"), "").As("processed_by_name"),
	goqu.I("ir.invoice_number"),
	goqu.I("ir.notes"),
	goqu.I("ir.cancel_reason"),
	goqu.I("ir.created_at"),
	goqu.I("ir.updated_at"),
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var (
		inv    Invoice
		status string
	)
	err := row.Scan(&inv.ID, &inv.QuoteID, &inv.QuoteFolio, &inv.ClientName,
		&inv.RequestedBy, &inv.RequestedByName, &inv.RequestedByEmail,
		&status, &inv.RequestDate, &inv.ProcessDate, &inv.ProcessedBy, &inv.ProcessedByName,
		&inv.InvoiceNumber, &inv.Notes, &inv.CancelReason, &inv.CreatedAt, &inv.UpdatedAt)
	inv.Status = Status(status)
	return inv, err
}

func (s Store) get(ctx context.Context, id int64, lock bool) (Invoice, error) {
	ds := selectInvoices().Select(invoiceColumns...).Where(goqu.I("ir.id").Eq(id))
	if lock {
		ds = ds.ForUpdate(exp.Wait, goqu.T("ir"))
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return Invoice{}, fmt.Errorf("invoices: build get: %w", err)
	}
	inv, err := scanInvoice(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, fmt.Errorf("invoices: get %d: %w", id, err)
	}
	return inv, nil
}

// Get loads one request with its quote, client and user names.
func (s Store) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate loads and row-locks one request.
func (s Store) GetForUpdate(ctx context.Context, id int64) (Invoice, error) {
	return s.get(ctx, id, true)
}

// LockQuote row-locks the parent quote. Every lifecycle write on a quote or
// its invoice requests takes this lock first.
func (s Store) LockQuote(ctx context.Context, quoteID int64) error {
	var id int64
	err := s.db.QueryRow(ctx, `SELECT id FROM quotes WHERE id = $1 FOR UPDATE`, quoteID).Scan(&id)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("invoices: lock quote %d: %w", quoteID, err)
	}
	return nil
}

// HasPending reports whether the quote already has a pending request.
func (s Store) HasPending(ctx context.Context, quoteID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoice_requests WHERE quote_id = $1 AND status = $2)`,
		quoteID, string(StatusPending)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("invoices: check pending %d: %w", quoteID, err)
	}
	return exists, nil
}

// InsertPending creates a pending request. The partial unique index on
// (quote_id) WHERE status = 'pending' backs the HasPending pre-check.
func (s Store) InsertPending(ctx context.Context, quoteID int64, requestedBy *int64, at time.Time) (Invoice, error) {
	query, args, err := db.Dialect.Insert("invoice_requests").
		Prepared(true).
		Rows(goqu.Record{
			"quote_id":     quoteID,
			"requested_by": requestedBy,
			"status":       string(StatusPending),
			"request_date": at,
		}).
		Returning("id", "created_at", "updated_at").
		ToSQL()
	if err != nil {
		return Invoice{}, fmt.Errorf("invoices: build insert: %w", err)
	}
	inv := Invoice{QuoteID: quoteID, RequestedBy: requestedBy, Status: StatusPending, RequestDate: at}
	if err := s.db.QueryRow(ctx, query, args...).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return Invoice{}, ErrPendingExists.Wrap(err)
		}
		return Invoice{}, fmt.Errorf("invoices: insert for quote %d: %w", quoteID, err)
	}
	return inv, nil
}

// CancelPending cancels any pending request of the quote and returns how
// many rows changed.
func (s Store) CancelPending(ctx context.Context, quoteID int64, reason string, actor *int64, at time.Time) (int64, error) {
	query, args, err := db.Dialect.Update("invoice_requests").
		Prepared(true).
		Set(goqu.Record{
			"status":        string(StatusCancelled),
			"cancel_reason": reason,
			"process_date":  at,
			"processed_by":  actor,
			"updated_at":    goqu.L("NOW()"),
		}).
		Where(goqu.Ex{"quote_id": quoteID, "status": string(StatusPending)}).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("invoices: build cancel pending: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("invoices: cancel pending for quote %d: %w", quoteID, err)
	}
	return tag.RowsAffected(), nil
}

// Complete marks a request completed.
func (s Store) Complete(ctx context.Context, id int64, number, notes string, actor *int64, at time.Time) error {
	return s.transition(ctx, id, goqu.Record{
		"status":         string(StatusCompleted),
		"invoice_number": number,
		"notes":          notes,
		"process_date":   at,
		"processed_by":   actor,
		"updated_at":     goqu.L("NOW()"),
	})
}

// Cancel marks a request cancelled.
func (s Store) Cancel(ctx context.Context, id int64, reason string, actor *int64, at time.Time) error {
	return s.transition(ctx, id, goqu.Record{
		"status":        string(StatusCancelled),
		"cancel_reason": reason,
		"process_date":  at,
		"processed_by":  actor,
		"updated_at":    goqu.L("NOW()"),
	})
}

func (s Store) transition(ctx context.Context, id int64, rec goqu.Record) error {
	query, args, err := db.Dialect.Update("invoice_requests").
		Prepared(true).
		Set(rec).
		Where(goqu.Ex{"id": id, "status": string(StatusPending)}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("invoices: build transition: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("invoices: transition %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearQuoteInvoiceFlags resets the invoice request stamp on the quote.
func (s Store) ClearQuoteInvoiceFlags(ctx context.Context, quoteID int64) error {
	_, err := s.db.Exec(ctx, `UPDATE quotes
		SET invoice_requested = FALSE, invoice_request_date = NULL, invoice_requested_by = NULL, updated_at = NOW()
		WHERE id = $1`, quoteID)
	if err != nil {
		return fmt.Errorf("invoices: clear quote flags %d: %w", quoteID, err)
	}
	return nil
}

func listConditions(f ListFilters, withSearch bool) []exp.Expression {
	conds := []exp.Expression{goqu.I("q.state").Neq("deleted")}
	if f.Status != "" {
		conds = append(conds, goqu.I("ir.status").Eq(string(f.Status)))
	}
	if withSearch {
		if expr := db.SearchAny(f.Search, "q.folio", "ir.invoice_number", "ru.name", "c.company_name"); expr != nil {
			conds = append(conds, expr)
		}
	}
	return conds
}

func (s Store) count(ctx context.Context, conds []exp.Expression) (int, error) {
	query, args, err := selectInvoices().Select(goqu.COUNT("*")).Where(conds...).ToSQL()
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (s Store) list(ctx context.Context, f ListFilters) ([]Invoice, int, int, error) {
	query, args, err := selectInvoices().
		Select(invoiceColumns...).
		Where(listConditions(f, true)...).
		Order(db.OrderBy(listSortColumns, f.SortBy, f.SortDir, "requestDate"), goqu.I("ir.id").Desc()).
		Limit(uint(f.Length)).
		Offset(uint(f.Start)).
		ToSQL()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invoices: build list: %w", err)
	}

	var (
		rows            []Invoice
		total, filtered int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.count(gctx, listConditions(f, false))
		if err != nil {
			return fmt.Errorf("invoices: count: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		n, err := s.count(gctx, listConditions(f, true))
		if err != nil {
			return fmt.Errorf("invoices: count filtered: %w", err)
		}
		filtered = n
		return nil
	})
	g.Go(func() error {
		res, err := s.db.Query(gctx, query, args...)
		if err != nil {
			return fmt.Errorf("invoices: list: %w", err)
		}
		defer res.Close()
		for res.Next() {
			inv, err := scanInvoice(res)
			if err != nil {
				return fmt.Errorf("invoices: scan: %w", err)
			}
			rows = append(rows, inv)
		}
		return res.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}
	return rows, total, filtered, nil
}
