package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/amexing/amexing-ops/internal/platform/db"
	"github.com/amexing/amexing-ops/internal/sales/invoices"
	"github.com/amexing/amexing-ops/internal/shared"
)

var itemsJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Repository exposes quote reads and transactional writes.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Quote, error)
	List(ctx context.Context, filters ListFilters) (rows []Quote, total, filtered int, err error)
}

// UpdateFields is the whitelisted subset of columns a generic update may
// touch. Nil fields are left unchanged.
type UpdateFields struct {
	Status          *Status
	NumberOfPeople  *int
	ContactPerson   *string
	ContactEmail    *string
	ContactPhone    *string
	ValidUntil      *time.Time
	// ClearValidUntil sets valid_until to NULL; it wins over ValidUntil.
	ClearValidUntil bool
	Notes           *string
}

// TxRepository holds the statements that run under the quote row lock.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (Quote, error)
	ClientActive(ctx context.Context, clientID int64) (bool, error)
	NextSequence(ctx context.Context, key string) (int, error)
	Insert(ctx context.Context, q Quote) (Quote, error)
	Update(ctx context.Context, id int64, fields UpdateFields) error
	SetCancelled(ctx context.Context, id int64, reason string) error
	SetState(ctx context.Context, id int64, state shared.RecordState) error
	MarkInvoiceRequested(ctx context.Context, id int64, by *int64, at time.Time) error
	ClearInvoiceRequest(ctx context.Context, id int64) error
	HasPendingInvoice(ctx context.Context, id int64) (bool, error)
	InsertPendingInvoice(ctx context.Context, id int64, by *int64, at time.Time) (invoices.Invoice, error)
	CancelPendingInvoice(ctx context.Context, id int64, reason string, actor *int64, at time.Time) (int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
	q    queries
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool, q: newQueries(pool)}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, newQueries(tx))
	})
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Quote, error) {
	return r.q.get(ctx, id, false)
}

func (r *pgRepository) List(ctx context.Context, filters ListFilters) ([]Quote, int, int, error) {
	return r.q.list(ctx, filters)
}

// queries runs against a pool or a transaction. Invoice request statements
// are delegated to the invoices store on the same connection so they join
// the quote's transaction.
type queries struct {
	db       db.DBTX
	invoices invoices.Store
}

func newQueries(conn db.DBTX) queries {
	return queries{db: conn, invoices: invoices.NewStore(conn)}
}

var quotesTable = goqu.T("quotes").As("q")

func selectQuotes() *goqu.SelectDataset {
	return db.Dialect.From(quotesTable).
		LeftJoin(goqu.T("clients").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("q.client_id")))).
		LeftJoin(goqu.T("rates").As("r"), goqu.On(goqu.I("r.id").Eq(goqu.I("q.rate_id")))).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("q.created_by")))).
		Prepared(true)
}

var quoteColumns = []any{
	goqu.I("q.id"),
	goqu.I("q.folio"),
	goqu.I("q.status"),
	goqu.I("q.client_id"),
	goqu.COALESCE(goqu.I("c.company_name"), "").As("client_name"),
	goqu.I("q.rate_id"),
	goqu.COALESCE(goqu.I("r.name"), "").As("rate_name"),
	goqu.I("q.number_of_people"),
	goqu.I("q.contact_person"),
	goqu.I("q.contact_email"),
	goqu.I("q.contact_phone"),
	goqu.I("q.service_items"),
	goqu.I("q.currency"),
	goqu.I("q.valid_until"),
	goqu.I("q.notes"),
	goqu.I("q.invoice_requested"),
	goqu.I("q.invoice_request_date"),
	goqu.I("q.invoice_requested_by"),
	goqu.I("q.cancel_reason"),
	goqu.I("q.state"),
	goqu.I("q.created_by"),
	goqu.COALESCE(goqu.I("u.name"), "").As("created_by_name"),
	goqu.I("q.created_at"),
	goqu.I("q.updated_at"),
}

func scanQuote(row pgx.Row) (Quote, error) {
	var (
		q      Quote
		status string
		items  []byte
	)
	err := row.Scan(&q.ID, &q.Folio, &status, &q.ClientID, &q.ClientName, &q.RateID, &q.RateName,
		&q.NumberOfPeople, &q.ContactPerson, &q.ContactEmail, &q.ContactPhone, &items, &q.Currency,
		&q.ValidUntil, &q.Notes, &q.InvoiceRequested, &q.InvoiceRequestDate, &q.InvoiceRequestedBy,
		&q.CancelReason, &q.State, &q.CreatedBy, &q.CreatedByName, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return Quote{}, err
	}
	q.Status = Status(status)
	if len(items) > 0 {
		if err := itemsJSON.Unmarshal(items, &q.ServiceItems); err != nil {
			return Quote{}, fmt.Errorf("decode service items of quote %d: %w", q.ID, err)
		}
	}
	return q, nil
}

func (q queries) get(ctx context.Context, id int64, lock bool) (Quote, error) {
	ds := selectQuotes().
		Select(quoteColumns...).
		Where(goqu.I("q.id").Eq(id), goqu.I("q.state").Neq(string(shared.StateDeleted)))
	if lock {
		ds = ds.ForUpdate(exp.Wait, goqu.T("q"))
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return Quote{}, fmt.Errorf("quotes: build get: %w", err)
	}
	quote, err := scanQuote(q.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, fmt.Errorf("quotes: get %d: %w", id, err)
	}
	return quote, nil
}

func (q queries) GetForUpdate(ctx context.Context, id int64) (Quote, error) {
	return q.get(ctx, id, true)
}

func (q queries) ClientActive(ctx context.Context, clientID int64) (bool, error) {
	var ok bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1 AND state = 'active')`, clientID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("quotes: check client %d: %w", clientID, err)
	}
	return ok, nil
}

// NextSequence increments and returns the counter stored under key.
func (q queries) NextSequence(ctx context.Context, key string) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, `INSERT INTO document_sequences (key, value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = document_sequences.value + 1
		RETURNING value`, key).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("quotes: next sequence %s: %w", key, err)
	}
	return n, nil
}

func (q queries) Insert(ctx context.Context, quote Quote) (Quote, error) {
	items, err := itemsJSON.Marshal(quote.ServiceItems)
	if err != nil {
		return Quote{}, fmt.Errorf("quotes: encode service items: %w", err)
	}
	query, args, err := db.Dialect.Insert("quotes").
		Prepared(true).
		Rows(goqu.Record{
			"folio":            quote.Folio,
			"status":           string(quote.Status),
			"client_id":        quote.ClientID,
			"rate_id":          quote.RateID,
			"number_of_people": quote.NumberOfPeople,
			"contact_person":   quote.ContactPerson,
			"contact_email":    quote.ContactEmail,
			"contact_phone":    quote.ContactPhone,
			"service_items":    string(items),
			"total":            quote.ServiceItems.Total.String(),
			"currency":         quote.Currency,
			"valid_until":      quote.ValidUntil,
			"notes":            quote.Notes,
			"state":            string(shared.StateActive),
			"created_by":       quote.CreatedBy,
		}).
		Returning("id", "created_at", "updated_at").
		ToSQL()
	if err != nil {
		return Quote{}, fmt.Errorf("quotes: build insert: %w", err)
	}
	if err := q.db.QueryRow(ctx, query, args...).Scan(&quote.ID, &quote.CreatedAt, &quote.UpdatedAt); err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return Quote{}, ErrFolioConflict.Wrap(err)
		case db.IsForeignKeyViolation(err):
			return Quote{}, ErrClientNotFound.Wrap(err)
		}
		return Quote{}, fmt.Errorf("quotes: insert: %w", err)
	}
	quote.State = shared.StateActive
	return quote, nil
}

func (q queries) exec(ctx context.Context, id int64, rec goqu.Record) error {
	rec["updated_at"] = goqu.L("NOW()")
	query, args, err := db.Dialect.Update("quotes").
		Prepared(true).
		Set(rec).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("quotes: build update: %w", err)
	}
	tag, err := q.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("quotes: update %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q queries) Update(ctx context.Context, id int64, f UpdateFields) error {
	rec := goqu.Record{}
	if f.Status != nil {
		rec["status"] = string(*f.Status)
	}
	if f.NumberOfPeople != nil {
		rec["number_of_people"] = *f.NumberOfPeople
	}
	if f.ContactPerson != nil {
		rec["contact_person"] = *f.ContactPerson
	}
	if f.ContactEmail != nil {
		rec["contact_email"] = *f.ContactEmail
	}
	if f.ContactPhone != nil {
		rec["contact_phone"] = *f.ContactPhone
	}
	if f.ClearValidUntil {
		rec["valid_until"] = nil
	} else if f.ValidUntil != nil {
		rec["valid_until"] = *f.ValidUntil
	}
	if f.Notes != nil {
		rec["notes"] = *f.Notes
	}
	if len(rec) == 0 {
		return nil
	}
	return q.exec(ctx, id, rec)
}

func (q queries) SetCancelled(ctx context.Context, id int64, reason string) error {
	return q.exec(ctx, id, goqu.Record{"status": string(StatusRejected), "cancel_reason": reason})
}

func (q queries) SetState(ctx context.Context, id int64, state shared.RecordState) error {
	return q.exec(ctx, id, goqu.Record{"state": string(state)})
}

func (q queries) MarkInvoiceRequested(ctx context.Context, id int64, by *int64, at time.Time) error {
	return q.exec(ctx, id, goqu.Record{
		"invoice_requested":    true,
		"invoice_request_date": at,
		"invoice_requested_by": by,
	})
}

func (q queries) ClearInvoiceRequest(ctx context.Context, id int64) error {
	return q.invoices.ClearQuoteInvoiceFlags(ctx, id)
}

func (q queries) HasPendingInvoice(ctx context.Context, id int64) (bool, error) {
	return q.invoices.HasPending(ctx, id)
}

func (q queries) InsertPendingInvoice(ctx context.Context, id int64, by *int64, at time.Time) (invoices.Invoice, error) {
	return q.invoices.InsertPending(ctx, id, by, at)
}

func (q queries) CancelPendingInvoice(ctx context.Context, id int64, reason string, actor *int64, at time.Time) (int64, error) {
	return q.invoices.CancelPending(ctx, id, reason, actor, at)
}

func listConditions(f ListFilters, withSearch bool) []exp.Expression {
	conds := []exp.Expression{goqu.I("q.state").Neq(string(shared.StateDeleted))}
	if f.Status != "" {
		conds = append(conds, goqu.I("q.status").Eq(string(f.Status)))
	}
	if withSearch {
		if expr := db.SearchAny(f.Search, "q.folio", "c.company_name", "q.contact_person", "q.contact_email"); expr != nil {
			conds = append(conds, expr)
		}
	}
	return conds
}

func (q queries) count(ctx context.Context, conds []exp.Expression) (int, error) {
	query, args, err := selectQuotes().Select(goqu.COUNT("*")).Where(conds...).ToSQL()
	if err != nil {
		return 0, err
	}
	var n int
	err = q.db.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (q queries) list(ctx context.Context, f ListFilters) ([]Quote, int, int, error) {
	query, args, err := selectQuotes().
		Select(quoteColumns...).
		Where(listConditions(f, true)...).
		Order(db.OrderBy(listSortColumns, f.SortBy, f.SortDir, "createdAt"), goqu.I("q.id").Desc()).
		Limit(uint(f.Length)).
		Offset(uint(f.Start)).
		ToSQL()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("quotes: build list: %w", err)
	}

	var (
		rows            []Quote
		total, filtered int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := q.count(gctx, listConditions(f, false))
		if err != nil {
			return fmt.Errorf("quotes: count: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		n, err := q.count(gctx, listConditions(f, true))
		if err != nil {
			return fmt.Errorf("quotes: count filtered: %w", err)
		}
		filtered = n
		return nil
	})
	g.Go(func() error {
		res, err := q.db.Query(gctx, query, args...)
		if err != nil {
			return fmt.Errorf("quotes: list: %w", err)
		}
		defer res.Close()
		for res.Next() {
			quote, err := scanQuote(res)
			if err != nil {
				return fmt.Errorf("quotes: scan: %w", err)
			}
			rows = append(rows, quote)
		}
		return res.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}
	return rows, total, filtered, nil
}
