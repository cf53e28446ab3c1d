package pricing

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/amexing/amexing-ops/internal/platform/db"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Repository exposes read access and transactional writes for adjustments.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Current(ctx context.Context, kind Kind) (*Adjustment, error)
	CurrentAll(ctx context.Context) ([]Adjustment, error)
	History(ctx context.Context, kind Kind, filters HistoryFilters) ([]Adjustment, int, error)
}

// TxRepository holds the writes that must share one transaction.
type TxRepository interface {
	LockKind(ctx context.Context, kind Kind) error
	DeactivateActive(ctx context.Context, kind Kind) (int64, error)
	Insert(ctx context.Context, adj Adjustment) (Adjustment, error)
	GetForUpdate(ctx context.Context, id int64) (Adjustment, error)
	SetState(ctx context.Context, id int64, state shared.RecordState) error
}

type pgRepository struct {
	pool *pgxpool.Pool
	q    queries
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool, q: queries{db: pool}}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, queries{db: tx})
	})
}

func (r *pgRepository) Current(ctx context.Context, kind Kind) (*Adjustment, error) {
	return r.q.current(ctx, kind)
}

func (r *pgRepository) CurrentAll(ctx context.Context) ([]Adjustment, error) {
	return r.q.currentAll(ctx)
}

func (r *pgRepository) History(ctx context.Context, kind Kind, filters HistoryFilters) ([]Adjustment, int, error) {
	return r.q.history(ctx, kind, filters)
}

// queries runs against a pool or a transaction.
type queries struct {
	db db.DBTX
}

var adjustmentsTable = goqu.T("price_adjustments").As("pa")

func selectAdjustments() *goqu.SelectDataset {
	return db.Dialect.From(adjustmentsTable).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("pa.created_by")))).
		Select(
			goqu.I("pa.id"),
			goqu.I("pa.kind"),
			goqu.I("pa.value"),
			goqu.I("pa.currency"),
			goqu.I("pa.note"),
			goqu.I("pa.effective_date"),
			goqu.I("pa.state"),
			goqu.I("pa.created_by"),
			goqu.COALESCE(goqu.I("u.name"), "").As("created_by_name"),
			goqu.I("pa.created_at"),
			goqu.I("pa.updated_at"),
		).
		Prepared(true)
}

func scanAdjustment(row pgx.Row) (Adjustment, error) {
	var (
		a    Adjustment
		kind string
	)
	err := row.Scan(&a.ID, &kind, &a.Value, &a.Currency, &a.Note, &a.EffectiveDate, &a.State,
		&a.CreatedBy, &a.CreatedByName, &a.CreatedAt, &a.UpdatedAt)
	a.Kind = Kind(kind)
	return a, err
}

func (q queries) current(ctx context.Context, kind Kind) (*Adjustment, error) {
	query, args, err := selectAdjustments().
		Where(goqu.I("pa.kind").Eq(string(kind)), goqu.I("pa.state").Eq(string(shared.StateActive))).
		Order(goqu.I("pa.created_at").Desc(), goqu.I("pa.id").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("pricing: build current query: %w", err)
	}
	adj, err := scanAdjustment(q.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("pricing: current %s: %w", kind, err)
	}
	return &adj, nil
}

func (q queries) currentAll(ctx context.Context) ([]Adjustment, error) {
	query, args, err := selectAdjustments().
		Where(goqu.I("pa.state").Eq(string(shared.StateActive))).
		Order(goqu.I("pa.kind").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("pricing: build current-all query: %w", err)
	}
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pricing: current all: %w", err)
	}
	defer rows.Close()
	var out []Adjustment
	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("pricing: scan current: %w", err)
		}
		out = append(out, adj)
	}
	return out, rows.Err()
}

func historyConditions(kind Kind, search string) []exp.Expression {
	conds := []exp.Expression{
		goqu.I("pa.kind").Eq(string(kind)),
		goqu.I("pa.state").Neq(string(shared.StateDeleted)),
	}
	if expr := db.SearchAny(search, "pa.note"); expr != nil {
		conds = append(conds, expr)
	}
	return conds
}

type historySQL struct {
	list, count         string
	listArgs, countArgs []any
}

// buildHistory renders the page and count statements from one predicate set.
func buildHistory(kind Kind, f HistoryFilters) (historySQL, error) {
	page, limit := shared.NormalizePage(f.Page, f.Limit)
	conds := historyConditions(kind, f.Search)

	var out historySQL
	var err error
	out.list, out.listArgs, err = selectAdjustments().
		Where(conds...).
		Order(db.OrderBy(historySortColumns, f.SortBy, f.SortDir, "created_at"), goqu.I("pa.id").Desc()).
		Limit(uint(limit)).
		Offset(uint((page - 1) * limit)).
		ToSQL()
	if err != nil {
		return historySQL{}, fmt.Errorf("pricing: build history query: %w", err)
	}
	out.count, out.countArgs, err = db.Dialect.From(adjustmentsTable).
		Select(goqu.COUNT("*")).
		Where(conds...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return historySQL{}, fmt.Errorf("pricing: build history count: %w", err)
	}
	return out, nil
}

// history runs the page query and the count query concurrently.
func (q queries) history(ctx context.Context, kind Kind, f HistoryFilters) ([]Adjustment, int, error) {
	stmt, err := buildHistory(kind, f)
	if err != nil {
		return nil, 0, err
	}

	var (
		items []Adjustment
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := q.db.QueryRow(gctx, stmt.count, stmt.countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("pricing: count history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := q.db.Query(gctx, stmt.list, stmt.listArgs...)
		if err != nil {
			return fmt.Errorf("pricing: list history: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			adj, err := scanAdjustment(rows)
			if err != nil {
				return fmt.Errorf("pricing: scan history: %w", err)
			}
			items = append(items, adj)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (q queries) LockKind(ctx context.Context, kind Kind) error {
	return db.AdvisoryXactLock(ctx, q.db, shared.PriceAdjustmentLockKey(string(kind)))
}

func (q queries) DeactivateActive(ctx context.Context, kind Kind) (int64, error) {
	query, args, err := db.Dialect.Update("price_adjustments").
		Prepared(true).
		Set(goqu.Record{"state": string(shared.StateInactive), "updated_at": goqu.L("NOW()")}).
		Where(goqu.Ex{"kind": string(kind), "state": string(shared.StateActive)}).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("pricing: build deactivate: %w", err)
	}
	tag, err := q.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("pricing: deactivate %s: %w", kind, err)
	}
	return tag.RowsAffected(), nil
}

func (q queries) Insert(ctx context.Context, adj Adjustment) (Adjustment, error) {
	query, args, err := db.Dialect.Insert("price_adjustments").
		Prepared(true).
		Rows(goqu.Record{
			"kind":           string(adj.Kind),
			"value":          adj.Value.String(),
			"currency":       adj.Currency,
			"note":           adj.Note,
			"effective_date": adj.EffectiveDate,
			"state":          string(adj.State),
			"created_by":     adj.CreatedBy,
		}).
		Returning("id", "created_at", "updated_at").
		ToSQL()
	if err != nil {
		return Adjustment{}, fmt.Errorf("pricing: build insert: %w", err)
	}
	if err := q.db.QueryRow(ctx, query, args...).Scan(&adj.ID, &adj.CreatedAt, &adj.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return Adjustment{}, ErrConcurrentCreate.Wrap(err)
		}
		return Adjustment{}, fmt.Errorf("pricing: insert %s: %w", adj.Kind, err)
	}
	return adj, nil
}

func (q queries) GetForUpdate(ctx context.Context, id int64) (Adjustment, error) {
	query, args, err := db.Dialect.From("price_adjustments").
		Prepared(true).
		Select("id", "kind", "value", "currency", "note", "effective_date", "state",
			"created_by", goqu.L("''"), "created_at", "updated_at").
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return Adjustment{}, fmt.Errorf("pricing: build get: %w", err)
	}
	adj, err := scanAdjustment(q.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return Adjustment{}, ErrNotFound
		}
		return Adjustment{}, fmt.Errorf("pricing: get %d: %w", id, err)
	}
	return adj, nil
}

func (q queries) SetState(ctx context.Context, id int64, state shared.RecordState) error {
	query, args, err := db.Dialect.Update("price_adjustments").
		Prepared(true).
		Set(goqu.Record{"state": string(state), "updated_at": goqu.L("NOW()")}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("pricing: build set state: %w", err)
	}
	tag, err := q.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pricing: set state %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
