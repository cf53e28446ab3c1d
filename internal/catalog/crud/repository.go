package crud

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/amexing/amexing-ops/internal/platform/db"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Repository is the storage contract of a catalog resource. Rows in the
// deleted state are invisible to every method.
type Repository[T any] interface {
	Get(ctx context.Context, id int64) (T, error)
	List(ctx context.Context, filters ListFilters) (rows []T, total, filtered int, err error)
	Insert(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, v T) (T, error)
	SetState(ctx context.Context, id int64, state shared.RecordState) error
}

// Table describes how a resource maps onto its table.
type Table[T any] struct {
	Name  string
	Alias string
	// Columns are selected after the base columns, in Scan order.
	Columns []any
	Joins   func(*goqu.SelectDataset) *goqu.SelectDataset
	// Scan reads one row; use Base.Targets for the leading base columns.
	Scan func(pgx.Row) (T, error)
	// Values returns the writable columns of v.
	Values      func(v T) goqu.Record
	Search      []string
	Sort        map[string]string
	DefaultSort string
	NotFound    *shared.Error
	Conflict    *shared.Error
}

// Targets returns scan destinations for the base columns followed by rest.
func (b *Base) Targets(rest ...any) []any {
	return append([]any{&b.ID, &b.State, &b.CreatedAt, &b.UpdatedAt}, rest...)
}

func (t Table[T]) col(name string) exp.IdentifierExpression {
	return goqu.I(t.Alias + "." + name)
}

func (t Table[T]) selectRows() *goqu.SelectDataset {
	cols := append([]any{t.col("id"), t.col("state"), t.col("created_at"), t.col("updated_at")}, t.Columns...)
	ds := db.Dialect.From(goqu.T(t.Name).As(t.Alias))
	if t.Joins != nil {
		ds = t.Joins(ds)
	}
	return ds.Select(cols...).Prepared(true)
}

func (t Table[T]) notDeleted() exp.Expression {
	return t.col("state").Neq(string(shared.StateDeleted))
}

// Store is the PostgreSQL Repository for a Table.
type Store[T any, P Model[T]] struct {
	db    db.DBTX
	table Table[T]
}

// NewStore constructs a Store.
func NewStore[T any, P Model[T]](conn db.DBTX, table Table[T]) *Store[T, P] {
	return &Store[T, P]{db: conn, table: table}
}

func (s *Store[T, P]) scan(row pgx.Row) (T, error) {
	v, err := s.table.Scan(row)
	if err != nil {
		return v, err
	}
	base := P(&v).Meta()
	base.SetState(base.State)
	return v, nil
}

func (s *Store[T, P]) writeErr(op string, err error) error {
	switch {
	case db.IsUniqueViolation(err) && s.table.Conflict != nil:
		return s.table.Conflict.Wrap(err)
	case db.IsForeignKeyViolation(err):
		return ErrInvalidReference.Wrap(err)
	}
	return fmt.Errorf("%s: %s: %w", s.table.Name, op, err)
}

// Get implements Repository.
func (s *Store[T, P]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	query, args, err := s.table.selectRows().
		Where(s.table.col("id").Eq(id), s.table.notDeleted()).
		ToSQL()
	if err != nil {
		return zero, fmt.Errorf("%s: build get: %w", s.table.Name, err)
	}
	v, err := s.scan(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return zero, s.table.NotFound
		}
		return zero, fmt.Errorf("%s: get %d: %w", s.table.Name, id, err)
	}
	return v, nil
}

// List implements Repository. The two counts and the page run concurrently.
func (s *Store[T, P]) List(ctx context.Context, f ListFilters) ([]T, int, int, error) {
	t := s.table
	base := []exp.Expression{t.notDeleted()}
	conds := append([]exp.Expression{}, base...)
	if f.Active != nil {
		conds = append(conds, t.col("state").Eq(string(StateFor(*f.Active))))
	}
	if expr := db.SearchAny(f.Search, t.Search...); expr != nil {
		conds = append(conds, expr)
	}

	listQuery, listArgs, err := t.selectRows().
		Where(conds...).
		Order(db.OrderBy(t.Sort, f.SortBy, f.SortDir, t.DefaultSort), t.col("id").Desc()).
		Limit(uint(f.Length)).
		Offset(uint(f.Start)).
		ToSQL()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: build list: %w", t.Name, err)
	}
	count := func(where []exp.Expression) (string, []any, error) {
		ds := db.Dialect.From(goqu.T(t.Name).As(t.Alias))
		if t.Joins != nil {
			ds = t.Joins(ds)
		}
		return ds.Select(goqu.COUNT("*")).Where(where...).Prepared(true).ToSQL()
	}
	totalQuery, totalArgs, err := count(base)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: build total: %w", t.Name, err)
	}
	filteredQuery, filteredArgs, err := count(conds)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: build filtered: %w", t.Name, err)
	}

	var (
		rows            []T
		total, filtered int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.QueryRow(gctx, totalQuery, totalArgs...).Scan(&total)
	})
	g.Go(func() error {
		return s.db.QueryRow(gctx, filteredQuery, filteredArgs...).Scan(&filtered)
	})
	g.Go(func() error {
		res, err := s.db.Query(gctx, listQuery, listArgs...)
		if err != nil {
			return err
		}
		defer res.Close()
		for res.Next() {
			v, err := s.scan(res)
			if err != nil {
				return err
			}
			rows = append(rows, v)
		}
		return res.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, 0, fmt.Errorf("%s: list: %w", t.Name, err)
	}
	return rows, total, filtered, nil
}

// Insert implements Repository. New rows start active.
func (s *Store[T, P]) Insert(ctx context.Context, v T) (T, error) {
	var zero T
	rec := s.table.Values(v)
	rec["state"] = string(shared.StateActive)
	query, args, err := db.Dialect.Insert(s.table.Name).
		Prepared(true).
		Rows(rec).
		Returning("id").
		ToSQL()
	if err != nil {
		return zero, fmt.Errorf("%s: build insert: %w", s.table.Name, err)
	}
	var id int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return zero, s.writeErr("insert", err)
	}
	return s.Get(ctx, id)
}

// Update implements Repository.
func (s *Store[T, P]) Update(ctx context.Context, v T) (T, error) {
	var zero T
	id := P(&v).Meta().ID
	rec := s.table.Values(v)
	rec["updated_at"] = goqu.L("NOW()")
	query, args, err := db.Dialect.Update(s.table.Name).
		Prepared(true).
		Set(rec).
		Where(goqu.C("id").Eq(id), goqu.C("state").Neq(string(shared.StateDeleted))).
		ToSQL()
	if err != nil {
		return zero, fmt.Errorf("%s: build update: %w", s.table.Name, err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return zero, s.writeErr("update", err)
	}
	if tag.RowsAffected() == 0 {
		return zero, s.table.NotFound
	}
	return s.Get(ctx, id)
}

// SetState implements Repository.
func (s *Store[T, P]) SetState(ctx context.Context, id int64, state shared.RecordState) error {
	query, args, err := db.Dialect.Update(s.table.Name).
		Prepared(true).
		Set(goqu.Record{"state": string(state), "updated_at": goqu.L("NOW()")}).
		Where(goqu.C("id").Eq(id), goqu.C("state").Neq(string(shared.StateDeleted))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: build set state: %w", s.table.Name, err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: set state %d: %w", s.table.Name, id, err)
	}
	if tag.RowsAffected() == 0 {
		return s.table.NotFound
	}
	return nil
}
