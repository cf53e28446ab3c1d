package db

import (
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect builds PostgreSQL statements with numbered placeholders.
var Dialect = goqu.Dialect("postgres")

// SQLSTATE codes the repositories translate into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == uniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == foreignKeyViolation
}

// ConstraintName returns the violated constraint, if any.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// IsNoRows reports whether err means the query returned no rows.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains builds an ILIKE pattern matching term anywhere, with wildcard
// characters in term treated literally.
func Contains(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// SearchAny returns an OR of case-insensitive substring matches of term
// across cols. Nil when term is blank.
func SearchAny(term string, cols ...string) exp.Expression {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return nil
	}
	pattern := Contains(term)
	ors := make([]exp.Expression, 0, len(cols))
	for _, col := range cols {
		ors = append(ors, goqu.I(col).ILike(pattern))
	}
	return goqu.Or(ors...)
}

// OrderBy resolves a whitelisted sort key into an ordered expression,
// falling back to def when key is unknown.
func OrderBy(columns map[string]string, key, dir, def string) exp.OrderedExpression {
	col, ok := columns[key]
	if !ok {
		col = columns[def]
		if col == "" {
			col = def
		}
	}
	if strings.EqualFold(dir, "asc") {
		return goqu.I(col).Asc().NullsLast()
	}
	return goqu.I(col).Desc().NullsLast()
}
