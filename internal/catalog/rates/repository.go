package rates

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/platform/db"
)

var table = crud.Table[Rate]{
	Name:    "rates",
	Alias:   "r",
	Columns: []any{goqu.I("r.name"), goqu.I("r.color")},
	Scan: func(row pgx.Row) (Rate, error) {
		var r Rate
		err := row.Scan(r.Targets(&r.Name, &r.Color)...)
		return r, err
	},
	Values: func(r Rate) goqu.Record {
		return goqu.Record{"name": r.Name, "color": r.Color}
	},
	Search:      []string{"r.name"},
	Sort:        map[string]string{"name": "r.name", "createdAt": "r.created_at"},
	DefaultSort: "name",
	NotFound:    ErrNotFound,
	Conflict:    ErrNameTaken,
}

func NewRepository(conn db.DBTX) crud.Repository[Rate] {
	return crud.NewStore[Rate, *Rate](conn, table)
}
