package experiences

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/platform/db"
)

var table = crud.Table[Experience]{
	Name:  "experiences",
	Alias: "e",
	Columns: []any{
		goqu.I("e.name"),
		goqu.I("e.description"),
		goqu.I("e.price"),
		goqu.I("e.duration_minutes"),
		goqu.I("e.kind"),
	},
	Scan: func(row pgx.Row) (Experience, error) {
		var (
			e    Experience
			kind string
		)
		err := row.Scan(e.Targets(&e.Name, &e.Description, &e.Price, &e.DurationMinutes, &kind)...)
		e.Kind = Kind(kind)
		return e, err
	},
	Values: func(e Experience) goqu.Record {
		return goqu.Record{
			"name":             e.Name,
			"description":      e.Description,
			"price":            e.Price.String(),
			"duration_minutes": e.DurationMinutes,
			"kind":             string(e.Kind),
		}
	},
	Search:      []string{"e.name", "e.description"},
	Sort:        map[string]string{"name": "e.name", "price": "e.price", "durationMinutes": "e.duration_minutes", "type": "e.kind", "createdAt": "e.created_at"},
	DefaultSort: "name",
	NotFound:    ErrNotFound,
}

func NewRepository(conn db.DBTX) crud.Repository[Experience] {
	return crud.NewStore[Experience, *Experience](conn, table)
}
