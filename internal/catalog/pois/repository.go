package pois

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/platform/db"
)

var table = crud.Table[POI]{
	Name:  "pois",
	Alias: "p",
	Columns: []any{
		goqu.I("p.name"),
		goqu.I("p.address"),
		goqu.I("p.latitude"),
		goqu.I("p.longitude"),
	},
	Scan: func(row pgx.Row) (POI, error) {
		var p POI
		err := row.Scan(p.Targets(&p.Name, &p.Address, &p.Latitude, &p.Longitude)...)
		return p, err
	},
	Values: func(p POI) goqu.Record {
		return goqu.Record{
			"name":      p.Name,
			"address":   p.Address,
			"latitude":  p.Latitude,
			"longitude": p.Longitude,
		}
	},
	Search:      []string{"p.name", "p.address"},
	Sort:        map[string]string{"name": "p.name", "address": "p.address", "createdAt": "p.created_at"},
	DefaultSort: "name",
	NotFound:    ErrNotFound,
}

// NewRepository returns the PostgreSQL POI store.
func NewRepository(conn db.DBTX) crud.Repository[POI] {
	return crud.NewStore[POI, *POI](conn, table)
}
