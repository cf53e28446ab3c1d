package vehicletypes

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/platform/db"
)

var table = crud.Table[VehicleType]{
	Name:    "vehicle_types",
	Alias:   "vt",
	Columns: []any{goqu.I("vt.code"), goqu.I("vt.name"), goqu.I("vt.capacity")},
	Scan: func(row pgx.Row) (VehicleType, error) {
		var vt VehicleType
		err := row.Scan(vt.Targets(&vt.Code, &vt.Name, &vt.Capacity)...)
		return vt, err
	},
	Values: func(vt VehicleType) goqu.Record {
		return goqu.Record{"code": vt.Code, "name": vt.Name, "capacity": vt.Capacity}
	},
	Search:      []string{"vt.code", "vt.name"},
	Sort:        map[string]string{"code": "vt.code", "name": "vt.name", "capacity": "vt.capacity", "createdAt": "vt.created_at"},
	DefaultSort: "name",
	NotFound:    ErrNotFound,
	Conflict:    ErrCodeTaken,
}

func NewRepository(conn db.DBTX) crud.Repository[VehicleType] {
	return crud.NewStore[VehicleType, *VehicleType](conn, table)
}
