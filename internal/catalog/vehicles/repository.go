package vehicles

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/platform/db"
)

var table = crud.Table[Vehicle]{
	Name:  "vehicles",
	Alias: "v",
	Columns: []any{
		goqu.I("v.plate"),
		goqu.I("v.brand"),
		goqu.I("v.model"),
		goqu.I("v.year"),
		goqu.I("v.vehicle_type_id"),
		goqu.COALESCE(goqu.I("vt.name"), ""),
		goqu.I("v.capacity"),
	},
	Joins: func(ds *goqu.SelectDataset) *goqu.SelectDataset {
		return ds.LeftJoin(goqu.T("vehicle_types").As("vt"), goqu.On(goqu.I("vt.id").Eq(goqu.I("v.vehicle_type_id"))))
	},
	Scan: func(row pgx.Row) (Vehicle, error) {
		var v Vehicle
		err := row.Scan(v.Targets(&v.Plate, &v.Brand, &v.Model, &v.Year, &v.VehicleTypeID, &v.VehicleTypeName, &v.Capacity)...)
		return v, err
	},
	Values: func(v Vehicle) goqu.Record {
		return goqu.Record{
			"plate":           v.Plate,
			"brand":           v.Brand,
			"model":           v.Model,
			"year":            v.Year,
			"vehicle_type_id": v.VehicleTypeID,
			"capacity":        v.Capacity,
		}
	},
	Search: []string{"v.plate", "v.brand", "v.model", "vt.name"},
	Sort: map[string]string{
		"plate":           "v.plate",
		"brand":           "v.brand",
		"year":            "v.year",
		"vehicleTypeName": "vt.name",
		"capacity":        "v.capacity",
		"createdAt":       "v.created_at",
	},
	DefaultSort: "plate",
	NotFound:    ErrNotFound,
	Conflict:    ErrPlateTaken,
}

func NewRepository(conn db.DBTX) crud.Repository[Vehicle] {
	return crud.NewStore[Vehicle, *Vehicle](conn, table)
}
