package services

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/platform/db"
	"github.com/amexing/amexing-ops/internal/shared"
)

var table = crud.Table[Service]{
	Name:  "services",
	Alias: "s",
	Columns: []any{
		goqu.I("s.origin_poi_id"),
		goqu.COALESCE(goqu.I("o.name"), ""),
		goqu.I("s.destination_poi_id"),
		goqu.COALESCE(goqu.I("d.name"), ""),
		goqu.I("s.vehicle_type_id"),
		goqu.COALESCE(goqu.I("vt.name"), ""),
		goqu.I("s.rate_id"),
		goqu.COALESCE(goqu.I("r.name"), ""),
		goqu.I("s.price"),
		goqu.I("s.currency"),
		goqu.I("s.is_round_trip"),
		goqu.I("s.note"),
	},
	Joins: func(ds *goqu.SelectDataset) *goqu.SelectDataset {
		return ds.
			LeftJoin(goqu.T("pois").As("o"), goqu.On(goqu.I("o.id").Eq(goqu.I("s.origin_poi_id")))).
			LeftJoin(goqu.T("pois").As("d"), goqu.On(goqu.I("d.id").Eq(goqu.I("s.destination_poi_id")))).
			LeftJoin(goqu.T("vehicle_types").As("vt"), goqu.On(goqu.I("vt.id").Eq(goqu.I("s.vehicle_type_id")))).
			LeftJoin(goqu.T("rates").As("r"), goqu.On(goqu.I("r.id").Eq(goqu.I("s.rate_id"))))
	},
	Scan: func(row pgx.Row) (Service, error) {
		var s Service
		err := row.Scan(s.Targets(
			&s.OriginPOIID, &s.OriginName,
			&s.DestinationPOIID, &s.DestinationName,
			&s.VehicleTypeID, &s.VehicleTypeName,
			&s.RateID, &s.RateName,
			&s.Price, &s.Currency, &s.IsRoundTrip, &s.Note,
		)...)
		return s, err
	},
	Values: func(s Service) goqu.Record {
		return goqu.Record{
			"origin_poi_id":      s.OriginPOIID,
			"destination_poi_id": s.DestinationPOIID,
			"vehicle_type_id":    s.VehicleTypeID,
			"rate_id":            s.RateID,
			"price":              s.Price.String(),
			"currency":           s.Currency,
			"is_round_trip":      s.IsRoundTrip,
			"note":               s.Note,
		}
	},
	Search: []string{"o.name", "d.name", "vt.name", "r.name", "s.note"},
	Sort: map[string]string{
		"originName":      "o.name",
		"destinationName": "d.name",
		"vehicleTypeName": "vt.name",
		"rateName":        "r.name",
		"price":           "s.price",
		"createdAt":       "s.created_at",
	},
	DefaultSort: "destinationName",
	NotFound:    ErrNotFound,
	Conflict:    ErrRouteTaken,
}

type pgRepository struct {
	*crud.Store[Service, *Service]
	db db.DBTX
}

// NewRepository returns the PostgreSQL services store.
func NewRepository(conn db.DBTX) Repository {
	return &pgRepository{Store: crud.NewStore[Service, *Service](conn, table), db: conn}
}

func (r *pgRepository) RouteTaken(ctx context.Context, key RouteKey, excludeID int64) (bool, error) {
	var origin int64
	if key.OriginPOIID != nil {
		origin = *key.OriginPOIID
	}
	query, args, err := db.Dialect.From("services").
		Prepared(true).
		Select(goqu.L("1")).
		Where(
			goqu.L("COALESCE(origin_poi_id, 0)").Eq(origin),
			goqu.C("destination_poi_id").Eq(key.DestinationPOIID),
			goqu.C("vehicle_type_id").Eq(key.VehicleTypeID),
			goqu.C("rate_id").Eq(key.RateID),
			goqu.C("state").Neq(string(shared.StateDeleted)),
			goqu.C("id").Neq(excludeID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("services: build route lookup: %w", err)
	}
	var one int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if db.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("services: route lookup: %w", err)
	}
	return true, nil
}
