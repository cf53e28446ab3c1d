package clients

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/platform/db"
)

var table = crud.Table[Client]{
	Name:  "clients",
	Alias: "c",
	Columns: []any{
		goqu.I("c.company_name"),
		goqu.I("c.contact_name"),
		goqu.I("c.email"),
		goqu.I("c.phone"),
		goqu.I("c.tax_id"),
	},
	Scan: func(row pgx.Row) (Client, error) {
		var c Client
		err := row.Scan(c.Targets(&c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &c.TaxID)...)
		return c, err
	},
	Values: func(c Client) goqu.Record {
		return goqu.Record{
			"company_name": c.CompanyName,
			"contact_name": c.ContactName,
			"email":        c.Email,
			"phone":        c.Phone,
			"tax_id":       c.TaxID,
		}
	},
	Search:      []string{"c.company_name", "c.contact_name", "c.email", "c.tax_id"},
	Sort:        map[string]string{"companyName": "c.company_name", "contactName": "c.contact_name", "email": "c.email", "createdAt": "c.created_at"},
	DefaultSort: "companyName",
	NotFound:    ErrNotFound,
	Conflict:    ErrTaxIDTaken,
}

// NewRepository returns the PostgreSQL clients store.
func NewRepository(conn db.DBTX) crud.Repository[Client] {
	return crud.NewStore[Client, *Client](conn, table)
}
