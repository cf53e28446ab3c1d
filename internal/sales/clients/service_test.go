package clients

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/catalog/crud/crudtest"
	"github.com/amexing/amexing-ops/internal/shared"
)

func newRepo() *crudtest.Memory[Client, *Client] {
	repo := crudtest.New[Client, *Client](ErrNotFound)
	repo.Conflict = ErrTaxIDTaken
	repo.Unique = func(a, b Client) bool { return a.TaxID != "" && a.TaxID == b.TaxID }
	repo.Match = func(c Client, term string) bool {
		term = strings.ToLower(term)
		return strings.Contains(strings.ToLower(c.CompanyName), term) || strings.Contains(strings.ToLower(c.ContactName), term)
	}
	return repo
}

func TestCreateClient(t *testing.T) {
	svc := NewService(newRepo(), nil, nil)
	ctx := context.Background()
	actor := shared.Actor{ID: 6}

	c, err := svc.Create(ctx, actor, CreateRequest{CompanyName: " Hotel Casa Blanca ", Email: "Reservas@CasaBlanca.MX", TaxID: "hcb010101ab1"})
	require.NoError(t, err)
	assert.Equal(t, "Hotel Casa Blanca", c.CompanyName)
	assert.Equal(t, "reservas@casablanca.mx", c.Email)
	assert.Equal(t, "HCB010101AB1", c.TaxID)

	_, err = svc.Create(ctx, actor, CreateRequest{CompanyName: "Otro", TaxID: "HCB010101AB1"})
	assert.ErrorIs(t, err, ErrTaxIDTaken)

	_, err = svc.Create(ctx, actor, CreateRequest{CompanyName: "Sin RFC"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, CreateRequest{CompanyName: "Sin RFC 2"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor, CreateRequest{CompanyName: "  "})
	assert.ErrorIs(t, err, ErrCompanyRequired)
}

func TestSearchClients(t *testing.T) {
	repo := newRepo()
	repo.Seed(Client{CompanyName: "Agencia Bajío", ContactName: "Marta"}, shared.StateActive)
	repo.Seed(Client{CompanyName: "Hotel Real", ContactName: "Jorge"}, shared.StateActive)
	svc := NewService(repo, nil, nil)

	f := crud.ListFilters{}
	f.Search = "marta"
	rows, total, filtered, err := svc.List(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Agencia Bajío", rows[0].CompanyName)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, filtered)
}
