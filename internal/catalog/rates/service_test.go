package rates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/catalog/crud/crudtest"
	"github.com/amexing/amexing-ops/internal/shared"
)

func TestRateNamesAreUnique(t *testing.T) {
	repo := crudtest.New[Rate, *Rate](ErrNotFound)
	repo.Conflict = ErrNameTaken
	repo.Unique = func(a, b Rate) bool { return strings.EqualFold(a.Name, b.Name) }
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, shared.Actor{ID: 1}, CreateRequest{Name: "Premium"})
	require.NoError(t, err)
	assert.Equal(t, DefaultColor, r.Color)

	_, err = svc.Create(ctx, shared.Actor{ID: 1}, CreateRequest{Name: "premium", Color: "#FFAA00"})
	assert.ErrorIs(t, err, ErrNameTaken)

	color := "#FFAA00"
	r, err = svc.Update(ctx, shared.Actor{ID: 1}, r.ID, UpdateRequest{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#ffaa00", r.Color)

	blank := " "
	_, err = svc.Update(ctx, shared.Actor{ID: 1}, r.ID, UpdateRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrNameRequired)
}
