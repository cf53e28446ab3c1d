package experiences

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/catalog/crud/crudtest"
	"github.com/amexing/amexing-ops/internal/shared"
)

func TestExperienceRules(t *testing.T) {
	svc := NewService(crudtest.New[Experience, *Experience](ErrNotFound), nil, nil)
	ctx := context.Background()
	actor := shared.Actor{ID: 1}

	e, err := svc.Create(ctx, actor, CreateRequest{Name: "Viñedos de Tequisquiapan", Price: decimal.RequireFromString("950.5"), DurationMinutes: 240})
	require.NoError(t, err)
	assert.Equal(t, KindExperience, e.Kind)

	_, err = svc.Create(ctx, actor, CreateRequest{Name: "Globo", Kind: "tour"})
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.Create(ctx, actor, CreateRequest{Name: "Globo", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	provider := "Provider"
	e, err = svc.Update(ctx, actor, e.ID, UpdateRequest{Kind: &provider})
	require.NoError(t, err)
	assert.Equal(t, KindProvider, e.Kind)

	blank := ""
	_, err = svc.Update(ctx, actor, e.ID, UpdateRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrNameRequired)
}
