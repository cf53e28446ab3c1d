package vehicletypes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/catalog/crud/crudtest"
	"github.com/amexing/amexing-ops/internal/shared"
)

func newRepo() *crudtest.Memory[VehicleType, *VehicleType] {
	repo := crudtest.New[VehicleType, *VehicleType](ErrNotFound)
	repo.Conflict = ErrCodeTaken
	repo.Unique = func(a, b VehicleType) bool { return a.Code == b.Code }
	return repo
}

func TestCreateNormalizesCode(t *testing.T) {
	svc := NewService(newRepo(), nil, nil)
	vt, err := svc.Create(context.Background(), shared.Actor{ID: 1}, CreateRequest{Code: " van ", Name: "Van ejecutiva", Capacity: 10})
	require.NoError(t, err)
	assert.Equal(t, "VAN", vt.Code)

	_, err = svc.Create(context.Background(), shared.Actor{ID: 1}, CreateRequest{Code: "VAN", Name: "Otra", Capacity: 8})
	assert.ErrorIs(t, err, ErrCodeTaken)

	_, err = svc.Create(context.Background(), shared.Actor{ID: 1}, CreateRequest{Code: "SUV", Name: " "})
	assert.ErrorIs(t, err, ErrFieldRequired)

	_, err = svc.Create(context.Background(), shared.Actor{ID: 1}, CreateRequest{Code: "SUV", Name: "SUV"})
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestUpdateCapacity(t *testing.T) {
	repo := newRepo()
	seeded := repo.Seed(VehicleType{Code: "SEDAN", Name: "Sedán", Capacity: 4}, shared.StateActive)
	svc := NewService(repo, nil, nil)

	zero := 0
	_, err := svc.Update(context.Background(), shared.Actor{ID: 1}, seeded.ID, UpdateRequest{Capacity: &zero})
	assert.ErrorIs(t, err, ErrCapacity)

	three := 3
	vt, err := svc.Update(context.Background(), shared.Actor{ID: 1}, seeded.ID, UpdateRequest{Capacity: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, vt.Capacity)
}
