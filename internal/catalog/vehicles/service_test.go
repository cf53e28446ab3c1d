package vehicles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/catalog/crud/crudtest"
	"github.com/amexing/amexing-ops/internal/shared"
)

func newService(t *testing.T) (*Service, *crudtest.Memory[Vehicle, *Vehicle]) {
	t.Helper()
	now = func() time.Time { return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })
	repo := crudtest.New[Vehicle, *Vehicle](ErrNotFound)
	repo.Conflict = ErrPlateTaken
	repo.Unique = func(a, b Vehicle) bool { return a.Plate == b.Plate }
	return NewService(repo, nil, nil), repo
}

func TestCreateVehicle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	req := CreateRequest{Plate: "ab-123 c", Brand: "Toyota", Model: "Hiace", Year: 2022, VehicleTypeID: 2, Capacity: 12}

	v, err := svc.Create(ctx, shared.Actor{ID: 1}, req)
	require.NoError(t, err)
	assert.Equal(t, "AB-123C", v.Plate)

	_, err = svc.Create(ctx, shared.Actor{ID: 1}, req)
	assert.ErrorIs(t, err, ErrPlateTaken)

	for _, year := range []int{1989, 2026} {
		bad := req
		bad.Plate, bad.Year = "ZZZ-999", year
		_, err = svc.Create(ctx, shared.Actor{ID: 1}, bad)
		assert.ErrorIs(t, err, ErrInvalidYear, "year %d", year)
	}
	ok := req
	ok.Plate, ok.Year = "NEXT-2025", 2025
	_, err = svc.Create(ctx, shared.Actor{ID: 1}, ok)
	assert.NoError(t, err)
}

func TestUpdateVehicle(t *testing.T) {
	svc, repo := newService(t)
	seeded := repo.Seed(Vehicle{Plate: "QRO-001", Brand: "Nissan", Model: "Urvan", Year: 2020, VehicleTypeID: 1, Capacity: 14}, shared.StateInactive)

	_, err := svc.Update(context.Background(), shared.Actor{ID: 1}, seeded.ID, UpdateRequest{})
	assert.ErrorIs(t, err, crud.ErrNoChanges)

	brand := "  "
	_, err = svc.Update(context.Background(), shared.Actor{ID: 1}, seeded.ID, UpdateRequest{Brand: &brand})
	assert.ErrorIs(t, err, ErrFieldRequired)

	capacity := 10
	v, err := svc.Update(context.Background(), shared.Actor{ID: 1}, seeded.ID, UpdateRequest{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 10, v.Capacity)
	assert.False(t, v.Active)
}
