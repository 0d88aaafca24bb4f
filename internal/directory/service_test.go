package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengkelku/bengkel-backend/pkg/db/dbtest"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}

func TestCreateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	phone := " 0812-3456-7890 "
	user, err := svc.CreateUser(ctx, CreateUserInput{Name: " Budi ", Email: "Budi@Example.com", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Budi", user.Name)
	assert.Equal(t, "budi@example.com", user.Email)
	require.NotNil(t, user.Phone)
	assert.Equal(t, "0812-3456-7890", *user.Phone)

	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Budi Dua", Email: "budi@example.com"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "No Mail", Email: "not-an-email"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "x@example.com"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateVehicle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	owner, err := svc.CreateUser(ctx, CreateUserInput{Name: "Sari", Email: "sari@example.com"})
	require.NoError(t, err)

	_, err = svc.CreateVehicle(ctx, CreateVehicleInput{UserID: uuid.New(), PlateNumber: "B 1 AA"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	year := 2019
	vehicle, err := svc.CreateVehicle(ctx, CreateVehicleInput{
		UserID:      owner.ID,
		PlateNumber: "b  1234   xyz",
		Brand:       "Honda",
		Model:       "Vario",
		Year:        &year,
	})
	require.NoError(t, err)
	assert.Equal(t, "B 1234 XYZ", vehicle.PlateNumber)
	assert.Equal(t, owner.ID, vehicle.UserID)

	_, err = svc.CreateVehicle(ctx, CreateVehicleInput{UserID: owner.ID, PlateNumber: "B 1234 XYZ"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.CreateVehicle(ctx, CreateVehicleInput{UserID: owner.ID, PlateNumber: "   "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	other, err := svc.CreateUser(ctx, CreateUserInput{Name: "Joko", Email: "joko@example.com"})
	require.NoError(t, err)
	_, err = svc.CreateVehicle(ctx, CreateVehicleInput{UserID: other.ID, PlateNumber: "D 77 JK"})
	require.NoError(t, err)

	list, err := svc.ListVehicles(ctx, &owner.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, vehicle.ID, list.Items[0].ID)
}

func TestListEmployeesPaginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Andi", "Bayu", "Citra"} {
		_, err := svc.CreateEmployee(ctx, CreateEmployeeInput{Name: name, Position: "mechanic"})
		require.NoError(t, err)
	}

	first, err := svc.ListEmployees(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListEmployees(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, e := range append(first.Items, second.Items...) {
		seen[e.ID] = true
	}
	assert.Len(t, seen, 3)

	_, err = svc.ListEmployees(ctx, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "B 1234 XYZ", NormalizePlate("  b 1234\txyz "))
	assert.Equal(t, "", NormalizePlate("   "))
}
