package bookings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengkelku/bengkel-backend/internal/directory"
	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/db/dbtest"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

type fixture struct {
	svc    Service
	client *db.Client
	clock  *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	clock := time.Date(2026, 3, 2, 1, 30, 0, 0, time.UTC)
	f := &fixture{client: client, clock: &clock}
	svc, err := NewService(
		NewRepository(client.DB()),
		directory.NewRepository(client.DB()),
		client,
		loc,
		WithClock(func() time.Time { return *f.clock }),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) user(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{Name: "Budi", Email: fmt.Sprintf("%s@example.com", uuid.NewString())}
	require.NoError(t, f.client.DB().Create(user).Error)
	return user
}

func (f *fixture) vehicle(t *testing.T, owner uuid.UUID) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{UserID: owner, PlateNumber: "B " + uuid.NewString()[:8]}
	require.NoError(t, f.client.DB().Create(vehicle).Error)
	return vehicle
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	dir := directory.NewRepository(client.DB())

	_, err := NewService(nil, dir, client, time.UTC)
	assert.Error(t, err)
	_, err = NewService(repo, nil, client, time.UTC)
	assert.Error(t, err)
	_, err = NewService(repo, dir, nil, time.UTC)
	assert.Error(t, err)
	_, err = NewService(repo, dir, client, nil)
	assert.NoError(t, err)
}

func TestCreateAssignsSequentialQueueNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var queues []int
	for i := 0; i < 5; i++ {
		user := f.user(t)
		booking, err := f.svc.Create(ctx, CreateInput{UserID: user.ID, Message: "servis rutin"})
		require.NoError(t, err)
		assert.Equal(t, enums.BookingStatusPending, booking.Status)
		// 01:30 UTC is 08:30 in Jakarta
		assert.Equal(t, "2026-03-02", booking.BookingDay)
		queues = append(queues, booking.QueueNumber)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, queues)

	list, err := f.svc.List(ctx, ListFilters{Day: "2026-03-02"}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	got := make([]int, 0, len(list.Items))
	for _, item := range list.Items {
		got = append(got, item.QueueNumber)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, got)
}

func TestCreateResetsQueueOnNewDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t)

	first, err := f.svc.Create(ctx, CreateInput{UserID: user.ID, Message: "a"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{UserID: user.ID, Message: "b"})
	require.NoError(t, err)

	// 17:30 UTC is already the next day in Jakarta
	*f.clock = time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	next, err := f.svc.Create(ctx, CreateInput{UserID: user.ID, Message: "c"})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-02", first.BookingDay)
	assert.Equal(t, "2026-03-03", next.BookingDay)
	assert.Equal(t, 1, next.QueueNumber)
}

func TestCreateValidatesReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t)
	stranger := f.user(t)
	vehicle := f.vehicle(t, owner.ID)

	_, err := f.svc.Create(ctx, CreateInput{Message: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, CreateInput{UserID: owner.ID, Message: "  "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, CreateInput{UserID: uuid.New(), Message: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	missing := uuid.New()
	_, err = f.svc.Create(ctx, CreateInput{UserID: owner.ID, VehicleID: &missing, Message: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Create(ctx, CreateInput{UserID: stranger.ID, VehicleID: &vehicle.ID, Message: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var count int64
	require.NoError(t, f.client.DB().Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRejectsDuplicateVehicleBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t)
	vehicle := f.vehicle(t, user.ID)

	first, err := f.svc.Create(ctx, CreateInput{UserID: user.ID, VehicleID: &vehicle.ID, Message: "rem bunyi"})
	require.NoError(t, err)

	exists, err := f.svc.Exists(ctx, vehicle.ID, first.BookingDay)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = f.svc.Create(ctx, CreateInput{UserID: user.ID, VehicleID: &vehicle.ID, Message: "lagi"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	// a cancelled booking frees the vehicle for the day
	_, err = f.svc.UpdateStatus(ctx, first.ID, enums.BookingStatusCancelled)
	require.NoError(t, err)

	exists, err = f.svc.Exists(ctx, vehicle.ID, first.BookingDay)
	require.NoError(t, err)
	assert.False(t, exists)

	again, err := f.svc.Create(ctx, CreateInput{UserID: user.ID, VehicleID: &vehicle.ID, Message: "lagi"})
	require.NoError(t, err)
	assert.Equal(t, 2, again.QueueNumber)
}

func TestUniqueIndexClosesDuplicateRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t)
	vehicle := f.vehicle(t, user.ID)

	_, err := f.svc.Create(ctx, CreateInput{UserID: user.ID, VehicleID: &vehicle.ID, Message: "a"})
	require.NoError(t, err)

	// a writer that skipped the pre-check still hits the partial index
	err = NewRepository(f.client.DB()).Create(ctx, &models.Booking{
		UserID:      user.ID,
		VehicleID:   &vehicle.ID,
		BookingDay:  "2026-03-02",
		QueueNumber: 99,
		RequestedAt: time.Now().UTC(),
		Message:     "b",
		Status:      enums.BookingStatusPending,
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestExistsValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Exists(ctx, uuid.Nil, "2026-03-02")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Exists(ctx, uuid.New(), "02/03/2026")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	exists, err := f.svc.Exists(ctx, uuid.New(), "2026-03-02")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t)

	booking, err := f.svc.Create(ctx, CreateInput{UserID: user.ID, Message: "tune up"})
	require.NoError(t, err)

	same, err := f.svc.UpdateStatus(ctx, booking.ID, enums.BookingStatusPending)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusPending, same.Status)

	confirmed, err := f.svc.UpdateStatus(ctx, booking.ID, enums.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusConfirmed, confirmed.Status)

	_, err = f.svc.UpdateStatus(ctx, booking.ID, enums.BookingStatusCancelled)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.UpdateStatus(ctx, uuid.New(), enums.BookingStatusCancelled)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.UpdateStatus(ctx, booking.ID, enums.BookingStatus("DONE"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to enums.BookingStatus
		want     bool
	}{
		{enums.BookingStatusPending, enums.BookingStatusConfirmed, true},
		{enums.BookingStatusPending, enums.BookingStatusCancelled, true},
		{enums.BookingStatusConfirmed, enums.BookingStatusCancelled, false},
		{enums.BookingStatusCancelled, enums.BookingStatusPending, false},
		{enums.BookingStatusConfirmed, enums.BookingStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestListFiltersAndCursor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, CreateInput{UserID: user.ID, Message: "x"})
		require.NoError(t, err)
	}
	pending := enums.BookingStatusPending
	page, err := f.svc.List(ctx, ListFilters{Status: &pending}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := f.svc.List(ctx, ListFilters{Status: &pending}, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	_, err = f.svc.List(ctx, ListFilters{Day: "yesterday"}, pagination.Params{Limit: 2})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.List(ctx, ListFilters{}, pagination.Params{Limit: 2, Cursor: "!!!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
