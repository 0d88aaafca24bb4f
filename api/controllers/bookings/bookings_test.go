package bookings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingsvc "github.com/bengkelku/bengkel-backend/internal/bookings"
	"github.com/bengkelku/bengkel-backend/internal/directory"
	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/db/dbtest"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/logger"
	"github.com/bengkelku/bengkel-backend/pkg/types"
)

type harness struct {
	router http.Handler
	client *db.Client
	today  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.Open(t)
	now := time.Date(2026, 3, 2, 1, 30, 0, 0, time.UTC)
	svc, err := bookingsvc.NewService(
		bookingsvc.NewRepository(client.DB()),
		directory.NewRepository(client.DB()),
		client,
		time.UTC,
		bookingsvc.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	logg := logger.Nop()
	r := chi.NewRouter()
	r.Post("/bookings", Create(svc, logg))
	r.Get("/bookings", List(svc, logg))
	r.Get("/bookings/exists", Exists(svc, logg))
	r.Get("/bookings/{bookingId}", Detail(svc, logg))
	r.Patch("/bookings/{bookingId}/status", UpdateStatus(svc, logg))
	return &harness{router: r, client: client, today: now.Format(bookingsvc.DayLayout)}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) seed(t *testing.T) (*models.User, *models.Vehicle) {
	t.Helper()
	user := &models.User{Name: "Budi", Email: fmt.Sprintf("%s@example.com", uuid.NewString())}
	require.NoError(t, h.client.DB().Create(user).Error)
	vehicle := &models.Vehicle{UserID: user.ID, PlateNumber: "B " + uuid.NewString()[:8]}
	require.NoError(t, h.client.DB().Create(vehicle).Error)
	return user, vehicle
}

func decodeBooking(t *testing.T, w *httptest.ResponseRecorder) bookingsvc.BookingDTO {
	t.Helper()
	var env struct {
		Data bookingsvc.BookingDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env.Error
}

func TestCreateReturnsQueueNumber(t *testing.T) {
	h := newHarness(t)
	user, vehicle := h.seed(t)

	w := h.do(t, http.MethodPost, "/bookings", map[string]any{
		"userId":      user.ID,
		"kendaraanId": vehicle.ID,
		"message":     "  ganti oli  ",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decodeBooking(t, w)
	assert.Equal(t, 1, booking.QueueNumber)
	assert.Equal(t, "ganti oli", booking.Message)
	assert.Equal(t, h.today, booking.BookingDay)

	other, _ := h.seed(t)
	w = h.do(t, http.MethodPost, "/bookings", map[string]any{"userId": other.ID, "message": "servis"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, decodeBooking(t, w).QueueNumber)
}

func TestCreateRejectsBadBodies(t *testing.T) {
	h := newHarness(t)
	user, _ := h.seed(t)

	cases := map[string]any{
		"missing message": map[string]any{"userId": user.ID},
		"bad uuid":        map[string]any{"userId": "nope", "message": "x"},
		"unknown field":   map[string]any{"userId": user.ID, "message": "x", "extra": true},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/bookings", body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, w).Code)
		})
	}

	w := h.do(t, http.MethodPost, "/bookings", map[string]any{"userId": uuid.New(), "message": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDuplicateVehicleConflicts(t *testing.T) {
	h := newHarness(t)
	user, vehicle := h.seed(t)
	body := map[string]any{"userId": user.ID, "kendaraanId": vehicle.ID, "message": "servis"}

	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/bookings", body).Code)
	w := h.do(t, http.MethodPost, "/bookings", body)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(pkgerrors.CodeConflict), decodeError(t, w).Code)
}

func TestExistsEndpoint(t *testing.T) {
	h := newHarness(t)
	user, vehicle := h.seed(t)

	path := fmt.Sprintf("/bookings/exists?vehicleId=%s&date=%s", vehicle.ID, h.today)
	w := h.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"exists":false}}`, w.Body.String())

	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/bookings", map[string]any{
		"userId": user.ID, "kendaraanId": vehicle.ID, "message": "servis",
	}).Code)

	w = h.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"exists":true}}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/bookings/exists?date="+h.today, nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/bookings/exists?vehicleId="+vehicle.ID.String()+"&date=02-03-2026", nil).Code)
}

func TestDetailAndStatus(t *testing.T) {
	h := newHarness(t)
	user, _ := h.seed(t)

	w := h.do(t, http.MethodPost, "/bookings", map[string]any{"userId": user.ID, "message": "servis"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBooking(t, w)

	w = h.do(t, http.MethodGet, "/bookings/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decodeBooking(t, w).ID)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/bookings/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/bookings/"+uuid.NewString(), nil).Code)

	w = h.do(t, http.MethodPatch, "/bookings/"+created.ID.String()+"/status", map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", string(decodeBooking(t, w).Status))

	w = h.do(t, http.MethodPatch, "/bookings/"+created.ID.String()+"/status", map[string]any{"status": "CONFIRMED"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), decodeError(t, w).Code)

	w = h.do(t, http.MethodPatch, "/bookings/"+created.ID.String()+"/status", map[string]any{"status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListFiltersByDay(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		user, _ := h.seed(t)
		require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/bookings", map[string]any{"userId": user.ID, "message": "servis"}).Code)
	}

	w := h.do(t, http.MethodGet, "/bookings?day="+h.today+"&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data bookingsvc.BookingList `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	require.Len(t, env.Data.Items, 2)
	assert.Equal(t, 1, env.Data.Items[0].QueueNumber)
	assert.NotEmpty(t, env.Data.NextCursor)

	w = h.do(t, http.MethodGet, "/bookings?day=2026-01-01", nil)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	assert.Empty(t, env.Data.Items)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/bookings?status=LATE", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/bookings?limit=0", nil).Code)
}
