package directory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directorysvc "github.com/bengkelku/bengkel-backend/internal/directory"
	"github.com/bengkelku/bengkel-backend/pkg/db/dbtest"
	"github.com/bengkelku/bengkel-backend/pkg/logger"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := directorysvc.NewService(directorysvc.NewRepository(client.DB()))
	require.NoError(t, err)

	logg := logger.Nop()
	r := chi.NewRouter()
	r.Post("/users", CreateUser(svc, logg))
	r.Get("/users", ListUsers(svc, logg))
	r.Get("/users/{userId}", GetUser(svc, logg))
	r.Post("/employees", CreateEmployee(svc, logg))
	r.Get("/employees", ListEmployees(svc, logg))
	r.Get("/employees/{employeeId}", GetEmployee(svc, logg))
	r.Post("/vehicles", CreateVehicle(svc, logg))
	r.Get("/vehicles", ListVehicles(svc, logg))
	r.Get("/vehicles/{vehicleId}", GetVehicle(svc, logg))
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env.Data
}

func TestUsersAndVehicles(t *testing.T) {
	h := newRouter(t)

	w := do(t, h, http.MethodPost, "/users", map[string]any{"name": "Budi", "email": "Budi@Example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decodeData[directorysvc.UserDTO](t, w)
	assert.Equal(t, "budi@example.com", user.Email)

	w = do(t, h, http.MethodPost, "/users", map[string]any{"name": "Budi 2", "email": "budi@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/users", map[string]any{"name": "x", "email": "nope"}).Code)

	w = do(t, h, http.MethodPost, "/vehicles", map[string]any{"userId": user.ID, "plateNumber": "B 1234 XY", "brand": "Honda", "model": "Beat"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	vehicle := decodeData[directorysvc.VehicleDTO](t, w)
	assert.Equal(t, user.ID, vehicle.UserID)

	w = do(t, h, http.MethodPost, "/vehicles", map[string]any{"userId": uuid.New(), "plateNumber": "B 9 Z"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/vehicles?userId="+user.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[directorysvc.VehicleList](t, w).Items, 1)

	w = do(t, h, http.MethodGet, "/users/"+user.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Budi", decodeData[directorysvc.UserDTO](t, w).Name)
}

func TestEmployees(t *testing.T) {
	h := newRouter(t)

	w := do(t, h, http.MethodPost, "/employees", map[string]any{"name": "Agus", "position": "mekanik"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	employee := decodeData[directorysvc.EmployeeDTO](t, w)

	w = do(t, h, http.MethodGet, "/employees/"+employee.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mekanik", decodeData[directorysvc.EmployeeDTO](t, w).Position)

	w = do(t, h, http.MethodGet, "/employees", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[directorysvc.EmployeeList](t, w).Items, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/employees", map[string]any{"name": "Agus"}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/employees/"+uuid.NewString(), nil).Code)
}
