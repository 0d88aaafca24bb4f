package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogsvc "github.com/bengkelku/bengkel-backend/internal/catalog"
	"github.com/bengkelku/bengkel-backend/internal/stock"
	"github.com/bengkelku/bengkel-backend/pkg/db/dbtest"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/logger"
	"github.com/bengkelku/bengkel-backend/pkg/types"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	client := dbtest.Open(t)
	ledger, err := stock.NewLedger(stock.NewRepository(client.DB()))
	require.NoError(t, err)
	svc, err := catalogsvc.NewService(catalogsvc.NewRepository(client.DB()), client, ledger)
	require.NoError(t, err)

	logg := logger.Nop()
	r := chi.NewRouter()
	r.Post("/services", CreateService(svc, logg))
	r.Get("/services", ListServices(svc, logg))
	r.Get("/services/{serviceId}", GetService(svc, logg))
	r.Patch("/services/{serviceId}", UpdateService(svc, logg))
	r.Delete("/services/{serviceId}", DeleteService(svc, logg))
	r.Post("/spareparts", CreateSparepart(svc, logg))
	r.Get("/spareparts", ListSpareparts(svc, logg))
	r.Get("/spareparts/{sparepartId}", GetSparepart(svc, logg))
	r.Patch("/spareparts/{sparepartId}", UpdateSparepart(svc, logg))
	r.Delete("/spareparts/{sparepartId}", DeleteSparepart(svc, logg))
	r.Post("/spareparts/{sparepartId}/stock-adjustments", AdjustStock(svc, logg))
	r.Get("/spareparts/{sparepartId}/movements", ListMovements(svc, logg))
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
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

func TestServiceCRUD(t *testing.T) {
	h := newRouter(t)

	w := do(t, h, http.MethodPost, "/services", map[string]any{"name": " Tune Up ", "harga": "150000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[catalogsvc.ServiceDTO](t, w)
	assert.Equal(t, "Tune Up", created.Name)

	w = do(t, h, http.MethodPatch, "/services/"+created.ID.String(), map[string]any{"harga": 175000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[catalogsvc.ServiceDTO](t, w)
	assert.True(t, decimal.NewFromInt(175000).Equal(updated.Price))
	assert.Equal(t, "Tune Up", updated.Name)

	w = do(t, h, http.MethodGet, "/services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[catalogsvc.ServiceList](t, w).Items, 1)

	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/services/"+created.ID.String(), nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/services/"+created.ID.String(), nil).Code)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/services", map[string]any{"name": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/services", map[string]any{"name": "x", "harga": -1}).Code)
}

func TestSparepartStockAdjustments(t *testing.T) {
	h := newRouter(t)

	w := do(t, h, http.MethodPost, "/spareparts", map[string]any{"name": "Oil Filter", "harga": 15000, "stock": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	part := decodeData[catalogsvc.SparepartDTO](t, w)
	base := "/spareparts/" + part.ID.String()

	w = do(t, h, http.MethodPost, base+"/stock-adjustments", map[string]any{"delta": 5, "note": "restock"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 15, decodeData[catalogsvc.SparepartDTO](t, w).Stock)

	w = do(t, h, http.MethodPost, base+"/stock-adjustments", map[string]any{"delta": -20})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	assert.Equal(t, string(pkgerrors.CodeInsufficientStock), env.Error.Code)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, base+"/stock-adjustments", map[string]any{"delta": 0}).Code)

	w = do(t, h, http.MethodGet, base+"/movements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	movements := decodeData[struct {
		Items []catalogsvc.MovementDTO `json:"items"`
	}](t, w)
	require.Len(t, movements.Items, 2)
	var total int
	for _, m := range movements.Items {
		total += m.QtyDelta
	}
	assert.Equal(t, 15, total)

	w = do(t, h, http.MethodPatch, base, map[string]any{"stock": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/spareparts/"+uuid.NewString()+"/movements", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, base+"/movements?limit=1000", nil).Code)
}
