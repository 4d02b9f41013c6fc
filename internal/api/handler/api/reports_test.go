// internal/api/handler/api/reports_test.go
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportsMux(h *ReportsHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/reports", h.List)
	mux.HandleFunc("GET /api/v1/reports/{symbol}/{interval}/{id}", h.Get)
	mux.HandleFunc("DELETE /api/v1/reports/{symbol}/{interval}/{id}", h.Delete)
	return mux
}

func TestReportsHandler_List(t *testing.T) {
	store := newFakeArchive()
	store.Save(context.Background(), fakeReport("BTCUSDT", "1h"))
	store.Save(context.Background(), fakeReport("ETHUSDT", "1h"))
	mux := reportsMux(NewReportsHandler(store))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/reports?symbol=btcusdt", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, 1.0, data["count"])
	ref := data["reports"].([]any)[0].(map[string]any)
	assert.Equal(t, "reports/BTCUSDT/1h/r-BTCUSDT.json", ref["path"])
}

func TestReportsHandler_ListEmpty(t *testing.T) {
	mux := reportsMux(NewReportsHandler(newFakeArchive()))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/reports", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeData(t, w)["reports"])
}

func TestReportsHandler_Get(t *testing.T) {
	store := newFakeArchive()
	store.Save(context.Background(), fakeReport("BTCUSDT", "1h"))
	mux := reportsMux(NewReportsHandler(store))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/reports/BTCUSDT/1h/r-BTCUSDT", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r-BTCUSDT", decodeData(t, w)["id"])
}

func TestReportsHandler_GetMissing(t *testing.T) {
	mux := reportsMux(NewReportsHandler(newFakeArchive()))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/reports/BTCUSDT/1h/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REPORT_NOT_FOUND", decodeError(t, w).Code)
}

func TestReportsHandler_Delete(t *testing.T) {
	store := newFakeArchive()
	store.Save(context.Background(), fakeReport("BTCUSDT", "1h"))
	mux := reportsMux(NewReportsHandler(store))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/v1/reports/btcusdt/1h/r-BTCUSDT", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.reports)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/v1/reports/BTCUSDT/1h/r-BTCUSDT", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REPORT_NOT_FOUND", decodeError(t, w).Code)
}
