package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfin/internal/platform/metrics"
	"civicfin/pkg/platform/middleware/requestid"
	"civicfin/pkg/requestcontext"
)

type routes struct {
	sawRequestID string
	sawTime      bool
}

func (rt *routes) Register(r chi.Router) {
	r.Get("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		rt.sawRequestID = requestcontext.RequestID(r.Context())
		first := requestcontext.Now(r.Context())
		rt.sawTime = first.Equal(requestcontext.Now(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/v1/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newTestRouter(checks map[string]HealthCheck) (http.Handler, *routes) {
	rt := &routes{}
	h := NewRouter(Options{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      metrics.NewWith(prometheus.NewRegistry()),
		HealthChecks: checks,
	}, rt)
	return h, rt
}

func TestRouterMiddlewareChain(t *testing.T) {
	h, rt := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set(requestid.Header, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(requestid.Header))
	assert.Equal(t, "abc-123", rt.sawRequestID)
	assert.True(t, rt.sawTime)
}

func TestRouterRecoversPanics(t *testing.T) {
	h, _ := newTestRouter(nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		h, _ := newTestRouter(map[string]HealthCheck{
			"redis": func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "ok", body.Checks["redis"])
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		h, _ := newTestRouter(map[string]HealthCheck{
			"redis":    func(context.Context) error { return nil },
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "connection refused", body.Checks["postgres"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
