package health_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Natalia-54/sistema-academico-jfk/internal/health"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func serve(p health.Pinger, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	health.NewHandler(p, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := serve(stubPinger{}, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("DatabaseUp", func(t *testing.T) {
		w := serve(stubPinger{}, "/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","database":"up"}`, w.Body.String())
	})

	t.Run("DatabaseDown", func(t *testing.T) {
		w := serve(stubPinger{err: errors.New("connection refused")}, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"not ready","database":"down"}`, w.Body.String())
	})
}
