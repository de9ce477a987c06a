package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/auth"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	student := &account.Principal{Role: account.RoleStudent, StudentID: ptr(int64(1))}
	teacher := &account.Principal{Role: account.RoleTeacher, TeacherID: ptr(int64(2))}
	admin := &account.Principal{Role: account.RoleAdministrator}

	tests := []struct {
		name      string
		principal *account.Principal
		req       auth.Requirement
		want      auth.Outcome
	}{
		{"none/anonymous", nil, auth.RequireNone, auth.Proceed},
		{"none/student", student, auth.RequireNone, auth.Proceed},
		{"none/admin", admin, auth.RequireNone, auth.Proceed},
		{"authenticated/anonymous", nil, auth.RequireAuthenticated, auth.RejectUnauthenticated},
		{"authenticated/student", student, auth.RequireAuthenticated, auth.Proceed},
		{"authenticated/teacher", teacher, auth.RequireAuthenticated, auth.Proceed},
		{"authenticated/admin", admin, auth.RequireAuthenticated, auth.Proceed},
		{"administrator/anonymous", nil, auth.RequireAdministrator, auth.RejectForbidden},
		{"administrator/student", student, auth.RequireAdministrator, auth.RejectForbidden},
		{"administrator/teacher", teacher, auth.RequireAdministrator, auth.RejectForbidden},
		{"administrator/admin", admin, auth.RequireAdministrator, auth.Proceed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.Decide(tt.principal, tt.req))
		})
	}
}

func TestDecideRole(t *testing.T) {
	student := &account.Principal{Role: account.RoleStudent, StudentID: ptr(int64(1))}
	teacher := &account.Principal{Role: account.RoleTeacher, TeacherID: ptr(int64(2))}

	assert.Equal(t, auth.RejectUnauthenticated, auth.DecideRole(nil, account.RoleStudent))
	assert.Equal(t, auth.Proceed, auth.DecideRole(student, account.RoleStudent))
	assert.Equal(t, auth.RejectForbidden, auth.DecideRole(teacher, account.RoleStudent))
}

type gateFixture struct {
	store  *session.MemoryStore
	codec  *session.Codec
	router chi.Router
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	store := session.NewMemoryStore(24 * time.Hour)
	t.Cleanup(func() { store.Close() })
	codec := session.NewCodec("gate-secret", 24*time.Hour)
	gate := auth.NewGate(store, codec, "sid", discardLogger(), metrics.NewMock())

	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	router := chi.NewRouter()
	router.Use(gate.Authenticate)
	router.With(gate.Require(auth.RequireAuthenticated)).Get("/api/estudiantes", ok)
	router.With(gate.Require(auth.RequireAdministrator)).Get("/api/estadisticas", ok)
	router.With(gate.RequireRole(account.RoleStudent)).Get("/api/mis-notas", ok)
	router.With(gate.RequirePageRole(account.RoleTeacher)).Get("/panel-profesor.html", ok)

	return &gateFixture{store: store, codec: codec, router: router}
}

func (f *gateFixture) cookieFor(t *testing.T, p account.Principal) *http.Cookie {
	t.Helper()

	token, err := f.store.Create(context.Background(), p)
	require.NoError(t, err)
	value, err := f.codec.Encode(token)
	require.NoError(t, err)
	return &http.Cookie{Name: "sid", Value: value}
}

func (f *gateFixture) do(method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGate(t *testing.T) {
	f := newGateFixture(t)

	student := f.cookieFor(t, account.Principal{ID: 1, Role: account.RoleStudent, StudentID: ptr(int64(1))})
	teacher := f.cookieFor(t, account.Principal{ID: 2, Role: account.RoleTeacher, TeacherID: ptr(int64(2))})
	admin := f.cookieFor(t, account.Principal{ID: 3, Role: account.RoleAdministrator})

	t.Run("AuthenticatedRoute", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/estudiantes", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"No autenticado"}`, w.Body.String())

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/estudiantes", teacher).Code)
	})

	t.Run("AdministratorRoute", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/estadisticas", nil).Code)
		assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/estadisticas", student).Code)

		w := f.do(http.MethodGet, "/api/estadisticas", teacher)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Acceso denegado. Se requiere rol de administrador."}`, w.Body.String())

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/estadisticas", admin).Code)
	})

	t.Run("RoleRoute", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/mis-notas", nil).Code)
		assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/mis-notas", admin).Code)
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/mis-notas", student).Code)
	})

	t.Run("PageRouteRedirects", func(t *testing.T) {
		for _, cookie := range []*http.Cookie{nil, student, admin} {
			w := f.do(http.MethodGet, "/panel-profesor.html", cookie)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))
		}
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/panel-profesor.html", teacher).Code)
	})

	t.Run("ForgedCookieIsAnonymous", func(t *testing.T) {
		forged := &http.Cookie{Name: "sid", Value: "eyJhbGciOiJub25lIn0.e30."}
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/estudiantes", forged).Code)
	})

	t.Run("DestroyedSessionIsAnonymous", func(t *testing.T) {
		cookie := f.cookieFor(t, account.Principal{ID: 5, Role: account.RoleAdministrator})
		token, err := f.codec.Decode(cookie.Value)
		require.NoError(t, err)
		require.NoError(t, f.store.Destroy(context.Background(), token))

		assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/estadisticas", cookie).Code)
	})
}

type brokenStore struct{ session.Store }

func (brokenStore) Get(context.Context, string) (*account.Principal, error) {
	return nil, session.ErrStorage
}

func TestGate_StorageFailure(t *testing.T) {
	codec := session.NewCodec("gate-secret", time.Hour)
	gate := auth.NewGate(brokenStore{}, codec, "sid", discardLogger(), metrics.NewMock())

	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	router := chi.NewRouter()
	router.Use(gate.Authenticate)
	router.Get("/api/grados", ok)
	router.With(gate.Require(auth.RequireAuthenticated)).Get("/api/estudiantes", ok)

	value, err := codec.Encode("some-token")
	require.NoError(t, err)

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: value})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/api/grados"))
	assert.Equal(t, http.StatusInternalServerError, do("/api/estudiantes"))
}
