package academics_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/academics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/auth"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	gradesFor int64
	statsYear int
	err       error
}

func (f *fakeRepo) ActiveGradeLevels(context.Context) ([]academics.GradeLevel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []academics.GradeLevel{{ID: 1, Name: "Primero", SortOrder: 1, Status: academics.StatusActive}}, nil
}

func (f *fakeRepo) CurrentSections(context.Context, int) ([]academics.SectionSummary, error) {
	return []academics.SectionSummary{}, f.err
}

func (f *fakeRepo) GradesForStudent(_ context.Context, studentID int64) ([]academics.StudentGrade, error) {
	f.gradesFor = studentID
	return []academics.StudentGrade{{Subject: "Matemática", Score: 17, Period: "I Bimestre"}}, f.err
}

func (f *fakeRepo) Statistics(_ context.Context, year int) (*academics.Statistics, error) {
	f.statsYear = year
	return &academics.Statistics{TotalStudents: 120, TotalTeachers: 14, TotalSections: 6, SchoolYear: year}, f.err
}

func setup(t *testing.T, repo academics.Repository) (chi.Router, func(account.Principal) *http.Cookie) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { store.Close() })
	codec := session.NewCodec("academics-secret", time.Hour)
	gate := auth.NewGate(store, codec, "sid", logger, metrics.NewMock())

	router := chi.NewRouter()
	router.Use(gate.Authenticate)
	router.Route("/api", academics.NewHandler(repo, gate, logger).RegisterRoutes)

	cookie := func(p account.Principal) *http.Cookie {
		token, err := store.Create(context.Background(), p)
		require.NoError(t, err)
		value, err := codec.Encode(token)
		require.NoError(t, err)
		return &http.Cookie{Name: "sid", Value: value}
	}
	return router, cookie
}

func get(router http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler(t *testing.T) {
	repo := &fakeRepo{}
	router, cookie := setup(t, repo)

	studentID := int64(42)
	teacherID := int64(7)
	student := cookie(account.Principal{ID: 1, Role: account.RoleStudent, StudentID: &studentID})
	teacher := cookie(account.Principal{ID: 2, Role: account.RoleTeacher, TeacherID: &teacherID})
	admin := cookie(account.Principal{ID: 3, Role: account.RoleAdministrator})

	t.Run("PublicReads", func(t *testing.T) {
		w := get(router, "/api/grados", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":1,"nombre":"Primero","orden":1,"estado":"activo"}]`, w.Body.String())

		w = get(router, "/api/secciones", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("MyGrades", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(router, "/api/mis-notas", nil).Code)
		assert.Equal(t, http.StatusForbidden, get(router, "/api/mis-notas", teacher).Code)

		w := get(router, "/api/mis-notas", student)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(42), repo.gradesFor)
		assert.Contains(t, w.Body.String(), `"materia":"Matemática"`)
	})

	t.Run("Statistics", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(router, "/api/estadisticas", teacher).Code)
		assert.Equal(t, http.StatusForbidden, get(router, "/api/estadisticas", nil).Code)

		w := get(router, "/api/estadisticas", admin)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, time.Now().Year(), repo.statsYear)
		assert.Contains(t, w.Body.String(), `"totalEstudiantes":120`)
		assert.Contains(t, w.Body.String(), `"anoEscolar"`)
	})
}

func TestHandler_StoreFailure(t *testing.T) {
	router, _ := setup(t, &fakeRepo{err: errors.New("connection refused")})

	w := get(router, "/api/grados", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error al obtener grados"}`, w.Body.String())
}
