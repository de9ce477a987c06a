package academics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/auth"
	"github.com/Natalia-54/sistema-academico-jfk/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	repo   Repository
	gate   *auth.Gate
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(repo Repository, gate *auth.Gate, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		gate:   gate,
		logger: logger,
		now:    time.Now,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/grados", h.GradeLevels)
	router.Get("/secciones", h.Sections)
	router.With(h.gate.RequireRole(account.RoleStudent)).Get("/mis-notas", h.MyGrades)
	router.With(h.gate.Require(auth.RequireAdministrator)).Get("/estadisticas", h.Statistics)
}

func (h *Handler) GradeLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.repo.ActiveGradeLevels(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list grade levels", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error al obtener grados")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, levels)
}

func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.repo.CurrentSections(r.Context(), h.now().Year())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list sections", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error al obtener secciones")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, sections)
}

func (h *Handler) MyGrades(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal.StudentID == nil {
		httputil.RespondWithError(w, http.StatusForbidden, "Acceso denegado")
		return
	}

	grades, err := h.repo.GradesForStudent(r.Context(), *principal.StudentID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list grades", "student_id", *principal.StudentID, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error al obtener notas")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, grades)
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Statistics(r.Context(), h.now().Year())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute statistics", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error al obtener estadísticas")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, stats)
}
