package records

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/Natalia-54/sistema-academico-jfk/internal/auth"
	"github.com/Natalia-54/sistema-academico-jfk/internal/httputil"
	"github.com/Natalia-54/sistema-academico-jfk/internal/password"
	"github.com/Natalia-54/sistema-academico-jfk/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Extra room for the text fields sent next to the photo.
const formOverhead = 1 << 20

type Handler struct {
	service   *Service
	gate      *auth.Gate
	maxUpload int64
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewHandler(service *Service, gate *auth.Gate, maxUpload int64, logger *slog.Logger) *Handler {
	validate := validator.New()
	// max=72 counts runes; bcrypt's limit is in bytes.
	_ = validate.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return password.FitsBcrypt(fl.Field().String())
	})

	return &Handler{
		service:   service,
		gate:      gate,
		maxUpload: maxUpload,
		validate:  validate,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	authenticated := h.gate.Require(auth.RequireAuthenticated)
	admin := h.gate.Require(auth.RequireAdministrator)

	router.With(authenticated).Get("/estudiantes", h.ListStudents)
	router.With(admin).Post("/estudiantes", h.CreateStudent)
	router.With(authenticated).Get("/profesores", h.ListTeachers)
	router.With(admin).Post("/profesores", h.CreateTeacher)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListStudents(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list students", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error al obtener estudiantes")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.service.ListTeachers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list teachers", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error al obtener profesores")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, teachers)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	photo, err := h.parseForm(w, r)
	if err != nil {
		h.handleServiceError(w, r, err, "Error al crear estudiante")
		return
	}

	req, err := readStudentForm(r)
	if err == nil {
		err = h.validate.Struct(req)
	}
	if err != nil {
		h.handleServiceError(w, r, err, "Error al crear estudiante")
		return
	}

	if _, err := h.service.CreateStudent(r.Context(), req, photo); err != nil {
		h.handleServiceError(w, r, err, "Error al crear estudiante")
		return
	}

	httputil.RespondSuccess(w, "Estudiante creado exitosamente")
}

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	photo, err := h.parseForm(w, r)
	if err != nil {
		h.handleServiceError(w, r, err, "Error al crear profesor")
		return
	}

	req, err := readTeacherForm(r)
	if err == nil {
		err = h.validate.Struct(req)
	}
	if err != nil {
		h.handleServiceError(w, r, err, "Error al crear profesor")
		return
	}

	if _, err := h.service.CreateTeacher(r.Context(), req, photo); err != nil {
		h.handleServiceError(w, r, err, "Error al crear profesor")
		return
	}

	httputil.RespondSuccess(w, "Profesor creado exitosamente")
}

// parseForm reads a multipart or url encoded body and returns the optional
// "foto" file.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)

	if err := r.ParseMultipartForm(h.maxUpload + formOverhead); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, upload.ErrTooLarge
		}
		return nil, ErrInvalidField
	}

	_, header, err := r.FormFile("foto")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return header, nil
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrDuplicateLoginCode):
		h.logger.InfoContext(r.Context(), "duplicate login code", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "El código de usuario ya existe")
	case errors.Is(err, upload.ErrNotImage):
		h.logger.InfoContext(r.Context(), "rejected upload", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Solo se permiten archivos de imagen")
	case errors.Is(err, upload.ErrTooLarge):
		h.logger.InfoContext(r.Context(), "rejected upload", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "El archivo supera el tamaño máximo permitido")
	case errors.As(err, &validationErrs), errors.Is(err, ErrInvalidField), errors.Is(err, password.ErrTooLong):
		h.logger.WarnContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Datos inválidos: "+err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "failed to create person", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
