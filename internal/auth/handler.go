package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// Client facing messages. The web client is Spanish.
const (
	msgNotAuthenticated = "No autenticado"
	msgAdminRequired    = "Acceso denegado. Se requiere rol de administrador."
	msgAccessDenied     = "Acceso denegado"
	msgAccountNotFound  = "Usuario no encontrado o inactivo"
	msgBadCredential    = "Contraseña incorrecta"
	msgInvalidRequest   = "Solicitud inválida"
	msgLogoutFailed     = "Error al cerrar sesión"
	msgServerError      = "Error del servidor"
)

type CookieOptions struct {
	Name   string
	Secure bool
}

// CookieEncoder signs a session token into a cookie value. *session.Codec
// implements it.
type CookieEncoder interface {
	Encode(token string) (string, error)
	TTL() time.Duration
}

type Handler struct {
	service *Service
	codec   CookieEncoder
	cookie  CookieOptions
	logger  *slog.Logger
}

func NewHandler(service *Service, codec CookieEncoder, cookie CookieOptions, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		codec:   codec,
		cookie:  cookie,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/login", h.Login)
	router.Post("/logout", h.Logout)
	router.Get("/user", h.CurrentUser)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode login request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	// Empty credentials go through the lookup and fail as unknown accounts.
	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	cookieValue, err := h.codec.Encode(result.Token)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to sign session cookie", "error", err)
		if err := h.service.Logout(r.Context(), result.Token); err != nil {
			h.logger.WarnContext(r.Context(), "failed to discard session after cookie signing failure", "error", err)
		}
		httputil.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	SetSessionCookie(w, h.cookie, cookieValue, int(h.codec.TTL().Seconds()))

	h.logger.InfoContext(r.Context(), "user logged in",
		"user_id", result.Principal.ID,
		"role", result.Principal.Role,
	)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"redirect": result.Redirect,
		"user":     result.Principal,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, msgLogoutFailed)
		return
	}

	ClearSessionCookie(w, h.cookie)
	httputil.RespondSuccess(w, "")
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, principal)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		h.logger.InfoContext(r.Context(), "login rejected", "reason", err)
		httputil.RespondWithError(w, http.StatusUnauthorized, msgAccountNotFound)
	case errors.Is(err, ErrBadCredential):
		h.logger.InfoContext(r.Context(), "login rejected", "reason", err)
		httputil.RespondWithError(w, http.StatusUnauthorized, msgBadCredential)
	default:
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, msgServerError)
	}
}

// decodeLoginRequest accepts a JSON body or a url encoded form.
func decodeLoginRequest(r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		req.UserType = r.PostForm.Get("userType")
		return req, nil
	}

	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// SetSessionCookie stores the signed session token in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, opts CookieOptions, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    value,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
