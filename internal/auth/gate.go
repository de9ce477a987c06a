package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/httputil"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/session"
)

// Requirement is what a route demands of the caller.
type Requirement int

const (
	RequireNone Requirement = iota
	RequireAuthenticated
	RequireAdministrator
)

func (r Requirement) String() string {
	switch r {
	case RequireAuthenticated:
		return "authenticated"
	case RequireAdministrator:
		return "administrator"
	default:
		return "none"
	}
}

// Outcome is the gate's verdict for one request.
type Outcome int

const (
	Proceed Outcome = iota
	RejectUnauthenticated
	RejectForbidden
)

// Decide applies the access table to a session lookup result. A nil principal
// means the request carries no live session.
func Decide(principal *account.Principal, req Requirement) Outcome {
	switch req {
	case RequireNone:
		return Proceed
	case RequireAuthenticated:
		if principal == nil {
			return RejectUnauthenticated
		}
		return Proceed
	default:
		if principal == nil || principal.Role != account.RoleAdministrator {
			return RejectForbidden
		}
		return Proceed
	}
}

// DecideRole is the outcome for routes reserved to exactly one role.
func DecideRole(principal *account.Principal, role account.Role) Outcome {
	if principal == nil {
		return RejectUnauthenticated
	}
	if principal.Role != role {
		return RejectForbidden
	}
	return Proceed
}

type contextKey string

const lookupKey contextKey = "session_lookup"

type lookup struct {
	token     string
	principal *account.Principal
	err       error
}

func lookupFrom(ctx context.Context) lookup {
	l, _ := ctx.Value(lookupKey).(lookup)
	return l
}

// PrincipalFromContext returns the caller resolved by Gate.Authenticate.
func PrincipalFromContext(ctx context.Context) (*account.Principal, bool) {
	l := lookupFrom(ctx)
	return l.principal, l.principal != nil
}

func tokenFromContext(ctx context.Context) string {
	return lookupFrom(ctx).token
}

// WithPrincipal attaches principal to ctx the way Authenticate would.
func WithPrincipal(ctx context.Context, principal *account.Principal) context.Context {
	return context.WithValue(ctx, lookupKey, lookup{principal: principal})
}

// Gate resolves the session cookie of every request and enforces route
// requirements. It keeps no state between requests.
type Gate struct {
	store      session.Store
	codec      *session.Codec
	cookieName string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewGate(store session.Store, codec *session.Codec, cookieName string, logger *slog.Logger, m *metrics.Metrics) *Gate {
	return &Gate{
		store:      store,
		codec:      codec,
		cookieName: cookieName,
		logger:     logger,
		metrics:    m,
	}
}

// Authenticate looks the session up once and stores the result in the
// request context. It never rejects; that is left to Require and friends.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), lookupKey, g.lookup(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) lookup(r *http.Request) lookup {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return lookup{}
	}

	token, err := g.codec.Decode(cookie.Value)
	if err != nil {
		g.logger.DebugContext(r.Context(), "rejected session cookie", "error", err)
		return lookup{}
	}

	principal, err := g.store.Get(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return lookup{token: token}
		}
		return lookup{token: token, err: err}
	}

	return lookup{token: token, principal: principal}
}

// Require guards an API route. Rejections are JSON: 401 when a session is
// needed and missing, 403 when the administrator role is needed.
func (g *Gate) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := lookupFrom(r.Context())
			if l.err != nil && req != RequireNone {
				g.logger.ErrorContext(r.Context(), "session lookup failed", "error", l.err)
				httputil.RespondWithError(w, http.StatusInternalServerError, msgServerError)
				return
			}

			switch Decide(l.principal, req) {
			case RejectUnauthenticated:
				g.reject(w, r, req.String(), http.StatusUnauthorized, msgNotAuthenticated)
			case RejectForbidden:
				g.reject(w, r, req.String(), http.StatusForbidden, msgAdminRequired)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireRole guards an API route reserved to one role.
func (g *Gate) RequireRole(role account.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := lookupFrom(r.Context())
			if l.err != nil {
				g.logger.ErrorContext(r.Context(), "session lookup failed", "error", l.err)
				httputil.RespondWithError(w, http.StatusInternalServerError, msgServerError)
				return
			}

			switch DecideRole(l.principal, role) {
			case RejectUnauthenticated:
				g.reject(w, r, "role:"+role.String(), http.StatusUnauthorized, msgNotAuthenticated)
			case RejectForbidden:
				g.reject(w, r, "role:"+role.String(), http.StatusForbidden, msgAccessDenied)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequirePageRole guards an HTML page reserved to one role. Any rejection,
// a failed lookup included, redirects to the entry page.
func (g *Gate) RequirePageRole(role account.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := lookupFrom(r.Context())
			if l.err != nil {
				g.logger.ErrorContext(r.Context(), "session lookup failed", "error", l.err)
			}

			if DecideRole(l.principal, role) != Proceed {
				g.metrics.RecordAccessDenied(r.Context(), "page:"+role.String(), http.StatusFound)
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, requirement string, status int, message string) {
	g.metrics.RecordAccessDenied(r.Context(), requirement, status)
	g.logger.InfoContext(r.Context(), "access denied",
		"path", r.URL.Path,
		"requirement", requirement,
		"status", status,
	)
	httputil.RespondWithError(w, status, message)
}
