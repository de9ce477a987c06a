package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/auth"
	"github.com/Natalia-54/sistema-academico-jfk/internal/httputil"

	"github.com/go-chi/chi/v5"
)

const msgRouteNotFound = "Ruta no encontrada"

// gatedPages are only reachable through their role check, never as plain
// static files.
var gatedPages = map[string]account.Role{
	"panel-profesor.html":   account.RoleTeacher,
	"notas-estudiante.html": account.RoleStudent,
	"admin.html":            account.RoleAdministrator,
}

type Pages struct {
	publicDir    string
	uploadDir    string
	uploadPrefix string
	gate         *auth.Gate
}

func NewPages(publicDir, uploadDir, uploadPrefix string, gate *auth.Gate) *Pages {
	return &Pages{
		publicDir:    publicDir,
		uploadDir:    uploadDir,
		uploadPrefix: strings.TrimSuffix(uploadPrefix, "/"),
		gate:         gate,
	}
}

func (p *Pages) RegisterRoutes(router chi.Router) {
	for name, role := range gatedPages {
		router.With(p.gate.RequirePageRole(role)).Get("/"+name, p.file(name))
	}

	router.Get("/", p.file("index.html"))
	if p.uploadPrefix != "" {
		router.Get(p.uploadPrefix+"/*", p.uploads)
	}
	router.Get("/*", p.assets)
}

// NotFound answers unknown routes with a JSON 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithError(w, http.StatusNotFound, msgRouteNotFound)
}

func (p *Pages) file(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveFrom(w, r, p.publicDir, name)
	}
}

func (p *Pages) assets(w http.ResponseWriter, r *http.Request) {
	name := cleanName(chi.URLParam(r, "*"))
	if _, gated := gatedPages[name]; gated {
		NotFound(w, r)
		return
	}
	serveFrom(w, r, p.publicDir, name)
}

func (p *Pages) uploads(w http.ResponseWriter, r *http.Request) {
	serveFrom(w, r, p.uploadDir, cleanName(chi.URLParam(r, "*")))
}

func cleanName(raw string) string {
	return strings.TrimPrefix(path.Clean("/"+raw), "/")
}

// serveFrom serves dir/name when it is a regular file and answers 404
// otherwise, so directories are never listed.
func serveFrom(w http.ResponseWriter, r *http.Request, dir, name string) {
	if name == "" {
		NotFound(w, r)
		return
	}

	full := filepath.Join(dir, filepath.FromSlash(name))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}
