// Package pages serves the server-rendered login, registration and inventory
// pages. The pages only render shells; all data goes through the JSON API.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler renders the pages.
type Handler struct {
	pages map[string]*template.Template
	log   logger.Logger
}

// PageData holds data for template rendering.
type PageData struct {
	Title    string
	Page     string
	Email    string
	Callback string
}

// NewHandler parses the embedded templates. Each page is parsed together with
// the shared layout.
func NewHandler(log logger.Logger) (*Handler, error) {
	h := &Handler{pages: map[string]*template.Template{}, log: log}
	for _, page := range []string{"index", "login", "register"} {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		h.pages[page] = t
	}
	return h, nil
}

// Index renders the inventory page for the signed-in user.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromCtx(r.Context())
	h.render(w, r, PageData{Title: "Items", Page: "index", Email: id.Email})
}

// Login renders the sign-in page. Only local callback URLs are honoured.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, PageData{
		Title:    "Sign in",
		Page:     "login",
		Callback: SafeCallback(r.URL.Query().Get("callbackUrl")),
	})
}

// Register renders the registration page.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, PageData{Title: "Register", Page: "register"})
}

// Static serves the embedded page assets.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data PageData) {
	var buf bytes.Buffer
	if err := h.pages[data.Page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.log.ErrorContext(r.Context(), "render page", "page", data.Page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// SafeCallback returns target when it is a local absolute path, "/" otherwise.
// Protocol-relative ("//host") and backslash forms are rejected, as is any
// control character: browsers strip tab and newline, so "/\t/host" would
// otherwise become "//host".
func SafeCallback(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return "/"
	}
	if strings.IndexFunc(target, isControl) >= 0 {
		return "/"
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return target
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
