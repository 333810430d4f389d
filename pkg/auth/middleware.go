package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/telemetry"
)

// LoginPath is where RequireLogin sends unauthenticated browsers.
const LoginPath = "/login"

// PublicPaths are reachable without a session. A path matches an entry when
// it equals it or continues it with "/".
var PublicPaths = []string{"/login", "/register", "/api/auth", "/api/register", "/static"}

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It resolves the session identity and injects it into the request context.
// Returns 401 {"message":"Unauthorized"} if the session is missing or invalid.
//
// After this middleware, handlers can safely call auth.IdentityFromCtx(r.Context()).
func RequireAuth(sm *SessionManager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sm.Identity(r)
			if err != nil {
				log.DebugContext(r.Context(), "rejected unauthenticated request", "path", r.URL.Path, "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			telemetry.SentryIdentify(r.Context(), id.UserID.String(), id.TenantID.String())
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireLogin guards browser pages. Requests without a session are
// redirected to the login page with the original path and query in
// callbackUrl. Paths in PublicPaths pass through untouched.
func RequireLogin(sm *SessionManager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			id, err := sm.Identity(r)
			if err != nil {
				log.DebugContext(r.Context(), "redirecting to login", "path", r.URL.Path)
				http.Redirect(w, r, LoginRedirectURL(r.URL), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// IsPublicPath reports whether path is on the public allowlist.
func IsPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// LoginRedirectURL builds /login?callbackUrl=<path+query> for u.
func LoginRedirectURL(u *url.URL) string {
	callback := u.Path
	if u.RawQuery != "" {
		callback += "?" + u.RawQuery
	}
	q := url.Values{}
	q.Set("callbackUrl", callback)
	return LoginPath + "?" + q.Encode()
}
