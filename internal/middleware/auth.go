package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/kolapsis/koraki/internal/auth"
)

const adminRealm = "koraki admin"

// BearerToken returns middleware that requires "Authorization: Bearer <token>".
func BearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				challengeBearer(w, "missing Authorization header")
				return
			}

			scheme, value, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				challengeBearer(w, "invalid Authorization header format")
				return
			}

			if !auth.TokenEqual(token, strings.TrimSpace(value)) {
				slog.Debug("api token rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
				invalidToken(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuth guards the settings pages. Browsers authenticate with HTTP Basic
// using the token as password (any user name); scripts may send a Bearer
// token instead.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, password, ok := r.BasicAuth(); ok && auth.TokenEqual(token, password) {
				next.ServeHTTP(w, r)
				return
			}

			scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if ok && strings.EqualFold(scheme, "Bearer") && auth.TokenEqual(token, strings.TrimSpace(value)) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("WWW-Authenticate", `Basic realm="`+adminRealm+`", charset="UTF-8"`)
			http.Error(w, "authentication required", http.StatusUnauthorized)
		})
	}
}

// challengeBearer sends a 401 with a Bearer challenge for unauthenticated requests.
func challengeBearer(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="koraki"`)
	http.Error(w, msg, http.StatusUnauthorized)
}

// invalidToken sends a 401 for requests carrying the wrong token.
func invalidToken(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	http.Error(w, msg, http.StatusUnauthorized)
}
