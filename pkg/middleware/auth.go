package middleware

import (
	"context"
	"net/http"
	"strings"

	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
)

type sessionKey struct{}

// AuthManager reads and annotates the admin session
type AuthManager interface {
	Current(r *http.Request) *models.Session
	Flash(w http.ResponseWriter, r *http.Request, msg string) error
}

// RequireAuth lets a request through only when a token is stored. Page
// requests are sent to the login screen with a reason; JSON requests get 401.
func RequireAuth(authManager AuthManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := authManager.Current(r)
			if session == nil {
				if WantsJSON(r) {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				_ = authManager.Flash(w, r, errors.ErrNoSession.GetUserMessage())
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
		})
	}
}

// SessionFrom returns the session RequireAuth attached to ctx
func SessionFrom(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey{}).(*models.Session)
	return s
}

// WantsJSON reports whether the caller expects a JSON answer rather than a
// page: it accepts or sends application/json, or hits a /state endpoint.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasSuffix(r.URL.Path, "/state")
}
