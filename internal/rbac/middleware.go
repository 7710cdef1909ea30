package rbac

import (
	"net/http"

	"log/slog"

	"github.com/lossdesk/lossdesk/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers. Every mutating
// route is gated here, server-side, independently of whatever the client
// chose to render.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the current user's role holds all listed permissions.
func (m Middleware) Require(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := m.currentRole(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			for _, p := range perms {
				if !HasPermission(role, p) {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny ensures the role holds at least one of the listed permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			role, ok := m.currentRole(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			for _, p := range perms {
				if HasPermission(role, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func (m Middleware) currentRole(r *http.Request) (Role, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return "", false
	}
	role, ok := ParseRole(sess.Role())
	if !ok {
		if m.Logger != nil {
			m.Logger.Warn("session carries unknown role", slog.String("role", sess.Role()))
		}
		return "", false
	}
	return role, true
}

// RoleFromRequest resolves the acting role for handlers that need to make
// contextual decisions beyond the route gate.
func RoleFromRequest(r *http.Request) (Role, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return "", false
	}
	return ParseRole(sess.Role())
}
