package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/domain/auth"
	"perfreview/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, roleName, permission string) (bool, error)
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.RoleName, permission)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", GetRequestID(r.Context()))
				return
			}
			if !allowed {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnRecord limits callers with the employee role to requests whose
// route parameter param names their own employee id. Managers and HR pass.
func RequireOwnRecord(param string) func(http.Handler) http.Handler {
	return requireSubject(param, "employees may only view their own assessment", func(user auth.UserContext) bool {
		return user.RoleName != auth.RoleEmployee
	})
}

// RequireSubject admits only the employee named by the route parameter
// param, whatever their role.
func RequireSubject(param string) func(http.Handler) http.Handler {
	return requireSubject(param, "only the assessed employee may do this", func(auth.UserContext) bool {
		return false
	})
}

func requireSubject(param, message string, exempt func(auth.UserContext) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !exempt(user) && (user.EmployeeID == "" || user.EmployeeID != chi.URLParam(r, param)) {
				api.Fail(w, http.StatusForbidden, "forbidden", message, GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
