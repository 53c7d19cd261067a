// Package rbac gates routes on the authenticated principal.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// AdminDenied is the body every non-admin caller receives from AdminOnly.
const AdminDenied = "Access denied, admin role required."

// IsAdmin is the access predicate: only an authenticated admin passes.
func IsAdmin(p middleware.Principal, authenticated bool) bool {
	return authenticated && p.IsAdmin
}

// AdminOnly lets admin principals through and answers 403 to everyone else,
// anonymous callers included. Authenticate must run first.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(middleware.PrincipalFromCtx(r.Context())) {
			response.Forbidden(w, AdminDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}
