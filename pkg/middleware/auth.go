package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID  string
	IsAdmin bool
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromCtx returns the caller attached by Authenticate, if any.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserIDFromCtx is a shorthand for PrincipalFromCtx(ctx).UserID.
func UserIDFromCtx(r *http.Request) (string, bool) {
	p, ok := PrincipalFromCtx(r.Context())
	return p.UserID, ok
}

// Authenticate attaches the principal of a valid "Authorization: Bearer"
// token. Requests without a token, or with one that does not verify, pass
// through anonymously; guards further down decide what that means.
func Authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw != "" {
				if claims, err := tokens.Validate(raw); err == nil {
					p := Principal{UserID: claims.Subject, IsAdmin: claims.Admin}
					r = r.WithContext(WithPrincipal(r.Context(), p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminCheck reports whether userID is still an admin.
type AdminCheck func(ctx context.Context, userID string) (bool, error)

// ConfirmAdmin re-checks the admin claim of the principal against check, so a
// demoted admin loses access before the token expires. Non-admin principals
// are not looked up. A failed check downgrades the principal.
func ConfirmAdmin(check AdminCheck) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromCtx(r.Context())
			if ok && p.IsAdmin {
				admin, err := check(r.Context(), p.UserID)
				if err != nil {
					logger.WithCtx(r.Context()).Warn("auth: admin check failed", "user_id", p.UserID, "error", err)
				}
				if err != nil || !admin {
					p.IsAdmin = false
					r = r.WithContext(WithPrincipal(r.Context(), p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser answers 401 unless Authenticate attached a principal.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromCtx(r.Context()); !ok {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
