// ABOUTME: HTTP middleware for JWT authentication on API endpoints
// ABOUTME: Extracts the bearer token and attaches the resolved Principal to context

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/techguides/techhub/internal/store"
)

// UserLookup is the slice of the identity store the middleware needs.
type UserLookup interface {
	GetUser(ctx context.Context, username string) (*store.User, error)
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// resolvePrincipal turns verified claims into a Principal. Admin claims become
// an AdminPrincipal directly; user claims are re-read from the store so the
// entitlement bit reflects the current row, not the value at login time.
func resolvePrincipal(ctx context.Context, users UserLookup, claims *Claims) (Principal, string) {
	if claims.Admin {
		return AdminPrincipal{Label: claims.Subject}, ""
	}

	user, err := users.GetUser(ctx, claims.Subject)
	if err != nil {
		return nil, "user not found"
	}
	return UserPrincipal{Username: user.Username, Entitled: user.ExternalFeatures}, ""
}

// Middleware creates an HTTP middleware that extracts and validates bearer
// tokens, attaching the resolved Principal to the request context.
func Middleware(users UserLookup, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				writeAuthError(w, http.StatusUnauthorized, errMsg)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			principal, errMsg := resolvePrincipal(r.Context(), users, claims)
			if errMsg != "" {
				writeAuthError(w, http.StatusUnauthorized, errMsg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin creates an HTTP middleware that requires an admin principal.
// Must be used after Middleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := FromContext(r.Context())
			if principal == nil {
				writeAuthError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			if !principal.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "admin credential required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"error":"` + msg + `"}`))
}
