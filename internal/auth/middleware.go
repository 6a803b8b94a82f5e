package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/harborcrm/harbor/internal/models"
	pkghttp "github.com/harborcrm/harbor/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

// UserContextKey holds the authenticated token claims. Exported so handler
// tests can seed a request context without running the middleware.
const (
	UserContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// UserRepository is the subset of the user store the middleware needs for
// role checks.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Middleware validates bearer access tokens and injects the claims into the
// request context. Refresh tokens are rejected here; they are only accepted
// by the refresh endpoint.
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			if claims.Type != models.TokenTypeAccess {
				pkghttp.WriteUnauthorized(w, "refresh tokens cannot be used for API access")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			ctx = context.WithValue(ctx, tokenContextKey, parts[1])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces role-based access. The role is read from the store,
// not the token, so demotions take effect before token expiry.
func RequireRole(userRepo UserRepository, roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			user, err := userRepo.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "unauthorized")
					return
				}
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkghttp.WriteForbidden(w, "insufficient permissions")
		})
	}
}

// GetUserFromContext extracts token claims from the request context.
func GetUserFromContext(r *http.Request) *models.TokenClaims {
	claims, _ := r.Context().Value(UserContextKey).(*models.TokenClaims)
	return claims
}

// GetTokenFromContext extracts the raw bearer token from the request context.
func GetTokenFromContext(r *http.Request) string {
	token, _ := r.Context().Value(tokenContextKey).(string)
	return token
}
