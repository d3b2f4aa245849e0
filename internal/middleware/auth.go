package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xelth-com/maintdesk/internal/models"
	"github.com/xelth-com/maintdesk/internal/sync"
	"github.com/xelth-com/maintdesk/internal/utils"
)

type contextKey string

const (
	UserContextKey    contextKey = "user"
	ProfileContextKey contextKey = "profile"
)

// RoleResolver looks up the role profile of an authenticated email
type RoleResolver interface {
	GetUserRoleByEmail(ctx context.Context, email string) (models.UserRoleProfile, error)
}

// AuthMiddleware verifies JWT tokens signed with secret
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(parts[1], secret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			// Add claims to context
			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets a request through only when the token's email maps to
// one of roles. Must run after AuthMiddleware.
func RequireRole(resolver RoleResolver, roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			email := utils.EmailFromClaims(claims)
			if email == "" {
				http.Error(w, "Token has no email", http.StatusForbidden)
				return
			}

			profile, err := resolver.GetUserRoleByEmail(r.Context(), email)
			if err != nil {
				if errors.Is(err, sync.ErrNotFound) {
					http.Error(w, "No role assigned", http.StatusForbidden)
					return
				}
				http.Error(w, "Failed to resolve role", http.StatusInternalServerError)
				return
			}

			for _, role := range roles {
				if profile.Role == role {
					ctx := context.WithValue(r.Context(), ProfileContextKey, profile)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			http.Error(w, "Insufficient role", http.StatusForbidden)
		})
	}
}

// ClaimsFromContext returns the token claims stored by AuthMiddleware
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(UserContextKey).(jwt.MapClaims)
	return claims, ok
}
