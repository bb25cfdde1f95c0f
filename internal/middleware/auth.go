package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type contextKey string

const UserContextKey contextKey = "user"

type Claims struct {
	UserID int       `json:"user_id"`
	Email  string    `json:"email"`
	Role   rbac.Role `json:"role"`
	ISPID  *int      `json:"isp_id,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and attaches claims to the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Write(w, response.Error(http.StatusUnauthorized, "Authorization header required"))
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				response.Write(w, response.Error(http.StatusUnauthorized, "Bearer token required"))
				return
			}

			token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})

			if err != nil || !token.Valid {
				response.Write(w, response.Error(http.StatusUnauthorized, "Invalid token"))
				return
			}

			claims, ok := token.Claims.(*Claims)
			if !ok || !rbac.Valid(claims.Role) {
				response.Write(w, response.Error(http.StatusUnauthorized, "Invalid token claims"))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserFromContext(r *http.Request) *Claims {
	claims, ok := r.Context().Value(UserContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// RequireRole allows only the listed roles through.
func RequireRole(roles ...rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				response.Write(w, response.Error(http.StatusUnauthorized, "Unauthorized"))
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Write(w, response.Error(http.StatusForbidden, "Insufficient permissions"))
		})
	}
}
