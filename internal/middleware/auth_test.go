package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotspothub.io/platform/internal/rbac"
)

const testSecret = "test-secret"

func contextWithClaims(r *http.Request, c *Claims) context.Context {
	return context.WithValue(r.Context(), UserContextKey, c)
}

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func validClaims(role rbac.Role) Claims {
	ispID := 3
	return Claims{
		UserID: 7,
		Email:  "ops@acme.net",
		Role:   role,
		ISPID:  &ispID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestAuthAttachesClaims(t *testing.T) {
	var got *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(rbac.RoleISPAdmin)))
	w := httptest.NewRecorder()

	Auth(testSecret)(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.UserID)
	assert.Equal(t, rbac.RoleISPAdmin, got.Role)
	require.NotNil(t, got.ISPID)
	assert.Equal(t, 3, *got.ISPID)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	expired := validClaims(rbac.RoleClient)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	unknownRole := validClaims(rbac.Role("OWNER"))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + signToken(t, expired)},
		{"unknown role", "Bearer " + signToken(t, unknownRole)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not run")
			})

			r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			Auth(testSecret)(next).ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(rbac.RoleSuperAdmin, rbac.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	run := func(claims *Claims) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		if claims != nil {
			r = r.WithContext(contextWithClaims(r, claims))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	admin := validClaims(rbac.RoleAdmin)
	staff := validClaims(rbac.RoleISPStaff)

	assert.Equal(t, http.StatusOK, run(&admin).Code)
	assert.Equal(t, http.StatusForbidden, run(&staff).Code)
	assert.Equal(t, http.StatusUnauthorized, run(nil).Code)
}
