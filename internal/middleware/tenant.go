package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"hotspothub.io/platform/internal/response"
)

const TenantContextKey contextKey = "tenant"

// TenantHeader carries the explicit tenant identifier.
const TenantHeader = "X-Tenant-ID"

// ResolveTenant extracts a tenant identifier from the request, trying the
// header, the "tenant" query parameter, then the leftmost subdomain label
// (only when the host has more than two labels). Extraction is purely
// syntactic; existence is checked downstream.
func ResolveTenant(r *http.Request) string {
	if id := r.Header.Get(TenantHeader); id != "" {
		return id
	}

	if id := r.URL.Query().Get("tenant"); id != "" {
		return id
	}

	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	labels := strings.Split(host, ".")
	if len(labels) > 2 {
		return labels[0]
	}

	return ""
}

// Tenant rejects requests without a resolvable tenant identifier and
// annotates the context for downstream handlers.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ResolveTenant(r)
		if id == "" {
			response.Write(w, response.Error(http.StatusUnauthorized, "Tenant identifier required"))
			return
		}

		ctx := context.WithValue(r.Context(), TenantContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetTenantFromContext(r *http.Request) string {
	id, _ := r.Context().Value(TenantContextKey).(string)
	return id
}
