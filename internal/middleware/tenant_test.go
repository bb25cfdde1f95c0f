package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTenantPriority(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		host   string
		want   string
	}{
		{"header wins over query and subdomain", "acme", "other", "beta.hotspothub.io", "acme"},
		{"query wins over subdomain", "", "acme", "beta.hotspothub.io", "acme"},
		{"subdomain when host has three labels", "", "", "acme.hotspothub.io", "acme"},
		{"subdomain with port stripped", "", "", "acme.hotspothub.io:8080", "acme"},
		{"no subdomain for two-label host", "", "", "hotspothub.io", ""},
		{"no subdomain for bare host", "", "", "localhost:8080", ""},
		{"nothing resolves", "", "", "hotspothub.io", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "http://" + tt.host + "/api/v1/vouchers"
			if tt.query != "" {
				url += "?tenant=" + tt.query
			}
			r := httptest.NewRequest(http.MethodGet, url, nil)
			r.Host = tt.host
			if tt.header != "" {
				r.Header.Set(TenantHeader, tt.header)
			}

			assert.Equal(t, tt.want, ResolveTenant(r))
		})
	}
}

func TestTenantMiddlewareAnnotatesContext(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetTenantFromContext(r)
	})

	r := httptest.NewRequest(http.MethodGet, "http://hotspothub.io/api/v1/vouchers", nil)
	r.Header.Set(TenantHeader, "acme")
	w := httptest.NewRecorder()

	Tenant(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acme", got)
}

func TestTenantMiddlewareRejectsMissingTenant(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	r := httptest.NewRequest(http.MethodGet, "http://hotspothub.io/api/v1/vouchers", nil)
	w := httptest.NewRecorder()

	Tenant(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Tenant identifier required")
	assert.Contains(t, w.Body.String(), `"success":false`)
}
