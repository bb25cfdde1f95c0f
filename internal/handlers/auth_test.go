package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRoleValidation(t *testing.T) {
	h := testHandler()

	tests := []struct {
		name   string
		body   string
		wantOK bool
	}{
		{"client role", `{"email":"a@b.net","password":"Sup3rSecret","role":"CLIENT","isp_id":1}`, true},
		{"isp admin role", `{"email":"a@b.net","password":"Sup3rSecret","role":"ISP_ADMIN","isp_id":1}`, true},
		{"role omitted", `{"email":"a@b.net","password":"Sup3rSecret","isp_id":1}`, true},
		{"super admin rejected", `{"email":"a@b.net","password":"Sup3rSecret","role":"SUPER_ADMIN"}`, false},
		{"admin rejected", `{"email":"a@b.net","password":"Sup3rSecret","role":"ADMIN"}`, false},
		{"unknown role rejected", `{"email":"a@b.net","password":"Sup3rSecret","role":"OWNER"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var req RegisterRequest
			ok := h.decodeAndValidate(w, r, &req)

			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), "must be one of")
			}
		})
	}
}
