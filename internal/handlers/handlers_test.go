package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"hotspothub.io/platform/pkg/logger"
)

func testHandler() *Handler {
	return &Handler{
		logger:   logger.New(),
		validate: validator.New(),
	}
}

func TestDecodeAndValidate(t *testing.T) {
	h := testHandler()

	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantInBody string
	}{
		{
			name:   "valid batch request",
			body:   `{"plan_id":1,"count":10,"amount":5.5,"validity_value":7,"validity_unit":"days"}`,
			wantOK: true,
		},
		{
			name:       "malformed json",
			body:       `{"plan_id":`,
			wantOK:     false,
			wantStatus: http.StatusBadRequest,
			wantInBody: "Invalid request body",
		},
		{
			name:       "count over limit",
			body:       `{"plan_id":1,"count":5000,"amount":5.5,"validity_value":7,"validity_unit":"days"}`,
			wantOK:     false,
			wantStatus: http.StatusBadRequest,
			wantInBody: `"Count":"must be at most 1000"`,
		},
		{
			name:       "bad validity unit",
			body:       `{"plan_id":1,"count":10,"amount":5.5,"validity_value":7,"validity_unit":"months"}`,
			wantOK:     false,
			wantStatus: http.StatusBadRequest,
			wantInBody: "must be one of",
		},
		{
			name:       "missing required fields",
			body:       `{}`,
			wantOK:     false,
			wantStatus: http.StatusBadRequest,
			wantInBody: "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/vouchers/batch", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var req BatchVoucherRequest
			ok := h.decodeAndValidate(w, r, &req)

			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, tt.wantStatus, w.Code)
				assert.Contains(t, w.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query                           string
		wantPage, wantLimit, wantOffset int
	}{
		{"", 1, 50, 0},
		{"?page=3&limit=20", 3, 20, 40},
		{"?page=-1&limit=0", 1, 50, 0},
		{"?page=2&limit=9999", 2, 50, 50},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/vouchers"+tt.query, nil)
		page, limit, offset := pagination(r)
		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.wantLimit, limit, tt.query)
		assert.Equal(t, tt.wantOffset, offset, tt.query)
	}
}

func TestVoucherCodeShape(t *testing.T) {
	a := voucherCode()
	b := voucherCode()

	assert.True(t, strings.HasPrefix(a, "HSP-"))
	assert.Len(t, a, 4+12)
	assert.NotEqual(t, a, b)
}
