package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
)

func intPtr(v int) *int { return &v }

func TestCanEditUser(t *testing.T) {
	tests := []struct {
		name      string
		role      rbac.Role
		callerISP *int
		callerID  int
		targetID  int
		targetISP *int
		want      bool
	}{
		{"super admin any user", rbac.RoleSuperAdmin, nil, 1, 99, intPtr(9), true},
		{"admin any user", rbac.RoleAdmin, nil, 1, 99, intPtr(9), true},
		{"self edit", rbac.RoleClient, intPtr(7), 42, 42, intPtr(7), true},
		{"isp admin own tenant", rbac.RoleISPAdmin, intPtr(7), 1, 99, intPtr(7), true},
		{"isp admin other tenant", rbac.RoleISPAdmin, intPtr(7), 1, 99, intPtr(9), false},
		{"isp admin platform target", rbac.RoleISPAdmin, intPtr(7), 1, 99, nil, false},
		{"isp admin without tenant", rbac.RoleISPAdmin, nil, 1, 99, intPtr(7), false},
		{"isp staff other user", rbac.RoleISPStaff, intPtr(7), 1, 99, intPtr(7), false},
		{"client other user", rbac.RoleClient, intPtr(7), 1, 99, intPtr(7), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &middleware.Claims{UserID: tt.callerID, Role: tt.role, ISPID: tt.callerISP}
			assert.Equal(t, tt.want, canEditUser(claims, tt.targetID, tt.targetISP))
		})
	}
}
