package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCanAccessISP(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		userISP *int
		target  int
		want    bool
	}{
		{"super admin any tenant", RoleSuperAdmin, nil, 42, true},
		{"super admin with own tenant set", RoleSuperAdmin, intPtr(1), 42, true},
		{"admin any tenant", RoleAdmin, nil, 42, true},
		{"isp admin own tenant", RoleISPAdmin, intPtr(42), 42, true},
		{"isp admin other tenant", RoleISPAdmin, intPtr(7), 42, false},
		{"isp admin no tenant", RoleISPAdmin, nil, 42, false},
		{"isp staff own tenant", RoleISPStaff, intPtr(42), 42, true},
		{"isp staff other tenant", RoleISPStaff, intPtr(7), 42, false},
		{"client own tenant", RoleClient, intPtr(42), 42, true},
		{"client other tenant", RoleClient, intPtr(7), 42, false},
		{"client no tenant", RoleClient, nil, 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessISP(tt.role, tt.userISP, tt.target))
		})
	}
}

func TestPlatform(t *testing.T) {
	assert.True(t, Platform(RoleSuperAdmin))
	assert.True(t, Platform(RoleAdmin))
	assert.False(t, Platform(RoleISPAdmin))
	assert.False(t, Platform(RoleISPStaff))
	assert.False(t, Platform(RoleClient))
}

func TestValid(t *testing.T) {
	for _, r := range []Role{RoleSuperAdmin, RoleAdmin, RoleISPAdmin, RoleISPStaff, RoleClient} {
		assert.True(t, Valid(r))
	}
	assert.False(t, Valid(Role("OWNER")))
	assert.False(t, Valid(Role("")))
}

func TestCanManageUsers(t *testing.T) {
	assert.True(t, CanManageUsers(RoleAdmin))
	assert.True(t, CanManageUsers(RoleISPAdmin))
	assert.False(t, CanManageUsers(RoleISPStaff))
	assert.False(t, CanManageUsers(RoleClient))
}
