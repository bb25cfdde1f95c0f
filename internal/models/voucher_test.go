package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoucherRedemption(t *testing.T) {
	v := Voucher{Code: "HSP-abc", Status: VoucherUnused}

	assert.NoError(t, v.Transition(VoucherUsed))
	assert.Equal(t, VoucherUsed, v.Status)

	// Second redemption must fail.
	assert.Error(t, v.Transition(VoucherUsed))
	assert.Equal(t, VoucherUsed, v.Status)
}

func TestVoucherRevokeIsIrreversible(t *testing.T) {
	v := Voucher{Code: "HSP-def", Status: VoucherUnused}

	assert.NoError(t, v.Transition(VoucherRevoked))

	for _, to := range []VoucherStatus{VoucherUnused, VoucherUsed, VoucherExpired, VoucherRevoked} {
		assert.Error(t, v.Transition(to), "revoked -> %s must fail", to)
	}
	assert.Equal(t, VoucherRevoked, v.Status)
}

func TestVoucherTransitionTable(t *testing.T) {
	tests := []struct {
		from, to VoucherStatus
		want     bool
	}{
		{VoucherUnused, VoucherUsed, true},
		{VoucherUnused, VoucherExpired, true},
		{VoucherUnused, VoucherRevoked, true},
		{VoucherUnused, VoucherUnused, false},
		{VoucherUsed, VoucherRevoked, false},
		{VoucherUsed, VoucherUnused, false},
		{VoucherExpired, VoucherUsed, false},
		{VoucherExpired, VoucherRevoked, false},
		{VoucherRevoked, VoucherUnused, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, VoucherUnused.Terminal())
	assert.True(t, VoucherUsed.Terminal())
	assert.True(t, VoucherExpired.Terminal())
	assert.True(t, VoucherRevoked.Terminal())
}

func TestValidVoucherStatus(t *testing.T) {
	assert.True(t, ValidVoucherStatus("unused"))
	assert.True(t, ValidVoucherStatus("revoked"))
	assert.False(t, ValidVoucherStatus("pending"))
	assert.False(t, ValidVoucherStatus(""))
}
