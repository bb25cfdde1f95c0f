package models

import "fmt"

type VoucherStatus string

const (
	VoucherUnused  VoucherStatus = "unused"
	VoucherUsed    VoucherStatus = "used"
	VoucherExpired VoucherStatus = "expired"
	VoucherRevoked VoucherStatus = "revoked"
)

// Terminal reports whether no further transition is allowed from s.
// Only unused vouchers can still move.
func (s VoucherStatus) Terminal() bool {
	return s == VoucherUsed || s == VoucherExpired || s == VoucherRevoked
}

// CanTransition encodes the voucher lifecycle: unused may be redeemed,
// expired, or revoked; everything else is final.
func (s VoucherStatus) CanTransition(to VoucherStatus) bool {
	if s.Terminal() || s == to {
		return false
	}
	switch to {
	case VoucherUsed, VoucherExpired, VoucherRevoked:
		return s == VoucherUnused
	default:
		return false
	}
}

// Transition validates and applies a status change.
func (v *Voucher) Transition(to VoucherStatus) error {
	if !v.Status.CanTransition(to) {
		return fmt.Errorf("voucher %s: illegal transition %s -> %s", v.Code, v.Status, to)
	}
	v.Status = to
	return nil
}

func ValidVoucherStatus(s string) bool {
	switch VoucherStatus(s) {
	case VoucherUnused, VoucherUsed, VoucherExpired, VoucherRevoked:
		return true
	}
	return false
}
