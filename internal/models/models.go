package models

import (
	"database/sql"
	"time"
)

// Device is one entry in a session's JSONB device list.
type Device struct {
	MAC  string `json:"mac"`
	IP   string `json:"ip"`
	Name string `json:"name,omitempty"`
}

type Voucher struct {
	ID            int            `json:"id"`
	ISPID         int            `json:"isp_id"`
	PlanID        int            `json:"plan_id"`
	BatchID       sql.NullString `json:"batch_id"`
	Code          string         `json:"code"`
	Status        VoucherStatus  `json:"status"`
	Amount        float64        `json:"amount"`
	ValidityValue int            `json:"validity_value"`
	ValidityUnit  string         `json:"validity_unit"` // hours, days, weeks
	RedeemedBy    sql.NullInt64  `json:"redeemed_by"`
	RedeemedAt    sql.NullTime   `json:"redeemed_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
