package handlers

import (
	"database/sql"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/models"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
	"hotspothub.io/platform/pkg/crypto"
)

type VoucherResponse struct {
	ID            int     `json:"id"`
	ISPID         int     `json:"isp_id"`
	PlanID        int     `json:"plan_id"`
	BatchID       *string `json:"batch_id"`
	Code          string  `json:"code"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	ValidityValue int     `json:"validity_value"`
	ValidityUnit  string  `json:"validity_unit"`
	RedeemedBy    *int    `json:"redeemed_by"`
	RedeemedAt    *string `json:"redeemed_at"`
	CreatedAt     string  `json:"created_at"`
}

type CreateVoucherRequest struct {
	PlanID        int     `json:"plan_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	ValidityValue int     `json:"validity_value" validate:"required,min=1"`
	ValidityUnit  string  `json:"validity_unit" validate:"required,oneof=hours days weeks"`
}

type BatchVoucherRequest struct {
	PlanID        int     `json:"plan_id" validate:"required"`
	Count         int     `json:"count" validate:"required,min=1,max=1000"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	ValidityValue int     `json:"validity_value" validate:"required,min=1"`
	ValidityUnit  string  `json:"validity_unit" validate:"required,oneof=hours days weeks"`
}

// voucherCode issues a prefixed random code, e.g. HSP-a1b2c3d4e5f6.
func voucherCode() string {
	return "HSP-" + crypto.RandomToken(6)
}

func (h *Handler) GetVouchers(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	page, limit, offset := pagination(r)

	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidVoucherStatus(status) {
		h.send(w, response.Error(http.StatusBadRequest, "Invalid voucher status"))
		return
	}

	query := `
		SELECT id, isp_id, plan_id, batch_id, code, status, amount, validity_value, validity_unit,
		       redeemed_by, redeemed_at, created_at
		FROM vouchers WHERE isp_id = $1
	`
	countQuery := "SELECT COUNT(*) FROM vouchers WHERE isp_id = $1"
	args := []interface{}{ispID}

	if status != "" {
		query += " AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4"
		countQuery += " AND status = $2"
		args = append(args, status)
	} else {
		query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"
	}

	var total int
	h.db.QueryRow(countQuery, args...).Scan(&total)

	rows, err := h.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Database error"))
		return
	}
	defer rows.Close()

	var vouchers []VoucherResponse
	for rows.Next() {
		var v VoucherResponse
		if err := rows.Scan(&v.ID, &v.ISPID, &v.PlanID, &v.BatchID, &v.Code, &v.Status, &v.Amount,
			&v.ValidityValue, &v.ValidityUnit, &v.RedeemedBy, &v.RedeemedAt, &v.CreatedAt); err != nil {
			continue
		}
		vouchers = append(vouchers, v)
	}

	h.send(w, response.Paginated("Vouchers fetched", vouchers, total, page, limit))
}

func (h *Handler) GetVoucher(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	code := mux.Vars(r)["code"]

	var v VoucherResponse
	err := h.db.QueryRow(`
		SELECT id, isp_id, plan_id, batch_id, code, status, amount, validity_value, validity_unit,
		       redeemed_by, redeemed_at, created_at
		FROM vouchers WHERE code = $1 AND isp_id = $2
	`, code, ispID).Scan(&v.ID, &v.ISPID, &v.PlanID, &v.BatchID, &v.Code, &v.Status, &v.Amount,
		&v.ValidityValue, &v.ValidityUnit, &v.RedeemedBy, &v.RedeemedAt, &v.CreatedAt)

	if err != nil {
		h.send(w, response.Error(http.StatusNotFound, "Voucher not found"))
		return
	}

	h.send(w, response.OK("Voucher fetched", v))
}

func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var req CreateVoucherRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var exists int
	if err := h.db.QueryRow("SELECT id FROM plans WHERE id = $1 AND isp_id = $2", req.PlanID, ispID).Scan(&exists); err != nil {
		h.send(w, response.Error(http.StatusNotFound, "Plan not found"))
		return
	}

	code := voucherCode()
	var voucherID int
	err := h.db.QueryRow(`
		INSERT INTO vouchers (isp_id, plan_id, code, amount, validity_value, validity_unit)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, ispID, req.PlanID, code, req.Amount, req.ValidityValue, req.ValidityUnit).Scan(&voucherID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to create voucher"))
		return
	}

	h.audit(r, &ispID, "voucher.create", "voucher", code, nil)
	h.logger.Info("Voucher created", "voucher_id", voucherID, "isp_id", ispID, "by", claims.UserID)
	h.send(w, response.Created("Voucher created successfully", map[string]interface{}{
		"id":   voucherID,
		"code": code,
	}))
}

// CreateVoucherBatch generates N codes in a single transaction; either all
// rows land or none do.
func (h *Handler) CreateVoucherBatch(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var req BatchVoucherRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var exists int
	if err := h.db.QueryRow("SELECT id FROM plans WHERE id = $1 AND isp_id = $2", req.PlanID, ispID).Scan(&exists); err != nil {
		h.send(w, response.Error(http.StatusNotFound, "Plan not found"))
		return
	}

	batchID := uuid.NewString()
	codes := make([]string, 0, req.Count)

	err := h.db.WithTx(r.Context(), func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO vouchers (isp_id, plan_id, batch_id, code, amount, validity_value, validity_unit)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := 0; i < req.Count; i++ {
			code := voucherCode()
			if _, err := stmt.Exec(ispID, req.PlanID, batchID, code, req.Amount, req.ValidityValue, req.ValidityUnit); err != nil {
				return err
			}
			codes = append(codes, code)
		}
		return nil
	})

	if err != nil {
		h.logger.Error("Voucher batch failed", "isp_id", ispID, "batch_id", batchID, "error", err)
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to generate voucher batch"))
		return
	}

	h.audit(r, &ispID, "voucher.batch", "voucher_batch", batchID, map[string]interface{}{"count": req.Count})
	h.logger.Info("Voucher batch generated", "isp_id", ispID, "batch_id", batchID, "count", req.Count, "by", claims.UserID)
	h.send(w, response.Created("Voucher batch generated successfully", map[string]interface{}{
		"batch_id": batchID,
		"count":    len(codes),
		"codes":    codes,
	}))
}

// RedeemVoucher moves an unused voucher to used, records the payment and
// bumps the day's revenue metric. The status guard in the UPDATE makes a
// second redemption a no-op that surfaces as 409.
func (h *Handler) RedeemVoucher(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	code := mux.Vars(r)["code"]

	var voucherID int
	var amount float64
	err := h.db.WithTx(r.Context(), func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			UPDATE vouchers
			SET status = 'used', redeemed_by = $1, redeemed_at = NOW(), updated_at = NOW()
			WHERE code = $2 AND isp_id = $3 AND status = 'unused'
			RETURNING id, amount
		`, claims.UserID, code, ispID).Scan(&voucherID, &amount)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`
			INSERT INTO payments (isp_id, user_id, voucher_id, amount, method, reference, status, paid_at)
			VALUES ($1, $2, $3, $4, 'voucher', $5, 'completed', NOW())
		`, ispID, claims.UserID, voucherID, amount, "VCH-"+uuid.NewString()); err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO metrics (isp_id, metric_type, metric_date, value)
			VALUES ($1, 'revenue', CURRENT_DATE, $2)
			ON CONFLICT (isp_id, metric_type, metric_date)
			DO UPDATE SET value = metrics.value + EXCLUDED.value
		`, ispID, amount)
		return err
	})

	if err == sql.ErrNoRows {
		// Distinguish unknown code from an exhausted one.
		var status string
		lookupErr := h.db.QueryRow("SELECT status FROM vouchers WHERE code = $1 AND isp_id = $2", code, ispID).Scan(&status)
		if lookupErr != nil {
			h.send(w, response.Error(http.StatusNotFound, "Voucher not found"))
			return
		}
		h.send(w, response.Error(http.StatusConflict, "Voucher is "+status))
		return
	}
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to redeem voucher"))
		return
	}

	h.audit(r, &ispID, "voucher.redeem", "voucher", code, nil)
	h.logger.Info("Voucher redeemed", "code", code, "isp_id", ispID, "by", claims.UserID)
	h.send(w, response.OK("Voucher redeemed successfully", map[string]interface{}{
		"code":   code,
		"amount": amount,
	}))
}

// RevokeVoucher is an explicit admin action; allowed from any non-terminal
// state and irreversible.
func (h *Handler) RevokeVoucher(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient || claims.Role == rbac.RoleISPStaff {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	code := mux.Vars(r)["code"]

	var status models.VoucherStatus
	if err := h.db.QueryRow("SELECT status FROM vouchers WHERE code = $1 AND isp_id = $2", code, ispID).Scan(&status); err != nil {
		h.send(w, response.Error(http.StatusNotFound, "Voucher not found"))
		return
	}

	if !status.CanTransition(models.VoucherRevoked) {
		h.send(w, response.Error(http.StatusConflict, "Voucher is "+string(status)+" and cannot be revoked"))
		return
	}

	_, err := h.db.Exec(`
		UPDATE vouchers SET status = 'revoked', updated_at = NOW()
		WHERE code = $1 AND isp_id = $2 AND status = $3
	`, code, ispID, status)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to revoke voucher"))
		return
	}

	h.audit(r, &ispID, "voucher.revoke", "voucher", code, nil)
	h.logger.Info("Voucher revoked", "code", code, "isp_id", ispID, "by", claims.UserID)
	h.send(w, response.OK("Voucher revoked successfully", nil))
}

// ExpireVouchers marks unused vouchers past their validity window as expired.
func (h *Handler) ExpireVouchers(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	result, err := h.db.Exec(`
		UPDATE vouchers SET status = 'expired', updated_at = NOW()
		WHERE isp_id = $1 AND status = 'unused'
		  AND created_at + (validity_value * CASE validity_unit
				WHEN 'hours' THEN INTERVAL '1 hour'
				WHEN 'days' THEN INTERVAL '1 day'
				ELSE INTERVAL '1 week'
			END) < NOW()
	`, ispID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to expire vouchers"))
		return
	}

	expired, _ := result.RowsAffected()
	h.logger.Info("Voucher expiry sweep", "isp_id", ispID, "expired", expired, "by", claims.UserID)
	h.send(w, response.OK("Expiry sweep completed", map[string]int64{"expired": expired}))
}

func (h *Handler) voucherCountsByStatus(ispID int) map[string]int {
	counts := map[string]int{}
	rows, err := h.db.Query("SELECT status, COUNT(*) FROM vouchers WHERE isp_id = $1 GROUP BY status", ispID)
	if err != nil {
		return counts
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err == nil {
			counts[status] = count
		}
	}
	return counts
}
