package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type PaymentResponse struct {
	ID        int     `json:"id"`
	ISPID     int     `json:"isp_id"`
	UserID    *int    `json:"user_id"`
	VoucherID *int    `json:"voucher_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
	Status    string  `json:"status"`
	PaidAt    *string `json:"paid_at"`
	CreatedAt string  `json:"created_at"`
}

type CreatePaymentRequest struct {
	UserID *int    `json:"user_id"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Method string  `json:"method" validate:"required,oneof=cash card mobile voucher"`
}

func (h *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	page, limit, offset := pagination(r)

	query := `
		SELECT id, isp_id, user_id, voucher_id, amount, method, reference, status, paid_at, created_at
		FROM payments WHERE isp_id = $1
	`
	countQuery := "SELECT COUNT(*) FROM payments WHERE isp_id = $1"
	args := []interface{}{ispID}

	if claims.Role == rbac.RoleClient {
		query += " AND user_id = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4"
		countQuery += " AND user_id = $2"
		args = append(args, claims.UserID)
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

	var payments []PaymentResponse
	for rows.Next() {
		var p PaymentResponse
		if err := rows.Scan(&p.ID, &p.ISPID, &p.UserID, &p.VoucherID, &p.Amount, &p.Method,
			&p.Reference, &p.Status, &p.PaidAt, &p.CreatedAt); err != nil {
			continue
		}
		payments = append(payments, p)
	}

	h.send(w, response.Paginated("Payments fetched", payments, total, page, limit))
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	reference := "PAY-" + strings.ToUpper(uuid.NewString()[:8])

	var paymentID int
	err := h.db.QueryRow(`
		INSERT INTO payments (isp_id, user_id, amount, method, reference, status)
		VALUES ($1, $2, $3, $4, $5, 'pending') RETURNING id
	`, ispID, req.UserID, req.Amount, req.Method, reference).Scan(&paymentID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to create payment"))
		return
	}

	h.audit(r, &ispID, "payment.create", "payment", reference, map[string]interface{}{"amount": req.Amount})
	h.send(w, response.Created("Payment created successfully", map[string]interface{}{
		"id":        paymentID,
		"reference": reference,
	}))
}

func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	h.settlePayment(w, r, "completed", "payment.complete", "Payment marked as completed")
}

func (h *Handler) FailPayment(w http.ResponseWriter, r *http.Request) {
	h.settlePayment(w, r, "failed", "payment.fail", "Payment marked as failed")
}

func (h *Handler) settlePayment(w http.ResponseWriter, r *http.Request, status, action, message string) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	id := mux.Vars(r)["id"]

	result, err := h.db.Exec(`
		UPDATE payments
		SET status = $1, paid_at = CASE WHEN $1 = 'completed' THEN NOW() END
		WHERE id = $2 AND isp_id = $3 AND status = 'pending'
	`, status, id, ispID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to update payment"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusConflict, "Payment is not pending"))
		return
	}

	// Completed payments feed the day's revenue aggregate.
	if status == "completed" {
		var amount float64
		if err := h.db.QueryRow("SELECT amount FROM payments WHERE id = $1", id).Scan(&amount); err == nil {
			h.db.Exec(`
				INSERT INTO metrics (isp_id, metric_type, metric_date, value)
				VALUES ($1, 'revenue', CURRENT_DATE, $2)
				ON CONFLICT (isp_id, metric_type, metric_date)
				DO UPDATE SET value = metrics.value + EXCLUDED.value
			`, ispID, amount)
		}
	}

	h.audit(r, &ispID, action, "payment", id, nil)
	h.logger.Info(message, "payment_id", id, "isp_id", ispID, "by", claims.UserID)
	h.send(w, response.OK(message, nil))
}
