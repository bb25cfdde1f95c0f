package handlers

import (
	"fmt"
	"net/http"
	"time"

	"hotspothub.io/platform/internal/response"
)

const (
	MetricRevenue = "revenue"
	MetricUsage   = "usage"
)

type MetricResponse struct {
	ID         int     `json:"id"`
	ISPID      int     `json:"isp_id"`
	MetricType string  `json:"metric_type"`
	MetricDate string  `json:"metric_date"`
	Value      float64 `json:"value"`
}

type CreateMetricRequest struct {
	MetricType string  `json:"metric_type" validate:"required"`
	Timestamp  string  `json:"timestamp" validate:"required"`
	Value      float64 `json:"value" validate:"required"`
}

// validMetricType rejects anything outside the supported set.
func validMetricType(t string) bool {
	return t == MetricRevenue || t == MetricUsage
}

// metricDate truncates an RFC3339 timestamp (or a plain date) to its date
// component, the storage key for daily aggregates.
func metricDate(ts string) (string, error) {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC().Format("2006-01-02"), nil
	}
	if t, err := time.Parse("2006-01-02", ts); err == nil {
		return t.Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("timestamp must be RFC3339 or YYYY-MM-DD")
}

func (h *Handler) CreateMetric(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	var req CreateMetricRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if !validMetricType(req.MetricType) {
		h.send(w, response.Error(http.StatusBadRequest, "Unsupported metric type: "+req.MetricType))
		return
	}

	date, err := metricDate(req.Timestamp)
	if err != nil {
		h.send(w, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	var metricID int
	err = h.db.QueryRow(`
		INSERT INTO metrics (isp_id, metric_type, metric_date, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (isp_id, metric_type, metric_date)
		DO UPDATE SET value = EXCLUDED.value
		RETURNING id
	`, ispID, req.MetricType, date, req.Value).Scan(&metricID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to store metric"))
		return
	}

	h.send(w, response.Created("Metric stored", map[string]interface{}{
		"id":          metricID,
		"metric_date": date,
	}))
}

// GetMetrics returns per-day rows for a type within [from, to], ascending.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	metricType := r.URL.Query().Get("type")
	if !validMetricType(metricType) {
		h.send(w, response.Error(http.StatusBadRequest, "Unsupported metric type: "+metricType))
		return
	}

	from, err := metricDate(r.URL.Query().Get("from"))
	if err != nil {
		h.send(w, response.Error(http.StatusBadRequest, "from: "+err.Error()))
		return
	}
	to, err := metricDate(r.URL.Query().Get("to"))
	if err != nil {
		h.send(w, response.Error(http.StatusBadRequest, "to: "+err.Error()))
		return
	}

	rows, err := h.db.Query(`
		SELECT id, isp_id, metric_type, to_char(metric_date, 'YYYY-MM-DD'), value
		FROM metrics
		WHERE isp_id = $1 AND metric_type = $2 AND metric_date BETWEEN $3 AND $4
		ORDER BY metric_date ASC
	`, ispID, metricType, from, to)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Database error"))
		return
	}
	defer rows.Close()

	var metrics []MetricResponse
	for rows.Next() {
		var m MetricResponse
		if err := rows.Scan(&m.ID, &m.ISPID, &m.MetricType, &m.MetricDate, &m.Value); err != nil {
			continue
		}
		metrics = append(metrics, m)
	}

	h.send(w, response.OK("Metrics fetched", metrics))
}

// GetDashboardStats summarizes a tenant at a glance.
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	stats := make(map[string]interface{})

	stats["vouchers"] = h.voucherCountsByStatus(ispID)

	var activeSessions int
	h.db.QueryRow("SELECT COUNT(*) FROM sessions WHERE isp_id = $1 AND status = 'active'", ispID).Scan(&activeSessions)
	stats["active_sessions"] = activeSessions

	var planCount int
	h.db.QueryRow("SELECT COUNT(*) FROM plans WHERE isp_id = $1 AND is_active = true", ispID).Scan(&planCount)
	stats["active_plans"] = planCount

	var totalRevenue, pendingRevenue float64
	h.db.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM payments WHERE isp_id = $1 AND status = 'completed'", ispID).Scan(&totalRevenue)
	h.db.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM payments WHERE isp_id = $1 AND status = 'pending'", ispID).Scan(&pendingRevenue)
	stats["revenue"] = map[string]float64{
		"total":   totalRevenue,
		"pending": pendingRevenue,
	}

	var usage30d float64
	h.db.QueryRow(`
		SELECT COALESCE(SUM(value), 0) FROM metrics
		WHERE isp_id = $1 AND metric_type = 'usage' AND metric_date > CURRENT_DATE - INTERVAL '30 days'
	`, ispID).Scan(&usage30d)
	stats["usage_30d"] = usage30d

	h.send(w, response.OK("Dashboard stats fetched", stats))
}
