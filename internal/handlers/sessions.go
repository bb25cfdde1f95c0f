package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/models"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type SessionResponse struct {
	ID        int             `json:"id"`
	ISPID     int             `json:"isp_id"`
	UserID    int             `json:"user_id"`
	Devices   []models.Device `json:"devices"`
	Status    string          `json:"status"`
	StartedAt string          `json:"started_at"`
	EndedAt   *string         `json:"ended_at"`
	BytesIn   int64           `json:"bytes_in"`
	BytesOut  int64           `json:"bytes_out"`
}

type CreateSessionRequest struct {
	UserID    int             `json:"user_id" validate:"required"`
	Devices   []models.Device `json:"devices" validate:"required,min=1,dive"`
	StartedAt string          `json:"started_at"`
	EndedAt   string          `json:"ended_at"`
	BytesIn   int64           `json:"bytes_in" validate:"min=0"`
	BytesOut  int64           `json:"bytes_out" validate:"min=0"`
	Status    string          `json:"status" validate:"omitempty,oneof=active expired terminated pending failed"`
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	page, limit, offset := pagination(r)

	query := `
		SELECT id, isp_id, user_id, devices, status, started_at, ended_at, bytes_in, bytes_out
		FROM sessions WHERE isp_id = $1
	`
	countQuery := "SELECT COUNT(*) FROM sessions WHERE isp_id = $1"
	args := []interface{}{ispID}

	// Clients only see their own sessions.
	if claims.Role == rbac.RoleClient {
		query += " AND user_id = $2 ORDER BY started_at DESC LIMIT $3 OFFSET $4"
		countQuery += " AND user_id = $2"
		args = append(args, claims.UserID)
	} else {
		query += " ORDER BY started_at DESC LIMIT $2 OFFSET $3"
	}

	var total int
	h.db.QueryRow(countQuery, args...).Scan(&total)

	rows, err := h.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Database error"))
		return
	}
	defer rows.Close()

	var sessions []SessionResponse
	for rows.Next() {
		var s SessionResponse
		var devicesJSON []byte
		if err := rows.Scan(&s.ID, &s.ISPID, &s.UserID, &devicesJSON, &s.Status,
			&s.StartedAt, &s.EndedAt, &s.BytesIn, &s.BytesOut); err != nil {
			continue
		}
		json.Unmarshal(devicesJSON, &s.Devices)
		sessions = append(sessions, s)
	}

	h.send(w, response.Paginated("Sessions fetched", sessions, total, page, limit))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	cacheKey := "session:" + strconv.Itoa(ispID) + ":" + id

	var s SessionResponse
	if h.cache != nil {
		if found, err := h.cache.GetJSON(cacheKey, &s); err == nil && found {
			h.send(w, response.OK("Session fetched", s))
			return
		}
	}

	var devicesJSON []byte
	err := h.db.QueryRow(`
		SELECT id, isp_id, user_id, devices, status, started_at, ended_at, bytes_in, bytes_out
		FROM sessions WHERE id = $1 AND isp_id = $2
	`, id, ispID).Scan(&s.ID, &s.ISPID, &s.UserID, &devicesJSON, &s.Status,
		&s.StartedAt, &s.EndedAt, &s.BytesIn, &s.BytesOut)

	if err != nil {
		h.send(w, response.Error(http.StatusNotFound, "Session not found"))
		return
	}
	json.Unmarshal(devicesJSON, &s.Devices)

	if h.cache != nil {
		h.cache.SetJSON(cacheKey, s, 30*time.Second)
	}

	h.send(w, response.OK("Session fetched", s))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	startedAt := time.Now()
	if req.StartedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartedAt)
		if err != nil {
			h.send(w, response.Error(http.StatusBadRequest, "started_at must be RFC3339"))
			return
		}
		startedAt = parsed
	}

	var endedAt *time.Time
	if req.EndedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndedAt)
		if err != nil {
			h.send(w, response.Error(http.StatusBadRequest, "ended_at must be RFC3339"))
			return
		}
		if parsed.Before(startedAt) {
			h.send(w, response.Error(http.StatusBadRequest, "ended_at must not precede started_at"))
			return
		}
		endedAt = &parsed
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	devicesJSON, _ := json.Marshal(req.Devices)

	var sessionID int
	err := h.db.QueryRow(`
		INSERT INTO sessions (isp_id, user_id, devices, status, started_at, ended_at, bytes_in, bytes_out)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id
	`, ispID, req.UserID, devicesJSON, status, startedAt, endedAt, req.BytesIn, req.BytesOut).Scan(&sessionID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to create session"))
		return
	}

	h.logger.Info("Session created", "session_id", sessionID, "isp_id", ispID, "user_id", req.UserID)
	h.send(w, response.Created("Session created successfully", map[string]int{"id": sessionID}))
}

func (h *Handler) TerminateSession(w http.ResponseWriter, r *http.Request) {
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
		UPDATE sessions SET status = 'terminated', ended_at = NOW()
		WHERE id = $1 AND isp_id = $2 AND status IN ('active', 'pending')
	`, id, ispID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to terminate session"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusConflict, "Session is not active"))
		return
	}

	if h.cache != nil {
		h.cache.Delete("session:" + strconv.Itoa(ispID) + ":" + id)
	}

	h.audit(r, &ispID, "session.terminate", "session", id, nil)
	h.logger.Info("Session terminated", "session_id", id, "isp_id", ispID, "by", claims.UserID)
	h.send(w, response.OK("Session terminated successfully", nil))
}
