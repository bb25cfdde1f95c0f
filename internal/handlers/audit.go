package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type AuditLogResponse struct {
	ID        int             `json:"id"`
	ISPID     *int            `json:"isp_id"`
	ActorID   int             `json:"actor_id"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// GetAuditLogs lists mutations, filterable by action/entity/actor. Platform
// admins see everything; tenant admins only their tenant's trail.
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if !rbac.CanManageUsers(claims.Role) || (!rbac.Platform(claims.Role) && claims.ISPID == nil) {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	limitStr := r.URL.Query().Get("limit")
	limit := 100
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	query := "SELECT id, isp_id, actor_id, action, entity, entity_id, detail, created_at FROM audit_logs WHERE 1=1"
	args := []interface{}{}
	argCount := 0

	if !rbac.Platform(claims.Role) {
		argCount++
		query += " AND isp_id = $" + strconv.Itoa(argCount)
		args = append(args, *claims.ISPID)
	}

	if action := r.URL.Query().Get("action"); action != "" {
		argCount++
		query += " AND action = $" + strconv.Itoa(argCount)
		args = append(args, action)
	}

	if entity := r.URL.Query().Get("entity"); entity != "" {
		argCount++
		query += " AND entity = $" + strconv.Itoa(argCount)
		args = append(args, entity)
	}

	if actor := r.URL.Query().Get("actor"); actor != "" {
		argCount++
		query += " AND actor_id = $" + strconv.Itoa(argCount)
		args = append(args, actor)
	}

	argCount++
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := h.db.Query(query, args...)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Database error"))
		return
	}
	defer rows.Close()

	var logs []AuditLogResponse
	for rows.Next() {
		var entry AuditLogResponse
		if err := rows.Scan(&entry.ID, &entry.ISPID, &entry.ActorID, &entry.Action,
			&entry.Entity, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			continue
		}
		logs = append(logs, entry)
	}

	h.send(w, response.OK("Audit logs fetched", logs))
}
