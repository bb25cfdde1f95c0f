package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type NotificationResponse struct {
	ID        int    `json:"id"`
	ISPID     int    `json:"isp_id"`
	UserID    *int   `json:"user_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type CreateNotificationRequest struct {
	UserID *int   `json:"user_id"`
	Title  string `json:"title" validate:"required"`
	Body   string `json:"body" validate:"required"`
}

// GetNotifications returns the caller's notifications plus tenant-wide ones.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)

	rows, err := h.db.Query(`
		SELECT id, isp_id, user_id, title, body, is_read, created_at
		FROM notifications
		WHERE isp_id = $1 AND (user_id IS NULL OR user_id = $2)
		ORDER BY created_at DESC LIMIT 100
	`, ispID, claims.UserID)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Database error"))
		return
	}
	defer rows.Close()

	var notifications []NotificationResponse
	for rows.Next() {
		var n NotificationResponse
		if err := rows.Scan(&n.ID, &n.ISPID, &n.UserID, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			continue
		}
		notifications = append(notifications, n)
	}

	h.send(w, response.OK("Notifications fetched", notifications))
}

func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var req CreateNotificationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var notificationID int
	err := h.db.QueryRow(`
		INSERT INTO notifications (isp_id, user_id, title, body) VALUES ($1, $2, $3, $4) RETURNING id
	`, ispID, req.UserID, req.Title, req.Body).Scan(&notificationID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to create notification"))
		return
	}

	h.send(w, response.Created("Notification created successfully", map[string]int{"id": notificationID}))
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	id := mux.Vars(r)["id"]

	result, err := h.db.Exec(`
		UPDATE notifications SET is_read = true
		WHERE id = $1 AND isp_id = $2 AND (user_id IS NULL OR user_id = $3)
	`, id, ispID, claims.UserID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to update notification"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusNotFound, "Notification not found"))
		return
	}

	h.send(w, response.OK("Notification marked as read", map[string]string{"id": id}))
}
