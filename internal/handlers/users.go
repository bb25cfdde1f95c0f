package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type UserResponse struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
	ISPID     *int      `json:"isp_id"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt string    `json:"created_at"`
}

type UpdateUserRequest struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=SUPER_ADMIN ADMIN ISP_ADMIN ISP_STAFF CLIENT"`
	Password string `json:"password,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if !rbac.CanManageUsers(claims.Role) || (!rbac.Platform(claims.Role) && claims.ISPID == nil) {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	page, limit, offset := pagination(r)

	query := `
		SELECT id, email, role, isp_id, COALESCE(full_name, ''), is_active, created_at
		FROM users
	`
	countQuery := "SELECT COUNT(*) FROM users"
	var args []interface{}

	// Tenant admins only see their own tenant's users.
	if !rbac.Platform(claims.Role) {
		query += " WHERE isp_id = $1 ORDER BY id LIMIT $2 OFFSET $3"
		countQuery += " WHERE isp_id = $1"
		args = []interface{}{*claims.ISPID, limit, offset}
	} else {
		query += " ORDER BY id LIMIT $1 OFFSET $2"
		args = []interface{}{limit, offset}
	}

	var total int
	if !rbac.Platform(claims.Role) {
		h.db.QueryRow(countQuery, *claims.ISPID).Scan(&total)
	} else {
		h.db.QueryRow(countQuery).Scan(&total)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Database error"))
		return
	}
	defer rows.Close()

	var users []UserResponse
	for rows.Next() {
		var u UserResponse
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.ISPID, &u.FullName, &u.IsActive, &u.CreatedAt); err != nil {
			continue
		}
		users = append(users, u)
	}

	h.send(w, response.Paginated("Users fetched", users, total, page, limit))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	claims := middleware.GetUserFromContext(r)
	userID, _ := strconv.Atoi(id)

	if !rbac.CanManageUsers(claims.Role) && claims.UserID != userID {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var u UserResponse
	err := h.db.QueryRow(`
		SELECT id, email, role, isp_id, COALESCE(full_name, ''), is_active, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Role, &u.ISPID, &u.FullName, &u.IsActive, &u.CreatedAt)

	if err != nil {
		h.send(w, response.Error(http.StatusNotFound, "User not found"))
		return
	}

	// Tenant admins cannot inspect users of other tenants.
	if !rbac.Platform(claims.Role) && claims.UserID != userID {
		if u.ISPID == nil || !rbac.CanAccessISP(claims.Role, claims.ISPID, *u.ISPID) {
			h.send(w, response.Error(http.StatusForbidden, "Access denied"))
			return
		}
	}

	h.send(w, response.OK("User fetched", u))
}

// canEditUser decides whether the caller may modify the target account.
// Self-edits and platform roles always pass; tenant admins are confined
// to accounts inside their own tenant.
func canEditUser(claims *middleware.Claims, targetID int, targetISP *int) bool {
	if claims.UserID == targetID || rbac.Platform(claims.Role) {
		return true
	}
	if !rbac.CanManageUsers(claims.Role) {
		return false
	}
	return targetISP != nil && rbac.CanAccessISP(claims.Role, claims.ISPID, *targetISP)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	claims := middleware.GetUserFromContext(r)
	userID, _ := strconv.Atoi(id)

	if !rbac.CanManageUsers(claims.Role) && claims.UserID != userID {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var targetISP *int
	if err := h.db.QueryRow("SELECT isp_id FROM users WHERE id = $1", id).Scan(&targetISP); err != nil {
		h.send(w, response.Error(http.StatusNotFound, "User not found"))
		return
	}

	if !canEditUser(claims, userID, targetISP) {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var req UpdateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var hashedPassword string
	if req.Password != "" {
		if err := ValidatePassword(req.Password); err != nil {
			h.send(w, response.Error(http.StatusBadRequest, err.Error()))
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.send(w, response.Error(http.StatusInternalServerError, "Failed to process password"))
			return
		}
		hashedPassword = string(hashed)
	}

	// All field edits land atomically or not at all.
	err := h.db.WithTx(r.Context(), func(tx *sql.Tx) error {
		if req.Email != "" {
			if _, err := tx.Exec("UPDATE users SET email = $1, updated_at = NOW() WHERE id = $2", req.Email, id); err != nil {
				return err
			}
		}
		if req.FullName != "" {
			if _, err := tx.Exec("UPDATE users SET full_name = $1, updated_at = NOW() WHERE id = $2", req.FullName, id); err != nil {
				return err
			}
		}
		if hashedPassword != "" {
			if _, err := tx.Exec("UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2", hashedPassword, id); err != nil {
				return err
			}
		}
		// Role and activation changes are platform-level actions.
		if rbac.Platform(claims.Role) {
			if req.Role != "" {
				if _, err := tx.Exec("UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2", req.Role, id); err != nil {
					return err
				}
			}
			if req.IsActive != nil {
				if _, err := tx.Exec("UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2", *req.IsActive, id); err != nil {
					return err
				}
			}
		}
		return nil
	})

	if err != nil {
		h.send(w, response.Error(http.StatusBadRequest, "Failed to update user. Email may already be in use."))
		return
	}

	h.audit(r, nil, "user.update", "user", id, nil)
	h.logger.Info("User updated", "user_id", id, "by", claims.UserID)
	h.send(w, response.OK("User updated successfully", nil))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	claims := middleware.GetUserFromContext(r)
	if !rbac.Platform(claims.Role) {
		h.send(w, response.Error(http.StatusForbidden, "Admin access required"))
		return
	}

	result, err := h.db.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to delete user"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusNotFound, "User not found"))
		return
	}

	h.audit(r, nil, "user.delete", "user", id, nil)
	h.logger.Info("User deleted", "user_id", id, "by", claims.UserID)
	h.send(w, response.Deleted("User deleted successfully"))
}
