package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type ISPResponse struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	LogoURL      *string `json:"logo_url"`
	BrandColor   *string `json:"brand_color"`
	RouterSecret *string `json:"router_secret,omitempty"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
}

type CreateISPRequest struct {
	Name         string `json:"name" validate:"required"`
	Slug         string `json:"slug" validate:"required,lowercase,alphanum"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone"`
	LogoURL      string `json:"logo_url" validate:"omitempty,url"`
	BrandColor   string `json:"brand_color" validate:"omitempty,hexcolor"`
	RouterSecret string `json:"router_secret"`
}

type UpdateISPRequest struct {
	Name         string `json:"name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone,omitempty"`
	LogoURL      string `json:"logo_url,omitempty" validate:"omitempty,url"`
	BrandColor   string `json:"brand_color,omitempty" validate:"omitempty,hexcolor"`
	RouterSecret string `json:"router_secret,omitempty"`
}

func (h *Handler) GetISPs(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)

	query := `
		SELECT id, name, slug, contact_email, contact_phone, logo_url, brand_color, is_active, created_at
		FROM isps
	`
	var args []interface{}
	if !rbac.Platform(claims.Role) {
		if claims.ISPID == nil {
			h.send(w, response.Error(http.StatusForbidden, "Access denied"))
			return
		}
		query += " WHERE id = $1"
		args = append(args, *claims.ISPID)
	}
	query += " ORDER BY id"

	rows, err := h.db.Query(query, args...)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Database error"))
		return
	}
	defer rows.Close()

	var isps []ISPResponse
	for rows.Next() {
		var isp ISPResponse
		if err := rows.Scan(&isp.ID, &isp.Name, &isp.Slug, &isp.ContactEmail, &isp.ContactPhone,
			&isp.LogoURL, &isp.BrandColor, &isp.IsActive, &isp.CreatedAt); err != nil {
			continue
		}
		isps = append(isps, isp)
	}

	h.send(w, response.OK("ISPs fetched", isps))
}

func (h *Handler) GetISP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	claims := middleware.GetUserFromContext(r)
	ispID, _ := strconv.Atoi(id)
	if !rbac.CanAccessISP(claims.Role, claims.ISPID, ispID) {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var isp ISPResponse
	var encryptedSecret *string
	err := h.db.QueryRow(`
		SELECT id, name, slug, contact_email, contact_phone, logo_url, brand_color, router_secret, is_active, created_at
		FROM isps WHERE id = $1
	`, id).Scan(&isp.ID, &isp.Name, &isp.Slug, &isp.ContactEmail, &isp.ContactPhone,
		&isp.LogoURL, &isp.BrandColor, &encryptedSecret, &isp.IsActive, &isp.CreatedAt)

	if err != nil {
		h.send(w, response.Error(http.StatusNotFound, "ISP not found"))
		return
	}

	// Router credentials are only surfaced to admins, decrypted on the way out.
	if encryptedSecret != nil && rbac.CanManageUsers(claims.Role) {
		if plaintext, err := h.cipher.Decrypt(*encryptedSecret); err == nil {
			isp.RouterSecret = &plaintext
		}
	}

	h.send(w, response.OK("ISP fetched", isp))
}

func (h *Handler) CreateISP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if !rbac.Platform(claims.Role) {
		h.send(w, response.Error(http.StatusForbidden, "Admin access required"))
		return
	}

	var req CreateISPRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var routerSecret *string
	if req.RouterSecret != "" {
		encrypted, err := h.cipher.Encrypt(req.RouterSecret)
		if err != nil {
			h.send(w, response.Error(http.StatusInternalServerError, "Failed to store router credentials"))
			return
		}
		routerSecret = &encrypted
	}

	var ispID int
	err := h.db.QueryRow(`
		INSERT INTO isps (name, slug, contact_email, contact_phone, logo_url, brand_color, router_secret)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7) RETURNING id
	`, req.Name, req.Slug, req.ContactEmail, req.ContactPhone, req.LogoURL, req.BrandColor, routerSecret).Scan(&ispID)

	if err != nil {
		h.send(w, response.Error(http.StatusBadRequest, "Failed to create ISP. Slug may already exist."))
		return
	}

	h.audit(r, &ispID, "isp.create", "isp", strconv.Itoa(ispID), map[string]interface{}{"name": req.Name, "slug": req.Slug})
	h.logger.Info("ISP created", "isp_id", ispID, "name", req.Name, "by", claims.UserID)
	h.send(w, response.Created("ISP created successfully", map[string]int{"id": ispID}))
}

func (h *Handler) UpdateISP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	claims := middleware.GetUserFromContext(r)
	ispID, _ := strconv.Atoi(id)
	if !rbac.CanAccessISP(claims.Role, claims.ISPID, ispID) || claims.Role == rbac.RoleClient || claims.Role == rbac.RoleISPStaff {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var req UpdateISPRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var routerSecret *string
	if req.RouterSecret != "" {
		encrypted, err := h.cipher.Encrypt(req.RouterSecret)
		if err != nil {
			h.send(w, response.Error(http.StatusInternalServerError, "Failed to store router credentials"))
			return
		}
		routerSecret = &encrypted
	}

	_, err := h.db.Exec(`
		UPDATE isps SET
			name = COALESCE(NULLIF($1, ''), name),
			contact_email = COALESCE(NULLIF($2, ''), contact_email),
			contact_phone = COALESCE(NULLIF($3, ''), contact_phone),
			logo_url = COALESCE(NULLIF($4, ''), logo_url),
			brand_color = COALESCE(NULLIF($5, ''), brand_color),
			router_secret = COALESCE($6, router_secret),
			updated_at = NOW()
		WHERE id = $7
	`, req.Name, req.ContactEmail, req.ContactPhone, req.LogoURL, req.BrandColor, routerSecret, id)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to update ISP"))
		return
	}

	h.audit(r, &ispID, "isp.update", "isp", id, nil)
	h.send(w, response.OK("ISP updated successfully", nil))
}

func (h *Handler) SuspendISP(w http.ResponseWriter, r *http.Request) {
	h.setISPActive(w, r, false, "isp.suspend", "ISP suspended successfully")
}

func (h *Handler) ActivateISP(w http.ResponseWriter, r *http.Request) {
	h.setISPActive(w, r, true, "isp.activate", "ISP activated successfully")
}

func (h *Handler) setISPActive(w http.ResponseWriter, r *http.Request, active bool, action, message string) {
	vars := mux.Vars(r)
	id := vars["id"]

	claims := middleware.GetUserFromContext(r)
	if !rbac.Platform(claims.Role) {
		h.send(w, response.Error(http.StatusForbidden, "Admin access required"))
		return
	}

	result, err := h.db.Exec("UPDATE isps SET is_active = $1, updated_at = NOW() WHERE id = $2", active, id)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to update ISP"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusNotFound, "ISP not found"))
		return
	}

	ispID, _ := strconv.Atoi(id)
	h.audit(r, &ispID, action, "isp", id, nil)
	h.logger.Info(message, "isp_id", id, "by", claims.UserID)
	h.send(w, response.OK(message, nil))
}

func (h *Handler) DeleteISP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	claims := middleware.GetUserFromContext(r)
	if claims.Role != rbac.RoleSuperAdmin {
		h.send(w, response.Error(http.StatusForbidden, "Super admin access required"))
		return
	}

	result, err := h.db.Exec("DELETE FROM isps WHERE id = $1", id)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to delete ISP"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusNotFound, "ISP not found"))
		return
	}

	h.audit(r, nil, "isp.delete", "isp", id, nil)
	h.logger.Info("ISP deleted", "isp_id", id, "by", claims.UserID)
	h.send(w, response.Deleted("ISP deleted successfully"))
}
