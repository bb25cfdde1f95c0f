package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Self-registration only issues tenant-scoped roles. Platform accounts
// (SUPER_ADMIN, ADMIN) are promoted by an existing platform admin through
// UpdateUser.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name"`
	Role     string `json:"role" validate:"omitempty,oneof=ISP_ADMIN ISP_STAFF CLIENT"`
	ISPID    *int   `json:"isp_id"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var userID int
	var email, passwordHash, fullName string
	var role rbac.Role
	var ispID *int
	var isActive bool
	err := h.db.QueryRow(
		"SELECT id, email, password_hash, role, isp_id, COALESCE(full_name, ''), is_active FROM users WHERE email = $1",
		req.Email,
	).Scan(&userID, &email, &passwordHash, &role, &ispID, &fullName, &isActive)

	if err != nil {
		h.logger.Warn("Login failed - user not found", "email", req.Email)
		h.send(w, response.Error(http.StatusUnauthorized, "Invalid credentials"))
		return
	}

	if !isActive {
		h.send(w, response.Error(http.StatusUnauthorized, "Account is disabled"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("Login failed - invalid password", "email", req.Email)
		h.send(w, response.Error(http.StatusUnauthorized, "Invalid credentials"))
		return
	}

	token, err := h.generateJWT(userID, email, role, ispID)
	if err != nil {
		h.logger.Error("Failed to generate JWT", "error", err)
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to generate token"))
		return
	}

	h.logger.Info("User logged in", "user_id", userID, "email", email)

	h.send(w, response.OK("Login successful", map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":        userID,
			"email":     email,
			"role":      role,
			"isp_id":    ispID,
			"full_name": fullName,
		},
	}))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := ValidatePassword(req.Password); err != nil {
		h.send(w, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	role := rbac.Role(req.Role)
	if req.Role == "" {
		role = rbac.RoleClient
	}

	// Every self-registered account belongs to a tenant.
	if req.ISPID == nil {
		h.send(w, response.Error(http.StatusBadRequest, "isp_id is required"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to process password"))
		return
	}

	var userID int
	err = h.db.QueryRow(
		"INSERT INTO users (email, password_hash, role, isp_id, full_name) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		req.Email, string(hashedPassword), role, req.ISPID, req.FullName,
	).Scan(&userID)

	if err != nil {
		h.send(w, response.Error(http.StatusBadRequest, "Email already exists"))
		return
	}

	token, _ := h.generateJWT(userID, req.Email, role, req.ISPID)

	h.logger.Info("User registered", "user_id", userID, "email", req.Email, "role", role)

	h.send(w, response.Created("User registered successfully", map[string]interface{}{
		"token":   token,
		"user_id": userID,
	}))
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		h.send(w, response.Error(http.StatusUnauthorized, "Invalid token"))
		return
	}

	token, err := h.generateJWT(claims.UserID, claims.Email, claims.Role, claims.ISPID)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to refresh token"))
		return
	}

	h.send(w, response.OK("Token refreshed", map[string]string{"token": token}))
}

func (h *Handler) generateJWT(userID int, email string, role rbac.Role, ispID *int) (string, error) {
	claims := middleware.Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		ISPID:  ispID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.cfg.JWT.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWT.Secret))
}
