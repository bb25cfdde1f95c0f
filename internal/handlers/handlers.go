package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"hotspothub.io/platform/internal/config"
	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
	"hotspothub.io/platform/pkg/crypto"
	"hotspothub.io/platform/pkg/database"
	"hotspothub.io/platform/pkg/logger"
	"hotspothub.io/platform/pkg/redis"
)

type Handler struct {
	db       *database.DB
	cache    *redis.Client
	logger   *logger.Logger
	cfg      *config.Config
	cipher   *crypto.Cipher
	validate *validator.Validate
}

func New(db *database.DB, cache *redis.Client, l *logger.Logger, cfg *config.Config, cipher *crypto.Cipher) *Handler {
	return &Handler{
		db:       db,
		cache:    cache,
		logger:   l,
		cfg:      cfg,
		cipher:   cipher,
		validate: validator.New(),
	}
}

func (h *Handler) send(w http.ResponseWriter, env response.Envelope) {
	response.Write(w, env)
}

// decodeAndValidate parses the JSON body into dst and runs struct validation,
// writing the error envelope itself. Returns false when the request is bad.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.send(w, response.Error(http.StatusBadRequest, "Invalid request body"))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			h.send(w, response.ValidationError(verrs))
		} else {
			h.send(w, response.Error(http.StatusBadRequest, "Invalid request body"))
		}
		return false
	}
	return true
}

// resolveTenant maps the syntactic tenant identifier (numeric id or slug)
// to an ISP row id.
func (h *Handler) resolveTenant(r *http.Request) (int, error) {
	ident := middleware.GetTenantFromContext(r)

	if id, err := strconv.Atoi(ident); err == nil {
		var exists int
		if err := h.db.QueryRow("SELECT id FROM isps WHERE id = $1", id).Scan(&exists); err != nil {
			return 0, err
		}
		return exists, nil
	}

	var id int
	if err := h.db.QueryRow("SELECT id FROM isps WHERE slug = $1", ident).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// tenantScope resolves the tenant and enforces the access policy, writing
// the error envelope on failure. Returns (ispID, ok).
func (h *Handler) tenantScope(w http.ResponseWriter, r *http.Request) (int, bool) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		h.send(w, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return 0, false
	}

	ispID, err := h.resolveTenant(r)
	if err != nil {
		h.send(w, response.Error(http.StatusNotFound, "Tenant not found"))
		return 0, false
	}

	if !rbac.CanAccessISP(claims.Role, claims.ISPID, ispID) {
		h.send(w, response.Error(http.StatusForbidden, "Access to this tenant is denied"))
		return 0, false
	}

	return ispID, true
}

// pagination reads page/limit query parameters with sane bounds.
func pagination(r *http.Request) (page, limit, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit, (page - 1) * limit
}

// audit records a mutation; failures are logged, never surfaced.
func (h *Handler) audit(r *http.Request, ispID *int, action, entity, entityID string, detail map[string]interface{}) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		return
	}

	detailJSON, _ := json.Marshal(detail)
	_, err := h.db.Exec(`
		INSERT INTO audit_logs (isp_id, actor_id, action, entity, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ispID, claims.UserID, action, entity, entityID, detailJSON)
	if err != nil {
		h.logger.Warn("Failed to write audit log", "action", action, "entity", entity, "error", err)
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := h.db.Ping(); err != nil {
		dbStatus = "disconnected"
	}

	redisStatus := "connected"
	if h.cache == nil {
		redisStatus = "disabled"
	} else if err := h.cache.Ping(); err != nil {
		redisStatus = "disconnected"
	}

	h.send(w, response.OK("HotspotHub API is running", map[string]interface{}{
		"version":   "1.0.0",
		"timestamp": time.Now().Format(time.RFC3339),
		"database":  dbStatus,
		"redis":     redisStatus,
	}))
}
