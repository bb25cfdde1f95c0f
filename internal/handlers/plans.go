package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/internal/rbac"
	"hotspothub.io/platform/internal/response"
)

type PlanResponse struct {
	ID          int                   `json:"id"`
	ISPID       int                   `json:"isp_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Price       float64               `json:"price"`
	IsActive    bool                  `json:"is_active"`
	Rules       []PricingRuleResponse `json:"pricing_rules,omitempty"`
	CreatedAt   string                `json:"created_at"`
}

type PricingRuleResponse struct {
	ID          int     `json:"id"`
	RuleType    string  `json:"rule_type"`
	Value       float64 `json:"value"`
	MinQuantity *int    `json:"min_quantity"`
	MaxQuantity *int    `json:"max_quantity"`
}

type CreatePlanRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gt=0"`
}

type UpdatePlanRequest struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type CreatePricingRuleRequest struct {
	RuleType    string  `json:"rule_type" validate:"required,oneof=flat percentage tiered"`
	Value       float64 `json:"value" validate:"required"`
	MinQuantity *int    `json:"min_quantity" validate:"omitempty,min=1"`
	MaxQuantity *int    `json:"max_quantity" validate:"omitempty,min=1"`
}

func (h *Handler) GetPlans(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	rows, err := h.db.Query(`
		SELECT id, isp_id, name, COALESCE(description, ''), price, is_active, created_at
		FROM plans WHERE isp_id = $1 ORDER BY price
	`, ispID)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Database error"))
		return
	}
	defer rows.Close()

	var plans []PlanResponse
	for rows.Next() {
		var p PlanResponse
		if err := rows.Scan(&p.ID, &p.ISPID, &p.Name, &p.Description, &p.Price, &p.IsActive, &p.CreatedAt); err != nil {
			continue
		}
		plans = append(plans, p)
	}

	h.send(w, response.OK("Plans fetched", plans))
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]

	var p PlanResponse
	err := h.db.QueryRow(`
		SELECT id, isp_id, name, COALESCE(description, ''), price, is_active, created_at
		FROM plans WHERE id = $1 AND isp_id = $2
	`, id, ispID).Scan(&p.ID, &p.ISPID, &p.Name, &p.Description, &p.Price, &p.IsActive, &p.CreatedAt)

	if err != nil {
		h.send(w, response.Error(http.StatusNotFound, "Plan not found"))
		return
	}

	rules, err := h.db.Query(`
		SELECT id, rule_type, value, min_quantity, max_quantity
		FROM plan_pricing_rules WHERE plan_id = $1 ORDER BY id
	`, p.ID)
	if err == nil {
		defer rules.Close()
		for rules.Next() {
			var rule PricingRuleResponse
			if err := rules.Scan(&rule.ID, &rule.RuleType, &rule.Value, &rule.MinQuantity, &rule.MaxQuantity); err != nil {
				continue
			}
			p.Rules = append(p.Rules, rule)
		}
	}

	h.send(w, response.OK("Plan fetched", p))
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient || claims.Role == rbac.RoleISPStaff {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var req CreatePlanRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var planID int
	err := h.db.QueryRow(`
		INSERT INTO plans (isp_id, name, description, price) VALUES ($1, $2, NULLIF($3, ''), $4) RETURNING id
	`, ispID, req.Name, req.Description, req.Price).Scan(&planID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to create plan"))
		return
	}

	h.audit(r, &ispID, "plan.create", "plan", strconv.Itoa(planID), map[string]interface{}{"name": req.Name})
	h.logger.Info("Plan created", "plan_id", planID, "isp_id", ispID, "by", claims.UserID)
	h.send(w, response.Created("Plan created successfully", map[string]int{"id": planID}))
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient || claims.Role == rbac.RoleISPStaff {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	id := mux.Vars(r)["id"]

	var req UpdatePlanRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.db.Exec(`
		UPDATE plans SET
			name = COALESCE(NULLIF($1, ''), name),
			description = COALESCE(NULLIF($2, ''), description),
			price = COALESCE($3, price),
			is_active = COALESCE($4, is_active),
			updated_at = NOW()
		WHERE id = $5 AND isp_id = $6
	`, req.Name, req.Description, req.Price, req.IsActive, id, ispID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to update plan"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusNotFound, "Plan not found"))
		return
	}

	h.audit(r, &ispID, "plan.update", "plan", id, nil)
	h.send(w, response.OK("Plan updated successfully", nil))
}

func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient || claims.Role == rbac.RoleISPStaff {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	id := mux.Vars(r)["id"]

	result, err := h.db.Exec("DELETE FROM plans WHERE id = $1 AND isp_id = $2", id, ispID)
	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to delete plan"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusNotFound, "Plan not found"))
		return
	}

	h.audit(r, &ispID, "plan.delete", "plan", id, nil)
	h.send(w, response.Deleted("Plan deleted successfully"))
}

func (h *Handler) CreatePricingRule(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient || claims.Role == rbac.RoleISPStaff {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	planID := mux.Vars(r)["id"]

	var req CreatePricingRuleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if req.MinQuantity != nil && req.MaxQuantity != nil && *req.MaxQuantity < *req.MinQuantity {
		h.send(w, response.Error(http.StatusBadRequest, "max_quantity must be >= min_quantity"))
		return
	}

	// Plan must belong to the tenant.
	var exists int
	if err := h.db.QueryRow("SELECT id FROM plans WHERE id = $1 AND isp_id = $2", planID, ispID).Scan(&exists); err != nil {
		h.send(w, response.Error(http.StatusNotFound, "Plan not found"))
		return
	}

	var ruleID int
	err := h.db.QueryRow(`
		INSERT INTO plan_pricing_rules (plan_id, rule_type, value, min_quantity, max_quantity)
		VALUES ($1, $2, $3, $4, $5) RETURNING id
	`, planID, req.RuleType, req.Value, req.MinQuantity, req.MaxQuantity).Scan(&ruleID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to create pricing rule"))
		return
	}

	h.audit(r, &ispID, "plan.rule.create", "pricing_rule", strconv.Itoa(ruleID), map[string]interface{}{"rule_type": req.RuleType})
	h.send(w, response.Created("Pricing rule created successfully", map[string]int{"id": ruleID}))
}

func (h *Handler) DeletePricingRule(w http.ResponseWriter, r *http.Request) {
	ispID, ok := h.tenantScope(w, r)
	if !ok {
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims.Role == rbac.RoleClient || claims.Role == rbac.RoleISPStaff {
		h.send(w, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	vars := mux.Vars(r)

	result, err := h.db.Exec(`
		DELETE FROM plan_pricing_rules
		WHERE id = $1 AND plan_id IN (SELECT id FROM plans WHERE id = $2 AND isp_id = $3)
	`, vars["ruleId"], vars["id"], ispID)

	if err != nil {
		h.send(w, response.Error(http.StatusInternalServerError, "Failed to delete pricing rule"))
		return
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		h.send(w, response.Error(http.StatusNotFound, "Pricing rule not found"))
		return
	}

	h.audit(r, &ispID, "plan.rule.delete", "pricing_rule", vars["ruleId"], nil)
	h.send(w, response.Deleted("Pricing rule deleted successfully"))
}
