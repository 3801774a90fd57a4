package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/services"
)

type RecurringHandler struct {
	recurringService *services.RecurringService
}

func NewRecurringHandler(recurringService *services.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

type CreateRecurringRequest struct {
	Type               string          `json:"type"`
	Category           string          `json:"category"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Interval           string          `json:"interval"`
	NextDueDate        string          `json:"next_due_date"`
	CustomerID         *uint           `json:"customer_id"`
	ProcessImmediately bool            `json:"process_immediately"`
}

type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// @Summary List Recurring Obligations
// @Tags Recurring
// @Produce json
// @Param active query bool false "Active filter"
// @Param type query string false "INCOME or EXPENSE"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /recurring [get]
func (h *RecurringHandler) Index(c *gin.Context) {
	query := listQuery(c, "active", "type")
	items, total, err := h.recurringService.List(c.Request.Context(), middleware.GetTenantID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recurring_transactions": items, "pagination": pagination(query, total)})
}

// @Summary Get Recurring Obligation
// @Tags Recurring
// @Produce json
// @Param recurring_id path int true "Recurring ID"
// @Success 200 {object} models.RecurringTransaction
// @Security BearerAuth
// @Router /recurring/{recurring_id} [get]
func (h *RecurringHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "recurring_id")
	if !ok {
		return
	}
	r, err := h.recurringService.FindByID(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recurring_transaction": r})
}

// @Summary Create Recurring Obligation
// @Tags Recurring
// @Accept json
// @Produce json
// @Param request body CreateRecurringRequest true "Obligation"
// @Success 201 {object} models.RecurringTransaction
// @Security BearerAuth
// @Router /recurring [post]
func (h *RecurringHandler) Create(c *gin.Context) {
	var req CreateRecurringRequest
	if err := BindNestedOrFlat(c, "recurring_transaction", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	nextDue, err := parseDate(req.NextDueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.recurringService.Create(c.Request.Context(), actorFrom(c), services.CreateRecurringInput{
		Type:               req.Type,
		Category:           req.Category,
		Description:        req.Description,
		Amount:             req.Amount,
		Interval:           req.Interval,
		NextDueDate:        nextDue,
		CustomerID:         req.CustomerID,
		ProcessImmediately: req.ProcessImmediately,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recurring_transaction": r})
}

// @Summary Toggle Recurring Obligation
// @Tags Recurring
// @Accept json
// @Produce json
// @Param recurring_id path int true "Recurring ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} models.RecurringTransaction
// @Security BearerAuth
// @Router /recurring/{recurring_id}/active [put]
func (h *RecurringHandler) SetActive(c *gin.Context) {
	id, ok := parseID(c, "recurring_id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "el campo active es requerido"})
		return
	}
	r, err := h.recurringService.SetActive(c.Request.Context(), actorFrom(c), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recurring_transaction": r})
}

// @Summary Delete Recurring Obligation
// @Tags Recurring
// @Param recurring_id path int true "Recurring ID"
// @Success 204
// @Security BearerAuth
// @Router /recurring/{recurring_id} [delete]
func (h *RecurringHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "recurring_id")
	if !ok {
		return
	}
	if err := h.recurringService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
