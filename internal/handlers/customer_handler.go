package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/services"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// @Summary List Customers
// @Tags Customers
// @Produce json
// @Param search query string false "Name or email"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) Index(c *gin.Context) {
	query := listQuery(c, "search")
	customers, total, err := h.customerService.List(c.Request.Context(), middleware.GetTenantID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers, "pagination": pagination(query, total)})
}

// @Summary Get Customer
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} models.Customer
// @Security BearerAuth
// @Router /customers/{customer_id} [get]
func (h *CustomerHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	customer, err := h.customerService.FindByID(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// @Summary Create Customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body services.CustomerInput true "Customer Data"
// @Success 201 {object} models.Customer
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req services.CustomerInput
	if err := BindNestedOrFlat(c, "customer", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}
