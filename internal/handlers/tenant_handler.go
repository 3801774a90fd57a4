package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/services"
)

type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// @Summary Get Payroll Settings
// @Tags Tenant
// @Produce json
// @Success 200 {object} models.PayrollSettings
// @Security BearerAuth
// @Router /tenant/payroll_settings [get]
func (h *TenantHandler) PayrollSettings(c *gin.Context) {
	settings, err := h.tenantService.GetPayrollSettings(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payroll_settings": settings})
}

// @Summary Update Payroll Settings
// @Description Day values are clamped to 1-31 and the end day never precedes the start day
// @Tags Tenant
// @Accept json
// @Produce json
// @Param request body models.PayrollSettings true "Settings"
// @Success 200 {object} models.PayrollSettings
// @Security BearerAuth
// @Router /tenant/payroll_settings [put]
func (h *TenantHandler) UpdatePayrollSettings(c *gin.Context) {
	var req models.PayrollSettings
	if err := BindNestedOrFlat(c, "payroll_settings", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := h.tenantService.UpdatePayrollSettings(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payroll_settings": settings})
}

// @Summary Save Payment Config
// @Description Stores the merchant credentials used to create payment links
// @Tags Tenant
// @Accept json
// @Produce json
// @Param request body services.PaymentConfigInput true "Payment config"
// @Success 200 {object} models.PaymentProviderConfig
// @Security BearerAuth
// @Router /tenant/payment_config [put]
func (h *TenantHandler) SavePaymentConfig(c *gin.Context) {
	var req services.PaymentConfigInput
	if err := BindNestedOrFlat(c, "payment_config", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := h.tenantService.SavePaymentConfig(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_config": cfg})
}
