package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PayrollHandler struct {
	payrollService *services.PayrollService
	exportService  *services.ExportService
}

func NewPayrollHandler(payrollService *services.PayrollService, exportService *services.ExportService) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService, exportService: exportService}
}

type GeneratePayrollRequest struct {
	Period string `json:"period" binding:"required"`
}

// @Summary List Payrolls
// @Tags Payroll
// @Produce json
// @Param period query string false "Period (YYYY-MM)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payrolls [get]
func (h *PayrollHandler) Index(c *gin.Context) {
	payrolls, err := h.payrollService.List(c.Request.Context(), middleware.GetTenantID(c), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payrolls": payrolls, "total": len(payrolls)})
}

// @Summary Get Payroll
// @Tags Payroll
// @Produce json
// @Param payroll_id path int true "Payroll ID"
// @Success 200 {object} models.Payroll
// @Security BearerAuth
// @Router /payrolls/{payroll_id} [get]
func (h *PayrollHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "payroll_id")
	if !ok {
		return
	}
	payroll, err := h.payrollService.FindByID(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}

// @Summary Generate Payroll
// @Description Generates the period's payrolls for every eligible employee. Reruns create nothing new.
// @Tags Payroll
// @Accept json
// @Produce json
// @Param request body GeneratePayrollRequest true "Period"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payrolls/generate [post]
func (h *PayrollHandler) Generate(c *gin.Context) {
	var req GeneratePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.payrollService.Generate(c.Request.Context(), actorFrom(c), req.Period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"period": req.Period, "created": len(created), "payrolls": created})
}

// @Summary Update Payroll
// @Description Edits bonus and deductions of a pending payroll and recomputes the net amount
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payroll_id path int true "Payroll ID"
// @Param request body services.UpdatePayrollInput true "Changes"
// @Success 200 {object} models.Payroll
// @Security BearerAuth
// @Router /payrolls/{payroll_id} [put]
func (h *PayrollHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "payroll_id")
	if !ok {
		return
	}
	var req services.UpdatePayrollInput
	if err := BindNestedOrFlat(c, "payroll", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payroll, err := h.payrollService.Update(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}

// @Summary Pay Payroll
// @Tags Payroll
// @Produce json
// @Param payroll_id path int true "Payroll ID"
// @Success 200 {object} models.Payroll
// @Security BearerAuth
// @Router /payrolls/{payroll_id}/pay [post]
func (h *PayrollHandler) Pay(c *gin.Context) {
	id, ok := parseID(c, "payroll_id")
	if !ok {
		return
	}
	payroll, err := h.payrollService.Pay(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}

// @Summary Delete Payroll
// @Description Deletes the payroll together with its linked transaction
// @Tags Payroll
// @Param payroll_id path int true "Payroll ID"
// @Success 204
// @Security BearerAuth
// @Router /payrolls/{payroll_id} [delete]
func (h *PayrollHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "payroll_id")
	if !ok {
		return
	}
	if err := h.payrollService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Export Payroll
// @Description Downloads a period's payrolls as CSV or XLSX
// @Tags Payroll
// @Produce octet-stream
// @Param period query string true "Period (YYYY-MM)"
// @Param format query string false "csv or xlsx" default(xlsx)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /payrolls/export [get]
func (h *PayrollHandler) Export(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	period := c.Query("period")

	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		data, filename, err := h.exportService.ExportPayrollCSV(c.Request.Context(), tenantID, period)
		if err != nil {
			respondError(c, err)
			return
		}
		sendFile(c, "text/csv", filename, data)
	case "xlsx":
		data, filename, err := h.exportService.ExportPayrollXLSX(c.Request.Context(), tenantID, period)
		if err != nil {
			respondError(c, err)
			return
		}
		sendFile(c, xlsxContentType, filename, data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "formato no soportado, use csv o xlsx"})
	}
}

// @Summary Payslip PDF
// @Tags Payroll
// @Produce application/pdf
// @Param payroll_id path int true "Payroll ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /payrolls/{payroll_id}/payslip [get]
func (h *PayrollHandler) Payslip(c *gin.Context) {
	id, ok := parseID(c, "payroll_id")
	if !ok {
		return
	}
	data, filename, err := h.exportService.PayslipPDF(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, "application/pdf", filename, data)
}
