package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/jobs"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/services"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	User         *UserHandler
	Customer     *CustomerHandler
	Tenant       *TenantHandler
	Recurring    *RecurringHandler
	Invoice      *InvoiceHandler
	Transaction  *TransactionHandler
	Payroll      *PayrollHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
	Analytics    *AnalyticsHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		User:         NewUserHandler(svcs.User, svcs.Payroll),
		Customer:     NewCustomerHandler(svcs.Customer),
		Tenant:       NewTenantHandler(svcs.Tenant),
		Recurring:    NewRecurringHandler(svcs.Recurring),
		Invoice:      NewInvoiceHandler(svcs.Invoice, svcs.PaymentLink),
		Transaction:  NewTransactionHandler(svcs.Transaction),
		Payroll:      NewPayrollHandler(svcs.Payroll, svcs.Export),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
		Analytics:    NewAnalyticsHandler(svcs.Analytics),
	}
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health Check
// @Description Checks if the API is running
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "fintera-ops",
		"version": "1.0.0",
	})
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrPaymentConfigInactive),
		errors.Is(err, services.ErrMissingCustomerEmail):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrDuplicate),
		errors.Is(err, jobs.ErrJobRunning):
		status = http.StatusConflict
	case errors.Is(err, services.ErrPaymentProvider):
		status = http.StatusBadGateway
	case errors.Is(err, jobs.ErrUnknownJob):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidSignature):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Error interno del servidor"})
		return
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// actorFrom builds the audit actor of the authenticated request
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		TenantID:  middleware.GetTenantID(c),
		UserID:    middleware.GetUserID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// parseID reads a positive numeric path parameter. It writes a 400 and returns false on failure.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return 0, false
	}
	return uint(id), true
}

// listQuery reads page, per_page, sort and the allowed filters from the query string
func listQuery(c *gin.Context, filters ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 {
		query.PerPage = perPage
	}
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	for _, key := range filters {
		if value := strings.TrimSpace(c.Query(key)); value != "" {
			query.Filters[key] = value
		}
	}
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":     query.Page,
		"per_page": query.PerPage,
		"total":    total,
	}
}

// parseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// An empty value yields the zero time.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("fecha inválida, use el formato YYYY-MM-DD")
	}
	return calendar.DateOnly(t), nil
}

// sendFile writes a generated document as an attachment
func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
