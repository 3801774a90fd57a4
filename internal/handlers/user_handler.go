package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/services"
)

type UserHandler struct {
	userService    *services.UserService
	payrollService *services.PayrollService
}

func NewUserHandler(userService *services.UserService, payrollService *services.PayrollService) *UserHandler {
	return &UserHandler{userService: userService, payrollService: payrollService}
}

type UpdateSalaryRequest struct {
	Salary decimal.Decimal `json:"salary"`
}

type AdvanceRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

// @Summary List Users
// @Description Get a paginated list of the tenant's users
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param role query string false "Role filter"
// @Param active query bool false "Active filter"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) Index(c *gin.Context) {
	query := listQuery(c, "role", "active")
	users, total, err := h.userService.List(c.Request.Context(), middleware.GetTenantID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "pagination": pagination(query, total)})
}

// @Summary Get User
// @Tags Users
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /users/{user_id} [get]
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	user, err := h.userService.FindByID(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// @Summary Create User
// @Description Create an employee, admin or client user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body services.CreateUserInput true "User Data"
// @Success 201 {object} models.User
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserInput
	if err := BindNestedOrFlat(c, "user", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userService.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// @Summary Update Salary
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body UpdateSalaryRequest true "Salary"
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /users/{user_id}/salary [put]
func (h *UserHandler) UpdateSalary(c *gin.Context) {
	id, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	var req UpdateSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userService.UpdateSalary(c.Request.Context(), actorFrom(c), id, req.Salary)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// @Summary Deactivate Employee
// @Description Deactivates an employee and settles their final payroll
// @Tags Users
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} services.TerminationResult
// @Security BearerAuth
// @Router /users/{user_id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	result, err := h.userService.Deactivate(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Record Advance
// @Description Records a salary advance deducted from the next payroll
// @Tags Users
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body AdvanceRequest true "Advance"
// @Success 201 {object} models.EmployeeAdvance
// @Security BearerAuth
// @Router /users/{user_id}/advances [post]
func (h *UserHandler) RecordAdvance(c *gin.Context) {
	id, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	var req AdvanceRequest
	if err := BindNestedOrFlat(c, "advance", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	advance, err := h.payrollService.RecordAdvance(c.Request.Context(), actorFrom(c), id, req.Amount, date, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"advance": advance})
}
