package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ops/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length) and the last run of each tick
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// Trigger starts one of the finance ticks in the background
// @Summary Trigger a tick
// @Description Runs recurring_obligations, invoice_lifecycle or payroll_scheduling now
// @Tags Jobs
// @Produce json
// @Param job_name path string true "Job name"
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /jobs/{job_name}/trigger [post]
func (h *JobHandler) Trigger(c *gin.Context) {
	name := c.Param("job_name")
	if err := h.jobService.Trigger(name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Tarea en ejecución", "job": name})
}
