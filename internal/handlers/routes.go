package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes mounts the v1 API on r. A nil callbackLimiter leaves the payment callback unthrottled.
func (h *Handlers) RegisterRoutes(r gin.IRouter, jwtSecret string, callbackLimiter *limiter.Limiter) {
	v1 := r.Group("/api/v1")

	// Public routes
	v1.GET("/health", h.Health.Index)
	callback := []gin.HandlerFunc{h.Invoice.PaymentCallback}
	if callbackLimiter != nil {
		callback = append([]gin.HandlerFunc{middleware.RateLimit(callbackLimiter)}, callback...)
	}
	v1.POST("/payments/callback", callback...)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtSecret))
	{
		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.Notification.Index)
			notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
			notifications.GET("/:notification_id", h.Notification.Show)
			notifications.PUT("/:notification_id", h.Notification.Update)
		}
	}

	// Admin routes
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		users := admin.Group("/users")
		{
			users.GET("", h.User.Index)
			users.POST("", h.User.Create)
			users.GET("/:user_id", h.User.Show)
			users.PUT("/:user_id/salary", h.User.UpdateSalary)
			users.POST("/:user_id/deactivate", h.User.Deactivate)
			users.POST("/:user_id/advances", h.User.RecordAdvance)
		}

		customers := admin.Group("/customers")
		{
			customers.GET("", h.Customer.Index)
			customers.POST("", h.Customer.Create)
			customers.GET("/:customer_id", h.Customer.Show)
		}

		tenant := admin.Group("/tenant")
		{
			tenant.GET("/payroll_settings", h.Tenant.PayrollSettings)
			tenant.PUT("/payroll_settings", h.Tenant.UpdatePayrollSettings)
			tenant.PUT("/payment_config", h.Tenant.SavePaymentConfig)
		}

		recurring := admin.Group("/recurring")
		{
			recurring.GET("", h.Recurring.Index)
			recurring.POST("", h.Recurring.Create)
			recurring.GET("/:recurring_id", h.Recurring.Show)
			recurring.PUT("/:recurring_id/active", h.Recurring.SetActive)
			recurring.DELETE("/:recurring_id", h.Recurring.Delete)
		}

		invoices := admin.Group("/invoices")
		{
			invoices.GET("", h.Invoice.Index)
			invoices.POST("", h.Invoice.Create)
			invoices.GET("/:invoice_id", h.Invoice.Show)
			invoices.PUT("/:invoice_id", h.Invoice.Update)
			invoices.POST("/:invoice_id/cancel", h.Invoice.Cancel)
			invoices.POST("/:invoice_id/payment_link", h.Invoice.PaymentLink)
		}

		admin.GET("/transactions", h.Transaction.Index)

		payrolls := admin.Group("/payrolls")
		{
			payrolls.GET("", h.Payroll.Index)
			payrolls.POST("/generate", h.Payroll.Generate)
			payrolls.GET("/export", h.Payroll.Export)
			payrolls.GET("/:payroll_id", h.Payroll.Show)
			payrolls.PUT("/:payroll_id", h.Payroll.Update)
			payrolls.POST("/:payroll_id/pay", h.Payroll.Pay)
			payrolls.DELETE("/:payroll_id", h.Payroll.Delete)
			payrolls.GET("/:payroll_id/payslip", h.Payroll.Payslip)
		}

		admin.GET("/audits", h.Audit.Index)
		admin.GET("/analytics/summary", h.Analytics.Summary)

		jobs := admin.Group("/jobs")
		{
			jobs.GET("/status", h.Job.Status)
			jobs.POST("/:job_name/trigger", h.Job.Trigger)
		}
	}
}
