package services

import (
	"github.com/sjperalta/fintera-ops/internal/config"
	"github.com/sjperalta/fintera-ops/internal/jobs"
	"github.com/sjperalta/fintera-ops/internal/payments"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/sms"
)

// Services holds all service instances
type Services struct {
	User             *UserService
	Customer         *CustomerService
	Tenant           *TenantService
	Recurring        *RecurringService
	Invoice          *InvoiceService
	Transaction      *TransactionService
	InvoiceMonitor   *InvoiceMonitorService
	PaymentLink      *PaymentLinkService
	Payroll          *PayrollService
	PayrollScheduler *PayrollSchedulerService
	Notification     *NotificationService
	Audit            *AuditService
	Email            *EmailService
	Export           *ExportService
	Analytics        *AnalyticsService
	Job              *JobService
}

// Dependencies are the external collaborators the services talk to
type Dependencies struct {
	Provider payments.Provider
	SMS      sms.Dispatcher
	Clock    Clock
}

// DefaultDependencies builds the production collaborators from configuration
func DefaultDependencies(cfg *config.Config) Dependencies {
	return Dependencies{
		Provider: payments.NewHTTPProvider(cfg.PaymentProviderURL, cfg.PaymentProviderTimeout),
		SMS:      sms.NewLogDispatcher(),
		Clock:    NewClock(cfg.Location),
	}
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, deps Dependencies) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(repos.Audit)
	clock := deps.Clock

	payrollSvc := NewPayrollService(repos, notificationSvc, emailSvc, auditSvc, worker, clock)

	svcs := &Services{
		User:             NewUserService(repos, auditSvc, clock),
		Customer:         NewCustomerService(repos.Customer, auditSvc),
		Tenant:           NewTenantService(repos, auditSvc),
		Recurring:        NewRecurringService(repos, auditSvc, clock, cfg.RecurringStrictCatchUp),
		Invoice:          NewInvoiceService(repos, auditSvc, clock),
		Transaction:      NewTransactionService(repos.Transaction),
		InvoiceMonitor:   NewInvoiceMonitorService(repos, notificationSvc, deps.SMS, clock),
		PaymentLink:      NewPaymentLinkService(repos, deps.Provider, emailSvc, notificationSvc, auditSvc, worker, clock, cfg.PaymentCallbackURL, cfg.DefaultCurrency),
		Payroll:          payrollSvc,
		PayrollScheduler: NewPayrollSchedulerService(repos, payrollSvc, notificationSvc, clock),
		Notification:     notificationSvc,
		Audit:            auditSvc,
		Email:            emailSvc,
		Export:           NewExportService(repos),
		Analytics:        NewAnalyticsService(repos.Analytics, clock),
		Job:              NewJobService(worker),
	}
	svcs.Job.RegisterTicks(svcs)
	return svcs
}
