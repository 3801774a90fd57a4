package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrStaleWrite is returned by conditional updates when the row no longer holds the value it was read with
var ErrStaleWrite = errors.New("record changed since it was read")

// Repositories holds all repository instances
type Repositories struct {
	db *gorm.DB

	Tenant          TenantRepository
	User            UserRepository
	Customer        CustomerRepository
	Recurring       RecurringTransactionRepository
	Transaction     TransactionRepository
	Invoice         InvoiceRepository
	InvoicePayment  InvoicePaymentRepository
	InvoiceReminder InvoiceReminderRepository
	Payroll         PayrollRepository
	Advance         AdvanceRepository
	Notification    NotificationRepository
	Audit           AuditRepository
	Analytics       AnalyticsRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:              db,
		Tenant:          NewTenantRepository(db),
		User:            NewUserRepository(db),
		Customer:        NewCustomerRepository(db),
		Recurring:       NewRecurringTransactionRepository(db),
		Transaction:     NewTransactionRepository(db),
		Invoice:         NewInvoiceRepository(db),
		InvoicePayment:  NewInvoicePaymentRepository(db),
		InvoiceReminder: NewInvoiceReminderRepository(db),
		Payroll:         NewPayrollRepository(db),
		Advance:         NewAdvanceRepository(db),
		Notification:    NewNotificationRepository(db),
		Audit:           NewAuditRepository(db),
		Analytics:       NewAnalyticsRepository(db),
	}
}

// WithTransaction runs fn inside a database transaction. The repositories handed to fn
// are bound to that transaction; returning an error rolls every write back.
func (r *Repositories) WithTransaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// paginate applies page/per_page bounds to a query
func paginate(db *gorm.DB, query *ListQuery) *gorm.DB {
	if query == nil {
		return db
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	perPage := query.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return db.Offset((page - 1) * perPage).Limit(perPage)
}

// sortOrder builds an ORDER BY clause from a whitelist of sortable columns
func sortOrder(query *ListQuery, allowed map[string]string, fallback string) string {
	if query == nil || query.SortBy == "" {
		return fallback
	}
	column, ok := allowed[query.SortBy]
	if !ok {
		return fallback
	}
	if query.SortDir == "asc" {
		return column + " ASC"
	}
	return column + " DESC"
}
