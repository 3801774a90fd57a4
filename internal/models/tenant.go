package models

import (
	"time"
)

// Tenant represents an isolated customer organization. Payroll calendar settings live on the tenant row.
type Tenant struct {
	ID                          uint      `gorm:"primaryKey" json:"id"`
	Name                        string    `gorm:"not null" json:"name"`
	Status                      string    `gorm:"default:active;not null;index" json:"status"`
	CalculationStartDay         int       `gorm:"default:1;not null" json:"calculation_start_day"`
	CalculationEndDay           int       `gorm:"default:31;not null" json:"calculation_end_day"`
	PaymentDay                  int       `gorm:"default:1;not null" json:"payment_day"`
	ExpenseVisibilityDaysBefore int       `gorm:"default:0;not null" json:"expense_visibility_days_before"`
	AutoGeneratePayroll         *bool     `gorm:"default:true" json:"auto_generate_payroll"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Tenant
func (Tenant) TableName() string {
	return "tenants"
}

// Tenant status constants
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// PayrollSettings is the calendar configuration the payroll scheduler runs on
type PayrollSettings struct {
	CalculationStartDay         int  `json:"calculation_start_day"`
	CalculationEndDay           int  `json:"calculation_end_day"`
	PaymentDay                  int  `json:"payment_day"`
	ExpenseVisibilityDaysBefore int  `json:"expense_visibility_days_before"`
	AutoGenerate                bool `json:"auto_generate"`
}

// PayrollSettings returns the tenant's payroll calendar. AutoGenerate defaults to true when unset.
func (t *Tenant) PayrollSettings() PayrollSettings {
	autoGenerate := true
	if t.AutoGeneratePayroll != nil {
		autoGenerate = *t.AutoGeneratePayroll
	}
	return PayrollSettings{
		CalculationStartDay:         t.CalculationStartDay,
		CalculationEndDay:           t.CalculationEndDay,
		PaymentDay:                  t.PaymentDay,
		ExpenseVisibilityDaysBefore: t.ExpenseVisibilityDaysBefore,
		AutoGenerate:                autoGenerate,
	}
}

// ApplyPayrollSettings writes settings onto the tenant after clamping them
func (t *Tenant) ApplyPayrollSettings(s PayrollSettings) {
	s = s.Normalize()
	t.CalculationStartDay = s.CalculationStartDay
	t.CalculationEndDay = s.CalculationEndDay
	t.PaymentDay = s.PaymentDay
	t.ExpenseVisibilityDaysBefore = s.ExpenseVisibilityDaysBefore
	autoGenerate := s.AutoGenerate
	t.AutoGeneratePayroll = &autoGenerate
}

// Normalize clamps day values to [1,31], the visibility lead time to [0,31]
// and raises the calculation end day to at least the start day.
func (s PayrollSettings) Normalize() PayrollSettings {
	s.CalculationStartDay = clamp(s.CalculationStartDay, 1, 31)
	s.CalculationEndDay = clamp(s.CalculationEndDay, 1, 31)
	s.PaymentDay = clamp(s.PaymentDay, 1, 31)
	s.ExpenseVisibilityDaysBefore = clamp(s.ExpenseVisibilityDaysBefore, 0, 31)
	if s.CalculationEndDay < s.CalculationStartDay {
		s.CalculationEndDay = s.CalculationStartDay
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PaymentProviderConfig holds a tenant's merchant credentials for the payment-link gateway
type PaymentProviderConfig struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TenantID   uint      `gorm:"not null;uniqueIndex" json:"tenant_id"`
	Provider   string    `gorm:"not null" json:"provider"`
	MerchantID string    `gorm:"not null" json:"merchant_id"`
	APIKey     string    `gorm:"not null" json:"-"`
	Currency   string    `gorm:"size:3" json:"currency"`
	Active     bool      `gorm:"default:false;not null" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for PaymentProviderConfig
func (PaymentProviderConfig) TableName() string {
	return "payment_provider_configs"
}
