package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payroll is one salary settlement per (tenant, employee, period)
type Payroll struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    uint            `gorm:"not null;uniqueIndex:idx_payroll_tenant_user_period" json:"tenant_id"`
	UserID      uint            `gorm:"not null;uniqueIndex:idx_payroll_tenant_user_period" json:"user_id"`
	Period      string          `gorm:"size:7;not null;uniqueIndex:idx_payroll_tenant_user_period" json:"period"`
	BaseSalary  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"base_salary"`
	Bonus       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"bonus"`
	Deductions  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"deductions"`
	NetSalary   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"net_salary"`
	Status      string          `gorm:"default:PENDING;not null;index" json:"status"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for Payroll
func (Payroll) TableName() string {
	return "payrolls"
}

// Payroll status constants
const (
	PayrollStatusPending = "PENDING"
	PayrollStatusPaid    = "PAID"
)

// RecalculateNet sets NetSalary = BaseSalary + Bonus - Deductions
func (p *Payroll) RecalculateNet() {
	p.NetSalary = p.BaseSalary.Add(p.Bonus).Sub(p.Deductions)
}

// IsPaid returns true once the payroll has been settled
func (p *Payroll) IsPaid() bool {
	return p.Status == PayrollStatusPaid
}

// EmployeeAdvance is cash paid ahead of payroll and netted against a later one
type EmployeeAdvance struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    uint            `gorm:"not null;index" json:"tenant_id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null" json:"date"`
	Description string          `json:"description"`
	IsDeducted  bool            `gorm:"not null;index" json:"is_deducted"`
	PayrollID   *uint           `gorm:"index" json:"payroll_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for EmployeeAdvance
func (EmployeeAdvance) TableName() string {
	return "employee_advances"
}
