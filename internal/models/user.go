package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a tenant member: staff (admins, employees) or a client tied to a customer
type User struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TenantID   uint            `gorm:"not null;uniqueIndex:idx_users_tenant_email" json:"tenant_id"`
	Email      string          `gorm:"not null;uniqueIndex:idx_users_tenant_email" json:"email"`
	FullName   string          `json:"full_name"`
	Phone      string          `json:"phone"`
	Role       string          `gorm:"default:employee;not null;index" json:"role"`
	Salary     decimal.Decimal `gorm:"type:decimal(15,2);default:0;not null" json:"salary"`
	Active     bool            `gorm:"not null;index" json:"active"`
	CustomerID *uint           `gorm:"index" json:"customer_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Associations
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleClient   = "client"
)

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleEmployee
	}
	return nil
}

// IsPayrollEligible returns true if the user should receive a payroll record
func (u *User) IsPayrollEligible() bool {
	return u.Active && u.Role != RoleClient && u.Salary.IsPositive()
}

// Customer is the billing counterpart of invoices and client users
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}
