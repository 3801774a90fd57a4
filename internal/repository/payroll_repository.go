package repository

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// PayrollRepository defines the interface for payroll data access
type PayrollRepository interface {
	Create(ctx context.Context, payroll *models.Payroll) error
	FindByID(ctx context.Context, tenantID, id uint) (*models.Payroll, error)
	ExistsForPeriod(ctx context.Context, tenantID, userID uint, period string) (bool, error)
	ListByPeriod(ctx context.Context, tenantID uint, period string) ([]models.Payroll, error)
	Update(ctx context.Context, payroll *models.Payroll) error
	Delete(ctx context.Context, id uint) error
}

type payrollRepository struct {
	db *gorm.DB
}

// NewPayrollRepository creates a new payroll repository
func NewPayrollRepository(db *gorm.DB) PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) Create(ctx context.Context, payroll *models.Payroll) error {
	return r.db.WithContext(ctx).Omit("User").Create(payroll).Error
}

func (r *payrollRepository) FindByID(ctx context.Context, tenantID, id uint) (*models.Payroll, error) {
	var payroll models.Payroll
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("tenant_id = ?", tenantID).
		First(&payroll, id).Error
	if err != nil {
		return nil, err
	}
	return &payroll, nil
}

func (r *payrollRepository) ExistsForPeriod(ctx context.Context, tenantID, userID uint, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payroll{}).
		Where("tenant_id = ? AND user_id = ? AND period = ?", tenantID, userID, period).
		Count(&count).Error
	return count > 0, err
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, tenantID uint, period string) ([]models.Payroll, error) {
	var payrolls []models.Payroll
	db := r.db.WithContext(ctx).Preload("User").Where("tenant_id = ?", tenantID)
	if period != "" {
		db = db.Where("period = ?", period)
	}
	err := db.Order("period DESC, user_id ASC").Find(&payrolls).Error
	return payrolls, err
}

func (r *payrollRepository) Update(ctx context.Context, payroll *models.Payroll) error {
	return r.db.WithContext(ctx).Omit("User").Save(payroll).Error
}

func (r *payrollRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Payroll{}, id).Error
}
