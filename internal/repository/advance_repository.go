package repository

import (
	"context"
	"fmt"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// AdvanceRepository defines the interface for employee advance data access
type AdvanceRepository interface {
	Create(ctx context.Context, advance *models.EmployeeAdvance) error
	FindUndeducted(ctx context.Context, tenantID, userID uint) ([]models.EmployeeAdvance, error)
	FindByPayroll(ctx context.Context, payrollID uint) ([]models.EmployeeAdvance, error)
	MarkDeducted(ctx context.Context, ids []uint, payrollID uint) error
}

type advanceRepository struct {
	db *gorm.DB
}

// NewAdvanceRepository creates a new employee advance repository
func NewAdvanceRepository(db *gorm.DB) AdvanceRepository {
	return &advanceRepository{db: db}
}

func (r *advanceRepository) Create(ctx context.Context, advance *models.EmployeeAdvance) error {
	return r.db.WithContext(ctx).Create(advance).Error
}

func (r *advanceRepository) FindUndeducted(ctx context.Context, tenantID, userID uint) ([]models.EmployeeAdvance, error) {
	var advances []models.EmployeeAdvance
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND is_deducted = ?", tenantID, userID, false).
		Order("date ASC, id ASC").
		Find(&advances).Error
	return advances, err
}

func (r *advanceRepository) FindByPayroll(ctx context.Context, payrollID uint) ([]models.EmployeeAdvance, error) {
	var advances []models.EmployeeAdvance
	err := r.db.WithContext(ctx).
		Where("payroll_id = ?", payrollID).
		Order("date ASC, id ASC").
		Find(&advances).Error
	return advances, err
}

// MarkDeducted flags advances as consumed by a payroll. Rows already deducted are left alone.
func (r *advanceRepository) MarkDeducted(ctx context.Context, ids []uint, payrollID uint) error {
	if len(ids) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.EmployeeAdvance{}).
		Where("id IN ? AND is_deducted = ?", ids, false).
		Updates(map[string]interface{}{
			"is_deducted": true,
			"payroll_id":  payrollID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("advances already deducted by another payroll: marked %d of %d", result.RowsAffected, len(ids))
	}
	return nil
}
