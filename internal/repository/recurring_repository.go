package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// RecurringTransactionRepository defines the interface for recurring obligation data access
type RecurringTransactionRepository interface {
	Create(ctx context.Context, recurring *models.RecurringTransaction) error
	FindByID(ctx context.Context, tenantID, id uint) (*models.RecurringTransaction, error)
	FindActive(ctx context.Context) ([]models.RecurringTransaction, error)
	ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.RecurringTransaction, int64, error)
	AdvanceNextDueDate(ctx context.Context, recurring *models.RecurringTransaction, previous time.Time) error
	Update(ctx context.Context, recurring *models.RecurringTransaction) error
	Delete(ctx context.Context, tenantID, id uint) error
}

type recurringTransactionRepository struct {
	db *gorm.DB
}

// NewRecurringTransactionRepository creates a new recurring obligation repository
func NewRecurringTransactionRepository(db *gorm.DB) RecurringTransactionRepository {
	return &recurringTransactionRepository{db: db}
}

func (r *recurringTransactionRepository) Create(ctx context.Context, recurring *models.RecurringTransaction) error {
	return r.db.WithContext(ctx).Create(recurring).Error
}

func (r *recurringTransactionRepository) FindByID(ctx context.Context, tenantID, id uint) (*models.RecurringTransaction, error) {
	var recurring models.RecurringTransaction
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&recurring, id).Error
	if err != nil {
		return nil, err
	}
	return &recurring, nil
}

// FindActive returns the active obligations of every tenant, oldest due first
func (r *recurringTransactionRepository) FindActive(ctx context.Context) ([]models.RecurringTransaction, error) {
	var items []models.RecurringTransaction
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("tenant_id ASC, next_due_date ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *recurringTransactionRepository) ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.RecurringTransaction, int64, error) {
	var items []models.RecurringTransaction
	var total int64

	db := r.db.WithContext(ctx).Model(&models.RecurringTransaction{}).Where("tenant_id = ?", tenantID)
	if query != nil {
		if active := query.Filters["active"]; active != "" {
			db = db.Where("active = ?", active == "true")
		}
		if txType := query.Filters["type"]; txType != "" {
			db = db.Where("type = ?", txType)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := sortOrder(query, map[string]string{
		"next_due_date": "next_due_date",
		"amount":        "amount",
		"created_at":    "created_at",
	}, "next_due_date ASC")

	err := paginate(db, query).Order(order).Find(&items).Error
	return items, total, err
}

// AdvanceNextDueDate moves the next-due column from previous to recurring.NextDueDate.
// It returns ErrStaleWrite when the stored value is no longer previous.
func (r *recurringTransactionRepository) AdvanceNextDueDate(ctx context.Context, recurring *models.RecurringTransaction, previous time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.RecurringTransaction{}).
		Where("id = ? AND tenant_id = ? AND next_due_date = ?", recurring.ID, recurring.TenantID, previous).
		Update("next_due_date", recurring.NextDueDate)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return ErrStaleWrite
	}
	return nil
}

func (r *recurringTransactionRepository) Update(ctx context.Context, recurring *models.RecurringTransaction) error {
	return r.db.WithContext(ctx).Save(recurring).Error
}

func (r *recurringTransactionRepository) Delete(ctx context.Context, tenantID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.RecurringTransaction{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
