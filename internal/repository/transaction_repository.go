package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// TransactionRepository defines the interface for ledger transaction data access
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, tenantID, id uint) (*models.Transaction, error)
	FindByPayrollID(ctx context.Context, payrollID uint) (*models.Transaction, error)
	FindByInvoiceID(ctx context.Context, invoiceID uint) ([]models.Transaction, error)
	FindByRecurringID(ctx context.Context, recurringID uint) ([]models.Transaction, error)
	ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.Transaction, int64, error)
	MarkPaid(ctx context.Context, id uint, date time.Time) error
	DeleteByPayrollID(ctx context.Context, payrollID uint) error
}

// transactionRepository handles database operations for ledger transactions
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new ledger transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, tenantID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&tx, id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByPayrollID returns the transaction linked to a payroll, or gorm.ErrRecordNotFound
func (r *transactionRepository) FindByPayrollID(ctx context.Context, payrollID uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("payroll_id = ?", payrollID).
		Order("id ASC").
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) FindByInvoiceID(ctx context.Context, invoiceID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("date ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) FindByRecurringID(ctx context.Context, recurringID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("recurring_transaction_id = ?", recurringID).
		Order("date ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.Transaction, int64, error) {
	var txs []models.Transaction
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("tenant_id = ?", tenantID)
	if query != nil {
		if status := query.Filters["status"]; status != "" {
			db = db.Where("status = ?", status)
		}
		if txType := query.Filters["type"]; txType != "" {
			db = db.Where("type = ?", txType)
		}
		if from := query.Filters["start_date"]; from != "" {
			if t, err := time.Parse("2006-01-02", from); err == nil {
				db = db.Where("date >= ?", t)
			}
		}
		if to := query.Filters["end_date"]; to != "" {
			if t, err := time.Parse("2006-01-02", to); err == nil {
				db = db.Where("date < ?", t.AddDate(0, 0, 1))
			}
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := sortOrder(query, map[string]string{
		"date":   "date",
		"amount": "amount",
	}, "date DESC")

	err := paginate(db, query).Order(order).Find(&txs).Error
	return txs, total, err
}

// MarkPaid flips a transaction to PAID and moves its date; amount and category stay untouched
func (r *transactionRepository) MarkPaid(ctx context.Context, id uint, date time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": models.TransactionStatusPaid,
			"date":   date,
		}).Error
}

func (r *transactionRepository) DeleteByPayrollID(ctx context.Context, payrollID uint) error {
	return r.db.WithContext(ctx).
		Where("payroll_id = ?", payrollID).
		Delete(&models.Transaction{}).Error
}
