package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// AnalyticsRepository runs the aggregate queries behind the ledger summary
type AnalyticsRepository interface {
	SumLedger(ctx context.Context, tenantID uint, from, to time.Time) ([]models.LedgerTotal, error)
	Receivables(ctx context.Context, tenantID uint) ([]models.ReceivableBucket, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// SumLedger totals transactions dated in [from, to) by type and status
func (r *analyticsRepository) SumLedger(ctx context.Context, tenantID uint, from, to time.Time) ([]models.LedgerTotal, error) {
	var totals []models.LedgerTotal
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("type, status, COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND date >= ? AND date < ?", tenantID, from, to).
		Group("type, status").
		Scan(&totals).Error
	return totals, err
}

// Receivables counts and totals the invoices still awaiting payment
func (r *analyticsRepository) Receivables(ctx context.Context, tenantID uint) ([]models.ReceivableBucket, error) {
	var buckets []models.ReceivableBucket
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("tenant_id = ? AND status IN ?", tenantID, []string{
			models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusOverdue,
		}).
		Group("status").
		Order("status").
		Scan(&buckets).Error
	return buckets, err
}
