package repository

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// AuditRepository defines the interface for audit log data access
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.AuditLog{}).Where("tenant_id = ?", tenantID)
	if query != nil && query.Filters["entity"] != "" {
		db = db.Where("entity = ?", query.Filters["entity"])
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := paginate(db, query).Order("created_at DESC").Find(&logs).Error
	return logs, total, err
}
