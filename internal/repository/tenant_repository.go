package repository

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Tenant, error)
	FindActive(ctx context.Context) ([]models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	FindPaymentConfig(ctx context.Context, tenantID uint) (*models.PaymentProviderConfig, error)
	SavePaymentConfig(ctx context.Context, cfg *models.PaymentProviderConfig) error
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) FindByID(ctx context.Context, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindActive(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.WithContext(ctx).
		Where("status = ?", models.TenantStatusActive).
		Order("id ASC").
		Find(&tenants).Error
	return tenants, err
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

func (r *tenantRepository) FindPaymentConfig(ctx context.Context, tenantID uint) (*models.PaymentProviderConfig, error) {
	var cfg models.PaymentProviderConfig
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *tenantRepository) SavePaymentConfig(ctx context.Context, cfg *models.PaymentProviderConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
