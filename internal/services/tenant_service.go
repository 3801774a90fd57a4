package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"gorm.io/gorm"
)

// TenantService manages per-tenant finance configuration
type TenantService struct {
	repos *repository.Repositories
	audit *AuditService
}

func NewTenantService(repos *repository.Repositories, audit *AuditService) *TenantService {
	return &TenantService{repos: repos, audit: audit}
}

// PaymentConfigInput holds the merchant credentials for payment links
type PaymentConfigInput struct {
	Provider   string `json:"provider" binding:"required"`
	MerchantID string `json:"merchant_id" binding:"required"`
	APIKey     string `json:"api_key"`
	Currency   string `json:"currency"`
	Active     bool   `json:"active"`
}

func (s *TenantService) GetPayrollSettings(ctx context.Context, tenantID uint) (models.PayrollSettings, error) {
	tenant, err := s.repos.Tenant.FindByID(ctx, tenantID)
	if err != nil {
		return models.PayrollSettings{}, mapStoreError(err, "tenant")
	}
	return tenant.PayrollSettings(), nil
}

// UpdatePayrollSettings stores the settings after clamping them and returns what was stored
func (s *TenantService) UpdatePayrollSettings(ctx context.Context, actor Actor, settings models.PayrollSettings) (models.PayrollSettings, error) {
	tenant, err := s.repos.Tenant.FindByID(ctx, actor.TenantID)
	if err != nil {
		return models.PayrollSettings{}, mapStoreError(err, "tenant")
	}
	tenant.ApplyPayrollSettings(settings)
	if err := s.repos.Tenant.Update(ctx, tenant); err != nil {
		return models.PayrollSettings{}, err
	}
	stored := tenant.PayrollSettings()
	s.audit.Logf(ctx, actor, AuditActionUpdate, "Tenant", tenant.ID,
		"payment_day=%d visibility=%d window=%d-%d auto=%t",
		stored.PaymentDay, stored.ExpenseVisibilityDaysBefore, stored.CalculationStartDay, stored.CalculationEndDay, stored.AutoGenerate)
	return stored, nil
}

// SavePaymentConfig creates or replaces the tenant's payment-link merchant configuration.
// An empty APIKey keeps the stored one.
func (s *TenantService) SavePaymentConfig(ctx context.Context, actor Actor, in PaymentConfigInput) (*models.PaymentProviderConfig, error) {
	cfg, err := s.repos.Tenant.FindPaymentConfig(ctx, actor.TenantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if cfg == nil {
		cfg = &models.PaymentProviderConfig{TenantID: actor.TenantID}
	}
	if in.APIKey != "" {
		cfg.APIKey = in.APIKey
	}
	if cfg.APIKey == "" {
		return nil, validationError("api_key es requerido")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency != "" && len(currency) != 3 {
		return nil, validationError("la moneda debe ser un código ISO de 3 letras")
	}
	cfg.Provider = in.Provider
	cfg.MerchantID = in.MerchantID
	cfg.Currency = currency
	cfg.Active = in.Active

	if err := s.repos.Tenant.SavePaymentConfig(ctx, cfg); err != nil {
		return nil, err
	}
	s.audit.Logf(ctx, actor, AuditActionUpdate, "PaymentProviderConfig", cfg.ID, "provider=%s active=%t", cfg.Provider, cfg.Active)
	return cfg, nil
}
