package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// Audit actions
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionPay        = "PAY"
	AuditActionDeactivate = "DEACTIVATE"
	AuditActionCancel     = "CANCEL"
	AuditActionGenerate   = "GENERATE"
	AuditActionLink       = "PAYMENT_LINK"
)

// Actor identifies who performs an explicit operation
type Actor struct {
	TenantID  uint
	UserID    uint
	IP        string
	UserAgent string
}

// SystemActor is used for operations started by the scheduler
func SystemActor(tenantID uint) Actor {
	return Actor{TenantID: tenantID, UserAgent: "scheduler"}
}

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry. Audit failures are logged and swallowed.
func (s *AuditService) Log(ctx context.Context, actor Actor, action, entity string, entityID uint, details string) {
	entry := &models.AuditLog{
		TenantID:  actor.TenantID,
		UserID:    actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.WithTenant(actor.TenantID).Error("Failed to write audit log",
			"action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// Logf is Log with a formatted details string
func (s *AuditService) Logf(ctx context.Context, actor Actor, action, entity string, entityID uint, format string, args ...interface{}) {
	s.Log(ctx, actor, action, entity, entityID, fmt.Sprintf(format, args...))
}

// List retrieves a tenant's audit logs
func (s *AuditService) List(ctx context.Context, tenantID uint, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.ListByTenant(ctx, tenantID, query)
}
