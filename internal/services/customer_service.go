package services

import (
	"context"
	"strings"

	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
)

type CustomerService struct {
	repo  repository.CustomerRepository
	audit *AuditService
}

func NewCustomerService(repo repository.CustomerRepository, audit *AuditService) *CustomerService {
	return &CustomerService{repo: repo, audit: audit}
}

// CustomerInput holds the fields of a new customer
type CustomerInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

func (s *CustomerService) Create(ctx context.Context, actor Actor, in CustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationError("el nombre es requerido")
	}
	customer := &models.Customer{
		TenantID: actor.TenantID,
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:    strings.TrimSpace(in.Phone),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	s.audit.Logf(ctx, actor, AuditActionCreate, "Customer", customer.ID, "Cliente creado: %s", customer.Name)
	return customer, nil
}

func (s *CustomerService) FindByID(ctx context.Context, tenantID, id uint) (*models.Customer, error) {
	c, err := s.repo.FindByID(ctx, tenantID, id)
	return c, mapStoreError(err, "customer")
}

func (s *CustomerService) List(ctx context.Context, tenantID uint, query *repository.ListQuery) ([]models.Customer, int64, error) {
	return s.repo.ListByTenant(ctx, tenantID, query)
}
