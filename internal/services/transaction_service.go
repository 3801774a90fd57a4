package services

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
)

// TransactionService exposes the ledger for reading. Entries are written by the
// recurring, payroll and payment-link flows.
type TransactionService struct {
	repo repository.TransactionRepository
}

func NewTransactionService(repo repository.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

func (s *TransactionService) List(ctx context.Context, tenantID uint, query *repository.ListQuery) ([]models.Transaction, int64, error) {
	return s.repo.ListByTenant(ctx, tenantID, query)
}
