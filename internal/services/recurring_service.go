package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// TickSummary reports what one pass of a scheduled tick did
type TickSummary struct {
	Scanned   int `json:"scanned"`
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// RecurringService materializes recurring obligations into ledger transactions
type RecurringService struct {
	repos  *repository.Repositories
	audit  *AuditService
	clock  Clock
	strict bool
}

// NewRecurringService creates the processor. With strictCatchUp a due obligation is
// materialized repeatedly until its next-due date is in the future; otherwise each
// call advances it by exactly one interval.
func NewRecurringService(repos *repository.Repositories, audit *AuditService, clock Clock, strictCatchUp bool) *RecurringService {
	return &RecurringService{repos: repos, audit: audit, clock: clock, strict: strictCatchUp}
}

// CreateRecurringInput holds the fields of a new obligation
type CreateRecurringInput struct {
	Type               string          `json:"type" binding:"required"`
	Category           string          `json:"category" binding:"required"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Interval           string          `json:"interval" binding:"required"`
	NextDueDate        time.Time       `json:"next_due_date"`
	CustomerID         *uint           `json:"customer_id"`
	ProcessImmediately bool            `json:"process_immediately"`
}

// ProcessIfDue materializes one due occurrence of r and advances its next-due date.
// It returns the number of transactions created (0 when not due).
func (s *RecurringService) ProcessIfDue(ctx context.Context, r *models.RecurringTransaction) (int, error) {
	today := s.clock.Today()
	if !r.IsDue(today) {
		return 0, nil
	}

	original := r.NextDueDate
	created := 0
	err := s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		for {
			recurringID := r.ID
			txn := &models.Transaction{
				TenantID:               r.TenantID,
				Type:                   r.Type,
				Category:               r.Category,
				Amount:                 r.Amount,
				Description:            r.TransactionDescription(),
				Date:                   calendar.DateOnly(today),
				Status:                 models.TransactionStatusPaid,
				CustomerID:             r.CustomerID,
				RecurringTransactionID: &recurringID,
			}
			if err := tx.Transaction.Create(ctx, txn); err != nil {
				return fmt.Errorf("failed to create transaction: %w", err)
			}

			next, err := calendar.AddInterval(r.NextDueDate, r.Interval)
			if err != nil {
				return err
			}
			r.NextDueDate = next
			created++

			if !s.strict || !r.IsDue(today) {
				break
			}
		}
		return tx.Recurring.AdvanceNextDueDate(ctx, r, original)
	})
	if errors.Is(err, repository.ErrStaleWrite) {
		// another run already materialized this occurrence; its writes stand and ours rolled back
		r.NextDueDate = original
		logger.WithTenant(r.TenantID).Info("[Recurring] Obligation already advanced by a concurrent run",
			"recurring_id", r.ID)
		return 0, nil
	}
	if err != nil {
		r.NextDueDate = original
		return 0, err
	}
	return created, nil
}

// TickRecurringObligations processes every active obligation across tenants.
// A failing obligation is logged and skipped; the rest of the batch still runs.
func (s *RecurringService) TickRecurringObligations(ctx context.Context) (TickSummary, error) {
	var summary TickSummary

	obligations, err := s.repos.Recurring.FindActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load recurring obligations: %w", err)
	}
	summary.Scanned = len(obligations)

	for i := range obligations {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		r := &obligations[i]
		created, err := s.ProcessIfDue(ctx, r)
		if err != nil {
			summary.Failed++
			logger.WithTenant(r.TenantID).Error("[Recurring] Failed to process obligation",
				"recurring_id", r.ID, "error", err)
			continue
		}
		if created > 0 {
			summary.Processed++
			summary.Created += created
			logger.WithTenant(r.TenantID).Info("[Recurring] Obligation materialized",
				"recurring_id", r.ID, "transactions", created, "next_due_date", r.NextDueDate.Format("2006-01-02"))
		}
	}

	return summary, nil
}

// Tick adapts TickRecurringObligations to the worker's job signature
func (s *RecurringService) Tick(ctx context.Context) error {
	summary, err := s.TickRecurringObligations(ctx)
	if err != nil {
		return err
	}
	logger.Info("[Recurring] Tick finished", "scanned", summary.Scanned, "processed", summary.Processed,
		"created", summary.Created, "failed", summary.Failed)
	return nil
}

// Create validates and stores a new active obligation, optionally running the due check right away
func (s *RecurringService) Create(ctx context.Context, actor Actor, in CreateRecurringInput) (*models.RecurringTransaction, error) {
	txType := strings.ToUpper(strings.TrimSpace(in.Type))
	interval := strings.ToUpper(strings.TrimSpace(in.Interval))

	if !models.ValidTransactionType(txType) {
		return nil, validationError("tipo debe ser INCOME o EXPENSE")
	}
	if !calendar.ValidInterval(interval) {
		return nil, validationError("intervalo debe ser DAILY, WEEKLY, MONTHLY o YEARLY")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, validationError("la categoría es requerida")
	}
	if !in.Amount.IsPositive() {
		return nil, validationError("el monto debe ser mayor que cero")
	}
	if in.NextDueDate.IsZero() {
		return nil, validationError("la próxima fecha de vencimiento es requerida")
	}
	if in.CustomerID != nil {
		if _, err := s.repos.Customer.FindByID(ctx, actor.TenantID, *in.CustomerID); err != nil {
			return nil, mapStoreError(err, "customer")
		}
	}

	r := &models.RecurringTransaction{
		TenantID:    actor.TenantID,
		Type:        txType,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount.Round(2),
		Interval:    interval,
		NextDueDate: calendar.DateOnly(in.NextDueDate),
		Active:      true,
		CustomerID:  in.CustomerID,
	}
	if err := s.repos.Recurring.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create recurring obligation: %w", err)
	}
	s.audit.Logf(ctx, actor, AuditActionCreate, "RecurringTransaction", r.ID, "%s %s %s", r.Type, r.Amount.StringFixed(2), r.Interval)

	if in.ProcessImmediately {
		if _, err := s.ProcessIfDue(ctx, r); err != nil {
			return r, fmt.Errorf("obligation created but first occurrence failed: %w", err)
		}
	}
	return r, nil
}

// SetActive toggles an obligation. Reactivation requires a next-due date.
func (s *RecurringService) SetActive(ctx context.Context, actor Actor, id uint, active bool) (*models.RecurringTransaction, error) {
	r, err := s.repos.Recurring.FindByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, mapStoreError(err, "recurring transaction")
	}
	if r.Active == active {
		return r, nil
	}
	if active && r.NextDueDate.IsZero() {
		return nil, validationError("la próxima fecha de vencimiento es requerida para reactivar")
	}
	r.Active = active
	if err := s.repos.Recurring.Update(ctx, r); err != nil {
		return nil, err
	}
	s.audit.Logf(ctx, actor, AuditActionUpdate, "RecurringTransaction", r.ID, "active=%t", active)
	return r, nil
}

// Delete physically removes an obligation. Transactions it already produced stay in the ledger.
func (s *RecurringService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.repos.Recurring.Delete(ctx, actor.TenantID, id); err != nil {
		return mapStoreError(err, "recurring transaction")
	}
	s.audit.Log(ctx, actor, AuditActionDelete, "RecurringTransaction", id, "")
	return nil
}

func (s *RecurringService) FindByID(ctx context.Context, tenantID, id uint) (*models.RecurringTransaction, error) {
	r, err := s.repos.Recurring.FindByID(ctx, tenantID, id)
	return r, mapStoreError(err, "recurring transaction")
}

func (s *RecurringService) List(ctx context.Context, tenantID uint, query *repository.ListQuery) ([]models.RecurringTransaction, int64, error) {
	return s.repos.Recurring.ListByTenant(ctx, tenantID, query)
}
