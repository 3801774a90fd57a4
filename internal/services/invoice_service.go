package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/statemachine"
)

// InvoiceItemInput is one billed line as submitted by the user
type InvoiceItemInput struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceInput holds the fields of a new invoice
type CreateInvoiceInput struct {
	CustomerID uint               `json:"customer_id" binding:"required"`
	Number     string             `json:"number"`
	TaxRate    decimal.Decimal    `json:"tax_rate"`
	IssueDate  time.Time          `json:"issue_date"`
	DueDate    time.Time          `json:"due_date"`
	Notes      string             `json:"notes"`
	Items      []InvoiceItemInput `json:"items" binding:"required"`
}

// UpdateInvoiceInput is an explicit edit. A non-nil Items replaces the whole collection.
type UpdateInvoiceInput struct {
	TaxRate *decimal.Decimal   `json:"tax_rate"`
	DueDate *time.Time         `json:"due_date"`
	Notes   *string            `json:"notes"`
	Items   []InvoiceItemInput `json:"items"`
}

type InvoiceService struct {
	repos *repository.Repositories
	audit *AuditService
	clock Clock
}

func NewInvoiceService(repos *repository.Repositories, audit *AuditService, clock Clock) *InvoiceService {
	return &InvoiceService{repos: repos, audit: audit, clock: clock}
}

func (s *InvoiceService) FindByID(ctx context.Context, tenantID, id uint) (*models.Invoice, error) {
	inv, err := s.repos.Invoice.FindByID(ctx, tenantID, id)
	return inv, mapStoreError(err, "invoice")
}

func (s *InvoiceService) List(ctx context.Context, tenantID uint, query *repository.ListQuery) ([]models.Invoice, int64, error) {
	return s.repos.Invoice.ListByTenant(ctx, tenantID, query)
}

// Create stores a DRAFT invoice with totals derived from its items
func (s *InvoiceService) Create(ctx context.Context, actor Actor, in CreateInvoiceInput) (*models.Invoice, error) {
	if _, err := s.repos.Customer.FindByID(ctx, actor.TenantID, in.CustomerID); err != nil {
		return nil, mapStoreError(err, "customer")
	}
	if err := validateTaxRate(in.TaxRate); err != nil {
		return nil, err
	}
	items, err := buildInvoiceItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.DueDate.IsZero() {
		return nil, validationError("la fecha de vencimiento es requerida")
	}
	issue := in.IssueDate
	if issue.IsZero() {
		issue = s.clock.Today()
	}
	if calendar.DateOnly(in.DueDate).Before(calendar.DateOnly(issue)) {
		return nil, validationError("la fecha de vencimiento no puede ser anterior a la de emisión")
	}

	inv := &models.Invoice{
		TenantID:   actor.TenantID,
		CustomerID: in.CustomerID,
		Number:     strings.TrimSpace(in.Number),
		TaxRate:    in.TaxRate,
		IssueDate:  calendar.DateOnly(issue),
		DueDate:    calendar.DateOnly(in.DueDate),
		Status:     models.InvoiceStatusDraft,
		Notes:      in.Notes,
		Items:      items,
	}
	inv.Recalculate()

	if err := s.repos.Invoice.Create(ctx, inv); err != nil {
		return nil, mapStoreError(err, "invoice")
	}
	s.audit.Logf(ctx, actor, AuditActionCreate, "Invoice", inv.ID, "total=%s", inv.Total.StringFixed(2))
	return inv, nil
}

// Update applies an explicit edit and recomputes subtotal, tax and total. Terminal invoices are refused.
func (s *InvoiceService) Update(ctx context.Context, actor Actor, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	inv, err := s.repos.Invoice.FindByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, mapStoreError(err, "invoice")
	}
	if inv.IsTerminal() {
		return nil, fmt.Errorf("%w: invoice is %s", ErrInvalidState, inv.Status)
	}

	if in.TaxRate != nil {
		if err := validateTaxRate(*in.TaxRate); err != nil {
			return nil, err
		}
		inv.TaxRate = *in.TaxRate
	}
	if in.DueDate != nil {
		if in.DueDate.IsZero() {
			return nil, validationError("la fecha de vencimiento es requerida")
		}
		inv.DueDate = calendar.DateOnly(*in.DueDate)
	}
	if in.Notes != nil {
		inv.Notes = *in.Notes
	}
	if in.Items != nil {
		items, err := buildInvoiceItems(in.Items)
		if err != nil {
			return nil, err
		}
		inv.Items = items
	}
	inv.Recalculate()

	err = s.repos.WithTransaction(ctx, func(tx *repository.Repositories) error {
		return tx.Invoice.UpdateWithItems(ctx, inv)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	s.audit.Logf(ctx, actor, AuditActionUpdate, "Invoice", inv.ID, "total=%s items=%d", inv.Total.StringFixed(2), len(inv.Items))
	return inv, nil
}

// Cancel moves an open invoice to CANCELLED
func (s *InvoiceService) Cancel(ctx context.Context, actor Actor, id uint) (*models.Invoice, error) {
	inv, err := s.repos.Invoice.FindByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, mapStoreError(err, "invoice")
	}
	from := inv.Status
	if err := statemachine.NewInvoiceFSM(inv).Cancel(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	ok, err := s.repos.Invoice.TransitionStatus(ctx, inv.ID, []string{from}, models.InvoiceStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: invoice changed while cancelling", ErrInvalidState)
	}
	s.audit.Log(ctx, actor, AuditActionCancel, "Invoice", inv.ID, "from="+from)
	return inv, nil
}

func validateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return validationError("la tasa de impuesto debe estar entre 0 y 100")
	}
	return nil
}

func buildInvoiceItems(in []InvoiceItemInput) ([]models.InvoiceItem, error) {
	if len(in) == 0 {
		return nil, validationError("la factura debe tener al menos una línea")
	}
	items := make([]models.InvoiceItem, 0, len(in))
	for i, it := range in {
		if strings.TrimSpace(it.Description) == "" {
			return nil, validationError("línea %d: la descripción es requerida", i+1)
		}
		if !it.Quantity.IsPositive() {
			return nil, validationError("línea %d: la cantidad debe ser mayor que cero", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return nil, validationError("línea %d: el precio no puede ser negativo", i+1)
		}
		items = append(items, models.InvoiceItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return items, nil
}
