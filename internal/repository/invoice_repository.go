package repository

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, tenantID, id uint) (*models.Invoice, error)
	FindOpen(ctx context.Context) ([]models.Invoice, error)
	ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.Invoice, int64, error)
	TransitionStatus(ctx context.Context, id uint, from []string, to string) (bool, error)
	UpdateWithItems(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, tenantID, id uint) error
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, tenantID, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindOpen returns every DRAFT, SENT or OVERDUE invoice across tenants
func (r *invoiceRepository) FindOpen(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("status IN ?", models.OpenInvoiceStatuses).
		Order("tenant_id ASC, due_date ASC, id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("tenant_id = ?", tenantID)
	if query != nil {
		if status := query.Filters["status"]; status != "" {
			db = db.Where("status = ?", status)
		}
		if customer := query.Filters["customer_id"]; customer != "" {
			db = db.Where("customer_id = ?", customer)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := sortOrder(query, map[string]string{
		"due_date":   "due_date",
		"issue_date": "issue_date",
		"total":      "total",
	}, "due_date DESC")

	err := paginate(db, query).Preload("Customer").Order(order).Find(&invoices).Error
	return invoices, total, err
}

// TransitionStatus moves an invoice to `to` only while it is still in one of `from`.
// It reports whether a row changed, so a concurrent terminal write is never overwritten.
func (r *invoiceRepository) TransitionStatus(ctx context.Context, id uint, from []string, to string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateWithItems saves the invoice and fully replaces its item collection
func (r *invoiceRepository) UpdateWithItems(ctx context.Context, invoice *models.Invoice) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	for i := range invoice.Items {
		invoice.Items[i].ID = 0
		invoice.Items[i].InvoiceID = invoice.ID
	}
	if len(invoice.Items) > 0 {
		if err := db.Create(&invoice.Items).Error; err != nil {
			return err
		}
	}
	return db.Omit("Items", "Customer").Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, tenantID, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	result := db.Where("tenant_id = ?", tenantID).Delete(&models.Invoice{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
