package repository

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	FindByID(ctx context.Context, tenantID, id uint) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.Customer, int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindByID(ctx context.Context, tenantID, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Customer{}).Where("tenant_id = ?", tenantID)
	if query != nil {
		if search := query.Filters["search"]; search != "" {
			like := "%" + search + "%"
			db = db.Where("name LIKE ? OR email LIKE ?", like, like)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := sortOrder(query, map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}, "name ASC")

	err := paginate(db, query).Order(order).Find(&customers).Error
	return customers, total, err
}
