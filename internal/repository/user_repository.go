package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	FindByID(ctx context.Context, tenantID, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindPayrollEligible(ctx context.Context, tenantID uint) ([]models.User, error)
	FindAdmins(ctx context.Context, tenantID uint) ([]models.User, error)
	FindClientsByCustomer(ctx context.Context, tenantID, customerID uint) ([]models.User, error)
	ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, tenantID, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKeyError(err, "idx_users_tenant_email") || IsUniqueViolation(err) {
			return fmt.Errorf("ya existe un usuario con este correo electrónico: %w", gorm.ErrDuplicatedKey)
		}
		return err
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindPayrollEligible returns active, salaried staff of a tenant
func (r *userRepository) FindPayrollEligible(ctx context.Context, tenantID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ? AND role <> ? AND salary > 0", tenantID, true, models.RoleClient).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) FindAdmins(ctx context.Context, tenantID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND role = ? AND active = ?", tenantID, models.RoleAdmin, true).
		Find(&users).Error
	return users, err
}

func (r *userRepository) FindClientsByCustomer(ctx context.Context, tenantID, customerID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND role = ? AND customer_id = ? AND active = ?", tenantID, models.RoleClient, customerID, true).
		Find(&users).Error
	return users, err
}

func (r *userRepository) ListByTenant(ctx context.Context, tenantID uint, query *ListQuery) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	db := r.db.WithContext(ctx).Model(&models.User{}).Where("tenant_id = ?", tenantID)
	if query != nil {
		if role := query.Filters["role"]; role != "" {
			db = db.Where("role = ?", role)
		}
		if active := query.Filters["active"]; active != "" {
			db = db.Where("active = ?", active == "true")
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := sortOrder(query, map[string]string{
		"full_name":  "full_name",
		"created_at": "created_at",
	}, "id ASC")

	err := paginate(db, query).Order(order).Find(&users).Error
	return users, total, err
}

// isDuplicateKeyError detects Postgres unique violations on a named constraint
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
	}
	return false
}

// IsUniqueViolation reports any unique violation, across the Postgres and SQLite drivers
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
