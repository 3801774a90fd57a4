package repository

import (
	"context"
	"strings"
	"time"

	"github.com/sjperalta/fintera-ops/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	FindByID(ctx context.Context, tenantID, id uint) (*models.Notification, error)
	FindByUser(ctx context.Context, tenantID, userID uint, query *ListQuery) ([]models.Notification, int64, error)
	Create(ctx context.Context, notification *models.Notification) error
	MarkAsRead(ctx context.Context, tenantID, id uint) error
	MarkAllAsRead(ctx context.Context, tenantID, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) FindByID(ctx context.Context, tenantID, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&notification, id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, tenantID, userID uint, query *ListQuery) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Notification{}).Where("tenant_id = ? AND user_id = ?", tenantID, userID)

	if query != nil {
		switch strings.ToLower(query.Filters["status"]) {
		case "unread":
			db = db.Where("read_at IS NULL")
		case "read":
			db = db.Where("read_at IS NOT NULL")
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(db, query).Order("created_at DESC").Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, tenantID, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND tenant_id = ? AND read_at IS NULL", id, tenantID).
		Update("read_at", time.Now()).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, tenantID, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("tenant_id = ? AND user_id = ? AND read_at IS NULL", tenantID, userID).
		Update("read_at", time.Now()).Error
}
