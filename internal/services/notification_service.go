package services

import (
	"context"

	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// NotificationService is the in-app notification sink. Writes are fire-and-forget:
// failures are logged and never returned to the operation that triggered them.
type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo}
}

// WithRepositories returns a sink writing through repos, typically a transaction's repositories
func (s *NotificationService) WithRepositories(repos *repository.Repositories) *NotificationService {
	return NewNotificationService(repos.Notification, repos.User)
}

// NotificationInput is the content of one notification
type NotificationInput struct {
	Title         string
	Message       string
	Type          string
	ReferenceType string
	ReferenceID   uint
}

func (s *NotificationService) FindByID(ctx context.Context, tenantID, id uint) (*models.Notification, error) {
	n, err := s.repo.FindByID(ctx, tenantID, id)
	return n, mapStoreError(err, "notification")
}

func (s *NotificationService) FindByUser(ctx context.Context, tenantID, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.FindByUser(ctx, tenantID, userID, query)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, tenantID, id uint) error {
	return mapStoreError(s.repo.MarkAsRead(ctx, tenantID, id), "notification")
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, tenantID, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, tenantID, userID)
}

// NotifyUser stores one notification, logging instead of failing
func (s *NotificationService) NotifyUser(ctx context.Context, tenantID, userID uint, in NotificationInput) bool {
	notification := &models.Notification{
		TenantID: tenantID,
		UserID:   userID,
		Title:    in.Title,
		Message:  in.Message,
	}
	if in.Type != "" {
		notifType := in.Type
		notification.NotificationType = &notifType
	}
	if in.ReferenceType != "" {
		refType := in.ReferenceType
		refID := in.ReferenceID
		notification.ReferenceType = &refType
		notification.ReferenceID = &refID
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		logger.WithTenant(tenantID).Error("Failed to create notification", "user_id", userID, "type", in.Type, "error", err)
		return false
	}
	return true
}

// NotifyUsers notifies each user id and returns how many notifications were stored
func (s *NotificationService) NotifyUsers(ctx context.Context, tenantID uint, userIDs []uint, in NotificationInput) int {
	sent := 0
	for _, id := range userIDs {
		if s.NotifyUser(ctx, tenantID, id, in) {
			sent++
		}
	}
	return sent
}

// NotifyAdmins notifies every active admin of the tenant
func (s *NotificationService) NotifyAdmins(ctx context.Context, tenantID uint, in NotificationInput) int {
	admins, err := s.userRepo.FindAdmins(ctx, tenantID)
	if err != nil {
		logger.WithTenant(tenantID).Error("Failed to load admins for notification", "type", in.Type, "error", err)
		return 0
	}
	ids := make([]uint, 0, len(admins))
	for _, admin := range admins {
		ids = append(ids, admin.ID)
	}
	return s.NotifyUsers(ctx, tenantID, ids, in)
}
