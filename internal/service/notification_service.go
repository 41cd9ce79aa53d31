package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/notification"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService is the sink for user notifications: it records durable
// in-app entries and hands push delivery to the background dispatcher. It
// also serves the notification query/mutation endpoints.
type NotificationService interface {
	// Notify records a durable notification and queues best-effort push
	// delivery to the user's registered device, if any. Push failures
	// never surface to the caller.
	Notify(ctx context.Context, userID uuid.UUID, title, message string, ntype domain.NotificationType, data map[string]string) (*domain.Notification, error)
	List(ctx context.Context, userID uuid.UUID, filter repository.NotificationFilter, page, pageSize int) ([]*domain.Notification, int, int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	dispatcher       *notification.Dispatcher
	logger           *zap.Logger
}

// NewNotificationService creates a new instance of NotificationService
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	dispatcher *notification.Dispatcher,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		dispatcher:       dispatcher,
		logger:           logger,
	}
}

// Notify persists the notification, then queues push delivery.
func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, title, message string, ntype domain.NotificationType, data map[string]string) (*domain.Notification, error) {
	now := time.Now()
	entry := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      ntype,
		IsRead:    false,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.notificationRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record notification: %w", err)
	}

	// Push is fire-and-forget. A missing user or empty device token just
	// means nobody is listening on a device right now.
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("Could not resolve device token for push",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return entry, nil
	}

	s.dispatcher.Dispatch(user.DeviceToken, title, message, data)

	return entry, nil
}

// List returns a page of the user's notifications newest-first, the total
// matching count, and the user's unread count.
func (s *notificationService) List(ctx context.Context, userID uuid.UUID, filter repository.NotificationFilter, page, pageSize int) ([]*domain.Notification, int, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.notificationRepo.List(ctx, userID, filter, page, pageSize)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return notifications, total, unread, nil
}

// MarkRead flips a single notification owned by the user
func (s *notificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

// MarkAllRead flips every unread notification owned by the user
func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// Delete removes a notification owned by the user
func (s *notificationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.notificationRepo.Delete(ctx, id, userID)
}
