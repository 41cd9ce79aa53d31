package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, repo NotificationRepository, userID uuid.UUID, ntype domain.NotificationType, read bool, createdAt time.Time) *domain.Notification {
	t.Helper()

	entry := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Test",
		Message:   "Test message",
		Type:      ntype,
		IsRead:    read,
		Data:      map[string]string{"order_id": uuid.New().String()},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), entry))

	t.Cleanup(func() {
		_, _ = testDB.Exec(`DELETE FROM notifications WHERE id = $1`, entry.ID)
	})

	return entry
}

func TestNotificationRepository_CreateAndList(t *testing.T) {
	repo := NewNotificationRepository(testDB)
	ctx := context.Background()
	userID := uuid.New()

	now := time.Now()
	oldest := seedNotification(t, repo, userID, domain.NotificationTypeOrder, false, now.Add(-2*time.Hour))
	newest := seedNotification(t, repo, userID, domain.NotificationTypePromotion, true, now)

	notifications, total, err := repo.List(ctx, userID, NotificationFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, notifications, 2)

	// Newest-first ordering
	assert.Equal(t, newest.ID, notifications[0].ID)
	assert.Equal(t, oldest.ID, notifications[1].ID)

	// Data payload survives the round trip
	assert.Equal(t, oldest.Data["order_id"], notifications[1].Data["order_id"])
}

func TestNotificationRepository_ListFilters(t *testing.T) {
	repo := NewNotificationRepository(testDB)
	ctx := context.Background()
	userID := uuid.New()

	now := time.Now()
	unreadOrder := seedNotification(t, repo, userID, domain.NotificationTypeOrder, false, now.Add(-time.Hour))
	seedNotification(t, repo, userID, domain.NotificationTypePromotion, true, now)

	// Unread only
	notifications, total, err := repo.List(ctx, userID, NotificationFilter{UnreadOnly: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notifications, 1)
	assert.Equal(t, unreadOrder.ID, notifications[0].ID)

	// Type filter
	orderType := domain.NotificationTypeOrder
	notifications, total, err = repo.List(ctx, userID, NotificationFilter{Type: &orderType}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notifications, 1)
	assert.Equal(t, unreadOrder.ID, notifications[0].ID)

	// Date range excluding the older entry
	from := now.Add(-30 * time.Minute)
	notifications, total, err = repo.List(ctx, userID, NotificationFilter{From: &from}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	unread, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	repo := NewNotificationRepository(testDB)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	entry := seedNotification(t, repo, owner, domain.NotificationTypeOrder, false, time.Now())

	// Ownership scoping: someone else's mark is a not-found
	err := repo.MarkRead(ctx, entry.ID, stranger)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, repo.MarkRead(ctx, entry.ID, owner))

	unread, err := repo.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	repo := NewNotificationRepository(testDB)
	ctx := context.Background()
	userID := uuid.New()

	seedNotification(t, repo, userID, domain.NotificationTypeOrder, false, time.Now())
	seedNotification(t, repo, userID, domain.NotificationTypeSystem, false, time.Now())

	require.NoError(t, repo.MarkAllRead(ctx, userID))

	unread, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	// Marking again when nothing is unread still succeeds
	require.NoError(t, repo.MarkAllRead(ctx, userID))
}

func TestNotificationRepository_Delete(t *testing.T) {
	repo := NewNotificationRepository(testDB)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	entry := seedNotification(t, repo, owner, domain.NotificationTypeOrder, false, time.Now())

	err := repo.Delete(ctx, entry.ID, stranger)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, repo.Delete(ctx, entry.ID, owner))

	err = repo.Delete(ctx, entry.ID, owner)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}
