package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationTypeOrder     NotificationType = "order"
	NotificationTypePromotion NotificationType = "promotion"
	NotificationTypeSystem    NotificationType = "system"
	NotificationTypeOther     NotificationType = "other"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeOrder, NotificationTypePromotion,
		NotificationTypeSystem, NotificationTypeOther:
		return true
	}
	return false
}

// Notification is an in-app notification entry. Only IsRead mutates after
// creation; deletion is an explicit user action.
type Notification struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	UserID    uuid.UUID         `json:"user_id" db:"user_id"`
	Title     string            `json:"title" db:"title"`
	Message   string            `json:"message" db:"message"`
	Type      NotificationType  `json:"type" db:"type"`
	IsRead    bool              `json:"is_read" db:"is_read"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}
