package transport

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationListResponse wraps a page of notifications with counts
type NotificationListResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	Total         int                    `json:"total"`
	Unread        int                    `json:"unread"`
	Page          int                    `json:"page"`
}

// NotificationHandler handles HTTP requests for notification operations
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// RegisterRoutes registers all notification routes
func (h *NotificationHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Put("/{id}/read", h.MarkRead)
		r.Put("/read-all", h.MarkAllRead)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles listing the requester's notifications. Supports unread_only,
// type, from, and to (RFC 3339) query filters.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserUUID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := repository.NotificationFilter{
		UnreadOnly: r.URL.Query().Get("unread_only") == "true",
	}

	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		ntype := domain.NotificationType(typeParam)
		if !ntype.Valid() {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid type filter")
			return
		}
		filter.Type = &ntype
	}

	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		from, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		filter.From = &from
	}

	if toParam := r.URL.Query().Get("to"); toParam != "" {
		to, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		filter.To = &to
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}

	notifications, total, unread, err := h.notificationService.List(r.Context(), userID, filter, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		middleware.RespondWithServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		Page:          page,
	})
}

// MarkRead handles marking a single notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserUUID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID, userID); err != nil {
		middleware.RespondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles marking all of the requester's notifications as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserUUID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), userID); err != nil {
		h.logger.Error("Failed to mark notifications read", zap.Error(err))
		middleware.RespondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles removing a notification
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserUUID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	if err := h.notificationService.Delete(r.Context(), notificationID, userID); err != nil {
		middleware.RespondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
