package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrMissingAddress       = errors.New("shipping address is incomplete")
	ErrMissingPaymentMethod = errors.New("payment method is required")
	ErrNoteTooLong          = errors.New("order note is too long")
)

// PlaceOrderInput carries the caller-supplied checkout fields.
type PlaceOrderInput struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	Note            string
}

// OrderService defines the interface for order business logic. PlaceOrder is
// the cart-to-order workflow; the rest are status transitions and queries.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter, page, pageSize int) ([]*domain.Order, int, error)
	// UpdateStatus transitions the order status. requesterID scopes the
	// update to that user's orders; nil bypasses ownership (admin).
	UpdateStatus(ctx context.Context, orderID uuid.UUID, requesterID *uuid.UUID, status string) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	cartStore     repository.CartStore
	notifications NotificationService
	noteMaxLength int
	logger        *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartStore repository.CartStore,
	notifications NotificationService,
	noteMaxLength int,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		cartStore:     cartStore,
		notifications: notifications,
		noteMaxLength: noteMaxLength,
		logger:        logger,
	}
}

// PlaceOrder converts the user's cart into an immutable order.
//
// Everything up to and including orderRepo.Create is fail-fast with zero
// side effects: the repository performs stock decrements and the order
// insert in one transaction, so a rejected line leaves no order and no stock
// change. Once the order is committed, cart clearing and notification are
// best-effort; their failures are logged and never roll the order back.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*domain.Order, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	cart, err := s.cartStore.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Freeze each cart line. The order keeps the price captured when the
	// line was added, never the live catalog price.
	now := time.Now()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           make([]domain.OrderLine, 0, len(cart.Lines)),
		ShippingAddress: input.ShippingAddress,
		Note:            input.Note,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   input.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, line := range cart.Lines {
		order.Items = append(order.Items, domain.OrderLine{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
		order.TotalAmount += line.Subtotal()
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	// The order is durable from here on. Failures below are logged, never
	// propagated; an order with a lingering cart is reconciled out-of-band.
	if err := s.cartStore.Clear(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart after order placement",
			zap.String("order_id", order.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	s.notifyOrder(ctx, userID, order.ID,
		"Order placed",
		fmt.Sprintf("Your order %s has been placed.", order.ID),
	)

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total_amount", order.TotalAmount),
		zap.Int("items", len(order.Items)),
	)

	return order, nil
}

// GetOrder retrieves an order owned by the user
func (s *orderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Ownership check: a foreign order is indistinguishable from a
	// missing one.
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}

	return order, nil
}

// ListOrders retrieves the user's orders newest-first
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter, page, pageSize int) ([]*domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return s.orderRepo.FindByUser(ctx, userID, filter, page, pageSize)
}

// UpdateStatus validates and persists a status transition, then notifies the
// order's owner best-effort.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, requesterID *uuid.UUID, status string) (*domain.Order, error) {
	newStatus := domain.OrderStatus(status)
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, requesterID, newStatus); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.notifyOrder(ctx, order.UserID, order.ID,
		"Order updated",
		fmt.Sprintf("Your order %s is now %s.", order.ID, newStatus),
	)

	return order, nil
}

// UpdatePaymentStatus validates and persists a payment status transition.
// No notification side effect.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error) {
	newStatus := domain.PaymentStatus(status)
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, status)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *orderService) validateInput(input PlaceOrderInput) error {
	addr := input.ShippingAddress
	if addr.Street == "" || addr.City == "" || addr.State == "" || addr.ZipCode == "" || addr.Country == "" {
		return ErrMissingAddress
	}
	if input.PaymentMethod == "" {
		return ErrMissingPaymentMethod
	}
	if s.noteMaxLength > 0 && len(input.Note) > s.noteMaxLength {
		return fmt.Errorf("%w: limit %d characters", ErrNoteTooLong, s.noteMaxLength)
	}
	return nil
}

// notifyOrder records an order notification and queues its push. Failures
// degrade the notification subsystem, not the order operation.
func (s *orderService) notifyOrder(ctx context.Context, userID, orderID uuid.UUID, title, message string) {
	_, err := s.notifications.Notify(ctx, userID, title, message,
		domain.NotificationTypeOrder,
		map[string]string{"order_id": orderID.String()},
	)
	if err != nil {
		s.logger.Error("Failed to record order notification",
			zap.String("order_id", orderID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}
