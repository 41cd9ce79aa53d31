package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrProductUnavailable = errors.New("product is not available")
)

// CartView is a cart resolved against the live catalog for presentation.
type CartView struct {
	Cart  *domain.Cart `json:"cart"`
	Total float64      `json:"total"`
}

// CartService defines the interface for cart business logic
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartStore   repository.CartStore
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(cartStore repository.CartStore, productRepo repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartService{
		cartStore:   cartStore,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Get loads the user's cart, dropping lines whose product has disappeared
// from the catalog or been deactivated since it was added.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.cartStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Lines[:0]
	for _, line := range cart.Lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				s.dropLine(ctx, userID, line.ProductID)
				continue
			}
			return nil, err
		}
		if !product.Active {
			s.dropLine(ctx, userID, line.ProductID)
			continue
		}
		kept = append(kept, line)
	}
	cart.Lines = kept

	return &CartView{Cart: cart, Total: cart.Total()}, nil
}

// AddItem puts a product into the cart, capturing its effective price.
// Quantities merge when the product is already in the cart.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
	}

	// Advisory stock check for early feedback. The authoritative check
	// happens at checkout against live stock.
	if product.Stock < quantity {
		return nil, &repository.InsufficientStockError{ProductName: product.Name}
	}

	line := domain.CartLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.EffectivePrice(),
	}

	if err := s.cartStore.AddLine(ctx, userID, line); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// UpdateItem replaces the quantity of a cart line
func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if err := s.cartStore.UpdateQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// RemoveItem deletes one product from the cart
func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	if err := s.cartStore.RemoveLine(ctx, userID, productID); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Clear empties the cart; clearing an already-empty cart is a no-op
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartStore.Clear(ctx, userID)
}

func (s *cartService) dropLine(ctx context.Context, userID, productID uuid.UUID) {
	if err := s.cartStore.RemoveLine(ctx, userID, productID); err != nil && !errors.Is(err, repository.ErrCartLineNotFound) {
		s.logger.Warn("Failed to drop stale cart line",
			zap.String("user_id", userID.String()),
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}
