package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartStore defines the interface for the per-user shopping cart. Carts are
// mutable working state, not records; they live in Redis as one hash per
// user keyed by product id.
type CartStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	// AddLine adds a cart line, merging quantities when the product is
	// already in the cart. The line's unit price is kept from the first
	// add; a re-add does not re-price the line.
	AddLine(ctx context.Context, userID uuid.UUID, line domain.CartLine) error
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveLine(ctx context.Context, userID, productID uuid.UUID) error
	// Clear removes the whole cart. Clearing an absent cart is a no-op.
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartStore struct {
	client *redis.Client
}

// NewCartStore creates a Redis-backed CartStore
func NewCartStore(client *redis.Client) CartStore {
	return &cartStore{client: client}
}

func cartKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

// Get loads the user's cart. A missing key yields an empty cart, not an error.
func (s *cartStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := &domain.Cart{UserID: userID, Lines: make([]domain.CartLine, 0, len(fields))}
	for _, raw := range fields {
		var line domain.CartLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("failed to decode cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}

	return cart, nil
}

// AddLine adds or merges a cart line
func (s *cartStore) AddLine(ctx context.Context, userID uuid.UUID, line domain.CartLine) error {
	key := cartKey(userID)
	field := line.ProductID.String()

	existing, err := s.client.HGet(ctx, key, field).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read cart line: %w", err)
	}

	if err == nil {
		var current domain.CartLine
		if err := json.Unmarshal([]byte(existing), &current); err != nil {
			return fmt.Errorf("failed to decode cart line: %w", err)
		}
		line.Quantity += current.Quantity
		line.UnitPrice = current.UnitPrice
	}

	raw, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode cart line: %w", err)
	}

	if err := s.client.HSet(ctx, key, field, raw).Err(); err != nil {
		return fmt.Errorf("failed to store cart line: %w", err)
	}

	return nil
}

// UpdateQuantity replaces the quantity of an existing cart line
func (s *cartStore) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	key := cartKey(userID)
	field := productID.String()

	existing, err := s.client.HGet(ctx, key, field).Result()
	if err == redis.Nil {
		return ErrCartLineNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read cart line: %w", err)
	}

	var line domain.CartLine
	if err := json.Unmarshal([]byte(existing), &line); err != nil {
		return fmt.Errorf("failed to decode cart line: %w", err)
	}

	line.Quantity = quantity

	raw, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode cart line: %w", err)
	}

	if err := s.client.HSet(ctx, key, field, raw).Err(); err != nil {
		return fmt.Errorf("failed to store cart line: %w", err)
	}

	return nil
}

// RemoveLine deletes one product from the cart
func (s *cartStore) RemoveLine(ctx context.Context, userID, productID uuid.UUID) error {
	removed, err := s.client.HDel(ctx, cartKey(userID), productID.String()).Result()
	if err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}

	if removed == 0 {
		return ErrCartLineNotFound
	}

	return nil
}

// Clear deletes the whole cart; clearing an empty cart is a no-op
func (s *cartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
