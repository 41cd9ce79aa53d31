package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, name string, stock int, active bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now()
	_, err := testDB.Exec(`
		INSERT INTO products (id, name, description, price, category_id, image_url, stock, active, created_at, updated_at)
		VALUES ($1, $2, '', 9.99, $3, '', $4, $5, $6, $6)
	`, id, name, uuid.New(), stock, active, now)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = testDB.Exec(`DELETE FROM products WHERE id = $1`, id)
	})

	return id
}

func productStock(t *testing.T, id uuid.UUID) int {
	t.Helper()

	var stock int
	require.NoError(t, testDB.QueryRow(`SELECT stock FROM products WHERE id = $1`, id).Scan(&stock))
	return stock
}

func buildOrder(userID uuid.UUID, items ...domain.OrderLine) *domain.Order {
	now := time.Now()
	order := &domain.Order{
		ID:     uuid.New(),
		UserID: userID,
		ShippingAddress: domain.ShippingAddress{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
			Country: "USA",
		},
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: "card",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, item := range items {
		item.ID = uuid.New()
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
		order.TotalAmount += float64(item.Quantity) * item.UnitPrice
	}
	return order
}

func TestOrderRepository_CreateDecrementsStock(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	productA := seedProduct(t, "Widget", 10, true)
	productB := seedProduct(t, "Gadget", 5, true)

	order := buildOrder(uuid.New(),
		domain.OrderLine{ProductID: productA, ProductName: "Widget", Quantity: 2, UnitPrice: 9.99},
		domain.OrderLine{ProductID: productB, ProductName: "Gadget", Quantity: 5, UnitPrice: 24.50},
	)

	require.NoError(t, repo.Create(ctx, order))

	assert.Equal(t, 8, productStock(t, productA))
	assert.Equal(t, 0, productStock(t, productB))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.UserID, found.UserID)
	assert.Equal(t, domain.OrderStatusPending, found.Status)
	assert.Equal(t, "1 Main St", found.ShippingAddress.Street)
	require.Len(t, found.Items, 2)
	assert.InDelta(t, 2*9.99+5*24.50, found.TotalAmount, 0.01)
}

func TestOrderRepository_CreateRollsBackOnInsufficientStock(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	productA := seedProduct(t, "Widget", 10, true)
	productB := seedProduct(t, "Gadget", 1, true)

	order := buildOrder(uuid.New(),
		domain.OrderLine{ProductID: productA, ProductName: "Widget", Quantity: 2, UnitPrice: 9.99},
		domain.OrderLine{ProductID: productB, ProductName: "Gadget", Quantity: 3, UnitPrice: 24.50},
	)

	err := repo.Create(ctx, order)
	require.Error(t, err)
	assert.True(t, IsInsufficientStock(err))

	// The whole transaction rolled back: the first line's decrement is undone
	assert.Equal(t, 10, productStock(t, productA))
	assert.Equal(t, 1, productStock(t, productB))

	_, err = repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderRepository_CreateRejectsInactiveProduct(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	productID := seedProduct(t, "Retired", 10, false)

	order := buildOrder(uuid.New(),
		domain.OrderLine{ProductID: productID, ProductName: "Retired", Quantity: 1, UnitPrice: 9.99},
	)

	err := repo.Create(ctx, order)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 10, productStock(t, productID))
}

func TestOrderRepository_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	const stock = 5
	const buyers = 20
	productID := seedProduct(t, "Scarce", stock, true)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order := buildOrder(uuid.New(),
				domain.OrderLine{ProductID: productID, ProductName: "Scarce", Quantity: 1, UnitPrice: 9.99},
			)
			if err := repo.Create(ctx, order); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, 0, productStock(t, productID))
}

func TestOrderRepository_FindByUser(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	userID := uuid.New()
	productID := seedProduct(t, "Widget", 100, true)

	for i := 0; i < 3; i++ {
		order := buildOrder(userID,
			domain.OrderLine{ProductID: productID, ProductName: "Widget", Quantity: 1, UnitPrice: 9.99},
		)
		require.NoError(t, repo.Create(ctx, order))
	}

	orders, total, err := repo.FindByUser(ctx, userID, OrderFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, orders, 2)

	// Status filter
	cancelled := domain.OrderStatusCancelled
	orders, total, err = repo.FindByUser(ctx, userID, OrderFilter{Status: &cancelled}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, orders)

	// Another user sees nothing
	orders, total, err = repo.FindByUser(ctx, uuid.New(), OrderFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, orders)
}

func TestOrderRepository_UpdateStatusOwnership(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	owner := uuid.New()
	stranger := uuid.New()
	productID := seedProduct(t, "Widget", 100, true)

	order := buildOrder(owner,
		domain.OrderLine{ProductID: productID, ProductName: "Widget", Quantity: 1, UnitPrice: 9.99},
	)
	require.NoError(t, repo.Create(ctx, order))

	// A stranger's scoped update looks like a missing order
	err := repo.UpdateStatus(ctx, order.ID, &stranger, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// The owner can transition their own order
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, &owner, domain.OrderStatusCancelled))

	// Unscoped (admin) updates work regardless of owner
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, nil, domain.OrderStatusProcessing))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, found.Status)
}

func TestOrderRepository_UpdatePaymentStatus(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	productID := seedProduct(t, "Widget", 100, true)
	order := buildOrder(uuid.New(),
		domain.OrderLine{ProductID: productID, ProductName: "Widget", Quantity: 1, UnitPrice: 9.99},
	)
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusCompleted))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, found.PaymentStatus)

	err = repo.UpdatePaymentStatus(ctx, uuid.New(), domain.PaymentStatusFailed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
