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

func seedUser(t *testing.T, email string) *domain.User {
	t.Helper()

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$notarealhashbutlongenough1234567890abcdef",
		FirstName:    "Test",
		LastName:     "User",
		Role:         "user",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(testDB).Create(context.Background(), user))

	t.Cleanup(func() {
		_, _ = testDB.Exec(`DELETE FROM users WHERE id = $1`, user.ID)
	})

	return user
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "create-find@example.com")

	byEmail, err := repo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, user.PasswordHash, byEmail.PasswordHash)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "duplicate@example.com")

	duplicate := *user
	duplicate.ID = uuid.New()
	err := repo.Create(ctx, &duplicate)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserRepository_UpdateDeviceToken(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "device-token@example.com")

	require.NoError(t, repo.UpdateDeviceToken(ctx, user.ID, "device-abc-123"))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "device-abc-123", found.DeviceToken)

	// Empty token unregisters the device
	require.NoError(t, repo.UpdateDeviceToken(ctx, user.ID, ""))

	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, found.DeviceToken)

	err = repo.UpdateDeviceToken(ctx, uuid.New(), "token")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
