package service

import (
	"testing"

	"clipstream/internal/api/dto"
	"clipstream/internal/repository"
	"clipstream/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(userRepo, NewUserService(userRepo))
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Password: "super-secret-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "user", user.UserRole)

	tokenData, err := svc.Login(&dto.LoginRequest{
		Username: "alice",
		Password: "super-secret-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokenData.Token)
	assert.Equal(t, "bearer", tokenData.TokenType)

	claims, err := utils.ParseToken(tokenData.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(&dto.RegisterRequest{Username: "alice", Password: "super-secret-1"})
	require.NoError(t, err)

	_, err = svc.Register(&dto.RegisterRequest{Username: "alice", Password: "another-secret"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(&dto.RegisterRequest{Username: "alice", Password: "super-secret-1"})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(&dto.LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLoginDeactivatedUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register(&dto.RegisterRequest{Username: "alice", Password: "super-secret-1"})
	require.NoError(t, err)

	require.NoError(t, db.Table("users").Where("id = ?", user.ID).Update("is_delete", 1).Error)

	_, err = svc.Login(&dto.LoginRequest{Username: "alice", Password: "super-secret-1"})
	assert.ErrorIs(t, err, ErrUserDeleted)
}

func TestGetCurrentUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	registered, err := svc.Register(&dto.RegisterRequest{Username: "alice", Password: "super-secret-1"})
	require.NoError(t, err)

	current, err := svc.GetCurrentUser(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)

	_, err = svc.GetCurrentUser(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
