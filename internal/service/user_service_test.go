package service

import (
	"testing"

	"clipstream/internal/api/dto"
	"clipstream/internal/model"
	"clipstream/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db))
}

func strPtr(s string) *string {
	return &s
}

func TestGetProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	alice := createTestUser(t, db, "alice")

	profile, err := svc.GetProfile(alice.ID)
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, int64(0), profile.FollowerCount)
	assert.Equal(t, int64(0), profile.FollowingCount)
	assert.Equal(t, int64(0), profile.VideoCount)
}

func TestGetProfileNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)

	_, err := svc.GetProfile(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureProfileCreatesStub(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)

	profile, err := svc.EnsureProfile(42, &model.ProfileSeed{
		Username:    "newcomer",
		DisplayName: strPtr("Newcomer"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), profile.ID)
	assert.Equal(t, "newcomer", profile.Username)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Newcomer", *profile.DisplayName)
	assert.Equal(t, int64(0), profile.FollowerCount)
	assert.Equal(t, int64(0), profile.FollowingCount)
}

func TestEnsureProfileFillsMissingDisplayFields(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	alice := createTestUser(t, db, "alice")

	profile, err := svc.EnsureProfile(alice.ID, &model.ProfileSeed{
		Username:    "alice",
		DisplayName: strPtr("Alice A."),
		Email:       strPtr("alice@example.com"),
	})
	require.NoError(t, err)

	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Alice A.", *profile.DisplayName)
	require.NotNil(t, profile.Email)
	assert.Equal(t, "alice@example.com", *profile.Email)
}

func TestEnsureProfileNeverOverwritesExistingFields(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	alice := createTestUser(t, db, "alice")

	require.NoError(t, db.Model(alice).Updates(map[string]interface{}{
		"display_name":   "Original Name",
		"follower_count": 7,
	}).Error)

	profile, err := svc.EnsureProfile(alice.ID, &model.ProfileSeed{
		Username:    "alice",
		DisplayName: strPtr("Impostor"),
	})
	require.NoError(t, err)

	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Original Name", *profile.DisplayName)
	assert.Equal(t, int64(7), profile.FollowerCount)
}

func TestEnsureProfileIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)

	seed := &model.ProfileSeed{Username: "repeat", DisplayName: strPtr("Repeat")}

	first, err := svc.EnsureProfile(77, seed)
	require.NoError(t, err)
	second, err := svc.EnsureProfile(77, seed)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Username, second.Username)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", 77).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProfileRequiresSelfOrAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	_, err := svc.UpdateProfile(bob.ID, &dto.UserInfo{ID: alice.ID, UserRole: "user"}, &dto.UserUpdateRequest{
		DisplayName: strPtr("Hacked"),
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	profile, err := svc.UpdateProfile(bob.ID, &dto.UserInfo{ID: alice.ID, UserRole: "admin"}, &dto.UserUpdateRequest{
		DisplayName: strPtr("Renamed By Admin"),
	})
	require.NoError(t, err)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Renamed By Admin", *profile.DisplayName)
}

func TestUpdateProfileRejectsTakenUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	_, err := svc.UpdateProfile(alice.ID, &dto.UserInfo{ID: alice.ID, UserRole: "user"}, &dto.UserUpdateRequest{
		Username: &bob.Username,
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestDeactivateAndRestoreUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	alice := createTestUser(t, db, "alice")

	require.NoError(t, svc.DeactivateUser(alice.ID))

	_, err := svc.GetProfile(alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, svc.RestoreUser(alice.ID))

	profile, err := svc.GetProfile(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}

func TestListUsersWithFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	createTestUsers(t, db, 3)

	admin := createTestUser(t, db, "boss")
	require.NoError(t, db.Model(admin).Update("user_role", "admin").Error)

	all, err := svc.ListUsers(1, 20, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Meta.Total)

	role := "admin"
	admins, err := svc.ListUsers(1, 20, nil, &role)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins.Meta.Total)
}
