package repository

import (
	"testing"

	"clipstream/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Favorite{},
		&model.Relation{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{Username: username, Password: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAdjustCounterClampsAtZero(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "alice")

	require.NoError(t, repo.AdjustCounter(user.ID, CounterFollowers, 2))
	require.NoError(t, repo.AdjustCounter(user.ID, CounterFollowers, -5))

	fresh, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fresh.FollowerCount)
}

func TestAdjustCounterRejectsUnknownColumn(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "alice")

	err := repo.AdjustCounter(user.ID, "password", 1)
	assert.Error(t, err)
}

func TestAdjustCounterAccumulates(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "alice")

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.AdjustCounter(user.ID, CounterFollowing, 1))
	}
	require.NoError(t, repo.AdjustCounter(user.ID, CounterFollowing, -1))

	fresh, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fresh.FollowingCount)
}

func TestCreateIfAbsentKeepsFirstRow(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)

	first := &model.User{ID: 10, Username: "original", Password: "hashed"}
	require.NoError(t, repo.CreateIfAbsent(first))

	second := &model.User{ID: 10, Username: "latecomer", Password: "hashed"}
	require.NoError(t, repo.CreateIfAbsent(second))

	fresh, err := repo.GetByIDIncludeDeleted(10)
	require.NoError(t, err)
	assert.Equal(t, "original", fresh.Username)
}

func TestRecomputeRelationCounters(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	for _, follower := range []int64{bob.ID, carol.ID} {
		require.NoError(t, db.Create(&model.Relation{FollowerID: follower, FollowingID: alice.ID}).Error)
	}
	require.NoError(t, db.Create(&model.Relation{FollowerID: alice.ID, FollowingID: bob.ID}).Error)

	require.NoError(t, repo.RecomputeRelationCounters(alice.ID))

	fresh, err := repo.GetByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.FollowerCount)
	assert.Equal(t, int64(1), fresh.FollowingCount)
}

func TestDuplicateFollowEdgeRejected(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewRelationRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	_, err := repo.Create(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = repo.Create(alice.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestGetByIDsSkipsDeleted(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, db.Model(bob).Update("is_delete", 1).Error)

	users, err := repo.GetByIDs([]int64{alice.ID, bob.ID})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)
}
