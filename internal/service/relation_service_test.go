package service

import (
	"testing"

	"clipstream/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRelationService(db *gorm.DB) *RelationService {
	return NewRelationService(db, repository.NewRelationRepository(db), repository.NewUserRepository(db))
}

func TestFollowCreatesEdgeAndMovesBothCounters(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	result, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)

	assert.True(t, result.Following)
	assert.Equal(t, int64(1), result.FollowingCount)
	assert.Equal(t, int64(1), result.FollowerCount)

	assert.Equal(t, int64(1), fetchUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(0), fetchUser(t, db, alice.ID).FollowerCount)
	assert.Equal(t, int64(1), fetchUser(t, db, bob.ID).FollowerCount)
	assert.Equal(t, int64(0), fetchUser(t, db, bob.ID).FollowingCount)
}

func TestFollowTwiceIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	_, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)

	result, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)

	assert.True(t, result.Following)
	assert.Equal(t, int64(1), fetchUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(1), fetchUser(t, db, bob.ID).FollowerCount)
}

func TestFollowSelfRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	alice := createTestUser(t, db, "alice")

	_, err := svc.Follow(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrCannotFollowSelf)

	_, err = svc.Unfollow(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrCannotFollowSelf)
}

func TestFollowUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	alice := createTestUser(t, db, "alice")

	_, err := svc.Follow(alice.ID, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Equal(t, int64(0), fetchUser(t, db, alice.ID).FollowingCount)
}

func TestUnfollowRemovesEdgeAndMovesBothCounters(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	_, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)

	result, err := svc.Unfollow(alice.ID, bob.ID)
	require.NoError(t, err)

	assert.False(t, result.Following)
	assert.Equal(t, int64(0), fetchUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(0), fetchUser(t, db, bob.ID).FollowerCount)
}

func TestUnfollowWithoutEdgeIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	result, err := svc.Unfollow(alice.ID, bob.ID)
	require.NoError(t, err)

	assert.False(t, result.Following)
	assert.Equal(t, int64(0), fetchUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(0), fetchUser(t, db, bob.ID).FollowerCount)
}

func TestCountersNeverGoNegative(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	for i := 0; i < 3; i++ {
		_, err := svc.Unfollow(alice.ID, bob.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(0), fetchUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(0), fetchUser(t, db, bob.ID).FollowerCount)
}

func TestFollowUnfollowCyclesConverge(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	for i := 0; i < 3; i++ {
		_, err := svc.Follow(alice.ID, bob.ID)
		require.NoError(t, err)
		_, err = svc.Unfollow(alice.ID, bob.ID)
		require.NoError(t, err)
	}

	following, err := svc.IsFollowing(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
	assert.Equal(t, int64(0), fetchUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(0), fetchUser(t, db, bob.ID).FollowerCount)
}

func TestFollowIsDirectional(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 2)
	alice, bob := users[0], users[1]

	_, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)

	forward, err := svc.IsFollowing(alice.ID, bob.ID)
	require.NoError(t, err)
	reverse, err := svc.IsFollowing(bob.ID, alice.ID)
	require.NoError(t, err)

	assert.True(t, forward)
	assert.False(t, reverse)
}

func TestGetFollowingAndFollowerLists(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 4)
	alice := users[0]

	for _, target := range users[1:] {
		_, err := svc.Follow(alice.ID, target.ID)
		require.NoError(t, err)
	}
	_, err := svc.Follow(users[1].ID, alice.ID)
	require.NoError(t, err)

	following, err := svc.GetFollowingList(alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), following.Total)
	assert.Len(t, following.Users, 3)

	followers, err := svc.GetFollowerList(alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers.Total)
	require.Len(t, followers.Users, 1)
	assert.Equal(t, users[1].ID, followers.Users[0].ID)
}

func TestGetFollowingListUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)

	_, err := svc.GetFollowingList(9999, 1, 20)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetFollowerList(9999, 1, 20)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetFollowingListSkipsDeactivatedUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 3)
	alice, bob, carol := users[0], users[1], users[2]

	_, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Follow(alice.ID, carol.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(bob).Update("is_delete", 1).Error)

	following, err := svc.GetFollowingList(alice.ID, 1, 20)
	require.NoError(t, err)

	// The edge still counts toward the total; the profile just stops resolving.
	assert.Equal(t, int64(2), following.Total)
	require.Len(t, following.Users, 1)
	assert.Equal(t, carol.ID, following.Users[0].ID)
}

func TestGetFollowingListPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 6)
	alice := users[0]

	for _, target := range users[1:] {
		_, err := svc.Follow(alice.ID, target.ID)
		require.NoError(t, err)
	}

	page1, err := svc.GetFollowingList(alice.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page1.Total)
	assert.Equal(t, int64(3), page1.TotalPages)
	assert.Len(t, page1.Users, 2)

	page3, err := svc.GetFollowingList(alice.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3.Users, 1)
}

func TestGetMutualFollows(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 3)
	alice, bob, carol := users[0], users[1], users[2]

	_, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Follow(bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Follow(alice.ID, carol.ID)
	require.NoError(t, err)

	mutual, err := svc.GetMutualFollows(alice.ID, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(1), mutual.Total)
	require.Len(t, mutual.Users, 1)
	assert.Equal(t, bob.ID, mutual.Users[0].ID)
}

func TestBatchCheckFollowStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 4)
	alice := users[0]

	_, err := svc.Follow(alice.ID, users[1].ID)
	require.NoError(t, err)
	_, err = svc.Follow(alice.ID, users[3].ID)
	require.NoError(t, err)

	status, err := svc.BatchCheckFollowStatus(alice.ID, []int64{users[1].ID, users[2].ID, users[3].ID})
	require.NoError(t, err)

	assert.True(t, status[users[1].ID])
	assert.False(t, status[users[2].ID])
	assert.True(t, status[users[3].ID])
}

func TestFollowGraphScenario(t *testing.T) {
	db := setupTestDB(t)
	svc := newRelationService(db)
	users := createTestUsers(t, db, 4)
	alice, bob, carol, dave := users[0], users[1], users[2], users[3]

	// Everyone follows alice; alice follows bob.
	for _, follower := range []int64{bob.ID, carol.ID, dave.ID} {
		_, err := svc.Follow(follower, alice.ID)
		require.NoError(t, err)
	}
	_, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), fetchUser(t, db, alice.ID).FollowerCount)
	assert.Equal(t, int64(1), fetchUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(1), fetchUser(t, db, bob.ID).FollowerCount)

	// Carol leaves.
	_, err = svc.Unfollow(carol.ID, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), fetchUser(t, db, alice.ID).FollowerCount)

	followers, err := svc.GetFollowerList(alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers.Total)

	// Counters always match the edge table.
	var edges int64
	require.NoError(t, db.Table("relations").Where("following_id = ?", alice.ID).Count(&edges).Error)
	assert.Equal(t, edges, fetchUser(t, db, alice.ID).FollowerCount)
}
