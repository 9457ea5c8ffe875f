package service

import (
	"testing"

	"clipstream/internal/model"
	"clipstream/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFavoriteService(db *gorm.DB) *FavoriteService {
	return NewFavoriteService(db, repository.NewFavoriteRepository(db), repository.NewVideoRepository(db))
}

func fetchVideo(t *testing.T, db *gorm.DB, id int64) *model.Video {
	t.Helper()

	var video model.Video
	require.NoError(t, db.Where("id = ?", id).First(&video).Error)
	return &video
}

func TestFavoriteMovesCounter(t *testing.T) {
	db := setupTestDB(t)
	svc := newFavoriteService(db)
	users := createTestUsers(t, db, 2)
	video := createTestVideo(t, db, users[0].ID, "clip")

	result, err := svc.Favorite(users[1].ID, video.ID)
	require.NoError(t, err)

	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.FavoriteCount)
	assert.Equal(t, int64(1), fetchVideo(t, db, video.ID).FavoriteCount)
}

func TestFavoriteTwiceIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	svc := newFavoriteService(db)
	users := createTestUsers(t, db, 2)
	video := createTestVideo(t, db, users[0].ID, "clip")

	_, err := svc.Favorite(users[1].ID, video.ID)
	require.NoError(t, err)
	result, err := svc.Favorite(users[1].ID, video.ID)
	require.NoError(t, err)

	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), fetchVideo(t, db, video.ID).FavoriteCount)
}

func TestFavoriteUnknownVideo(t *testing.T) {
	db := setupTestDB(t)
	svc := newFavoriteService(db)
	alice := createTestUser(t, db, "alice")

	_, err := svc.Favorite(alice.ID, 9999)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestUnfavoriteWithoutLikeIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	svc := newFavoriteService(db)
	users := createTestUsers(t, db, 2)
	video := createTestVideo(t, db, users[0].ID, "clip")

	result, err := svc.Unfavorite(users[1].ID, video.ID)
	require.NoError(t, err)

	assert.False(t, result.Liked)
	assert.Equal(t, int64(0), fetchVideo(t, db, video.ID).FavoriteCount)
}

func TestFavoriteUnfavoriteCyclesConverge(t *testing.T) {
	db := setupTestDB(t)
	svc := newFavoriteService(db)
	users := createTestUsers(t, db, 2)
	video := createTestVideo(t, db, users[0].ID, "clip")

	for i := 0; i < 3; i++ {
		_, err := svc.Favorite(users[1].ID, video.ID)
		require.NoError(t, err)
		_, err = svc.Unfavorite(users[1].ID, video.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(0), fetchVideo(t, db, video.ID).FavoriteCount)
}

func TestGetStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newFavoriteService(db)
	users := createTestUsers(t, db, 3)
	video := createTestVideo(t, db, users[0].ID, "clip")

	_, err := svc.Favorite(users[1].ID, video.ID)
	require.NoError(t, err)
	_, err = svc.Favorite(users[2].ID, video.ID)
	require.NoError(t, err)

	liked, total, err := svc.GetStatus(users[1].ID, video.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(2), total)

	liked, _, err = svc.GetStatus(users[0].ID, video.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestListLikedVideosSkipsDeletedOnes(t *testing.T) {
	db := setupTestDB(t)
	svc := newFavoriteService(db)
	users := createTestUsers(t, db, 2)
	kept := createTestVideo(t, db, users[0].ID, "kept")
	removed := createTestVideo(t, db, users[0].ID, "removed")

	_, err := svc.Favorite(users[1].ID, kept.ID)
	require.NoError(t, err)
	_, err = svc.Favorite(users[1].ID, removed.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(removed).Update("status", "deleted").Error)

	data, err := svc.ListLikedVideos(users[1].ID, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(2), data.Total)
	require.Len(t, data.Videos, 1)
	assert.Equal(t, kept.ID, data.Videos[0].ID)
}

func TestBatchCheckFavoriteStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newFavoriteService(db)
	users := createTestUsers(t, db, 2)
	v1 := createTestVideo(t, db, users[0].ID, "one")
	v2 := createTestVideo(t, db, users[0].ID, "two")

	_, err := svc.Favorite(users[1].ID, v1.ID)
	require.NoError(t, err)

	status, err := svc.BatchCheckStatus(users[1].ID, []int64{v1.ID, v2.ID})
	require.NoError(t, err)

	assert.True(t, status[v1.ID])
	assert.False(t, status[v2.ID])
}
