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

func newVideoService(db *gorm.DB) *VideoService {
	return NewVideoService(db,
		repository.NewVideoRepository(db),
		repository.NewUserRepository(db),
		repository.NewFavoriteRepository(db),
	)
}

func TestDeleteVideoDecrementsCountAndPurgesLikes(t *testing.T) {
	db := setupTestDB(t)
	svc := newVideoService(db)
	users := createTestUsers(t, db, 2)
	author, fan := users[0], users[1]

	video := createTestVideo(t, db, author.ID, "clip")
	require.NoError(t, db.Model(author).Update("video_count", 1).Error)
	require.NoError(t, db.Create(&model.Favorite{UserID: fan.ID, VideoID: video.ID}).Error)

	require.NoError(t, svc.Delete(video.ID, author.ID))

	assert.Equal(t, int64(0), fetchUser(t, db, author.ID).VideoCount)
	assert.Equal(t, "deleted", fetchVideo(t, db, video.ID).Status)

	var likes int64
	require.NoError(t, db.Model(&model.Favorite{}).Where("video_id = ?", video.ID).Count(&likes).Error)
	assert.Equal(t, int64(0), likes)
}

func TestDeleteVideoOnlyByAuthor(t *testing.T) {
	db := setupTestDB(t)
	svc := newVideoService(db)
	users := createTestUsers(t, db, 2)
	video := createTestVideo(t, db, users[0].ID, "clip")

	err := svc.Delete(video.ID, users[1].ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, "published", fetchVideo(t, db, video.ID).Status)
}

func TestUpdateVideoMetadata(t *testing.T) {
	db := setupTestDB(t)
	svc := newVideoService(db)
	author := createTestUser(t, db, "author")
	video := createTestVideo(t, db, author.ID, "before")

	title := "after"
	info, err := svc.Update(video.ID, author.ID, &dto.VideoUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "after", info.Title)

	_, err = svc.Update(video.ID, author.ID, &dto.VideoUpdateRequest{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestGetFeedListsPublishedNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newVideoService(db)
	author := createTestUser(t, db, "author")

	createTestVideo(t, db, author.ID, "one")
	createTestVideo(t, db, author.ID, "two")
	hidden := createTestVideo(t, db, author.ID, "hidden")
	require.NoError(t, db.Model(hidden).Update("status", "deleted").Error)

	feed, err := svc.GetFeed(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), feed.Total)
	assert.Len(t, feed.Videos, 2)
}
