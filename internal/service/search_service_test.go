package service

import (
	"testing"

	"clipstream/internal/api/dto"
	"clipstream/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The suite runs without a search index configured, so every query takes the
// database fallback path.
func newSearchService(db *gorm.DB) *SearchService {
	return NewSearchService(
		repository.NewVideoRepository(db),
		repository.NewUserRepository(db),
	)
}

func TestSearchVideosFallsBackToDatabase(t *testing.T) {
	db := setupTestDB(t)
	svc := newSearchService(db)
	author := createTestUser(t, db, "author")

	createTestVideo(t, db, author.ID, "funny cats")
	createTestVideo(t, db, author.ID, "sad dogs")
	hidden := createTestVideo(t, db, author.ID, "funny outtakes")
	require.NoError(t, db.Model(hidden).Update("status", "deleted").Error)

	data, err := svc.SearchVideos(&dto.SearchRequest{Keyword: "funny"})
	require.NoError(t, err)

	assert.Equal(t, "database", data.Source)
	assert.Equal(t, int64(1), data.Total)
	require.Len(t, data.Videos, 1)
	assert.Equal(t, "funny cats", data.Videos[0].Title)
	assert.Equal(t, "author", data.Videos[0].AuthorName)
}

func TestSearchUsersFallsBackToDatabase(t *testing.T) {
	db := setupTestDB(t)
	svc := newSearchService(db)

	popular := createTestUser(t, db, "catlover")
	require.NoError(t, db.Model(popular).Update("follower_count", 5).Error)
	createTestUser(t, db, "catfan")
	createTestUser(t, db, "dogperson")
	gone := createTestUser(t, db, "catnap")
	require.NoError(t, db.Model(gone).Update("is_delete", 1).Error)

	data, err := svc.SearchUsers(&dto.SearchRequest{Keyword: "cat"})
	require.NoError(t, err)

	assert.Equal(t, "database", data.Source)
	assert.Equal(t, int64(2), data.Total)
	require.Len(t, data.Users, 2)
	// Ordered by follower_count, deactivated profiles excluded.
	assert.Equal(t, "catlover", data.Users[0].Username)
	assert.Equal(t, "catfan", data.Users[1].Username)
}

func TestSearchNormalizesPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := newSearchService(db)

	data, err := svc.SearchVideos(&dto.SearchRequest{Keyword: "anything", Page: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, data.Page)
	assert.Equal(t, 20, data.PageSize)

	data, err = svc.SearchVideos(&dto.SearchRequest{Keyword: "anything", Page: 2, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 2, data.Page)
	assert.Equal(t, 20, data.PageSize)
}

func TestSearchVideosPaginates(t *testing.T) {
	db := setupTestDB(t)
	svc := newSearchService(db)
	author := createTestUser(t, db, "author")

	createTestVideo(t, db, author.ID, "clip one")
	createTestVideo(t, db, author.ID, "clip two")
	createTestVideo(t, db, author.ID, "clip three")

	first, err := svc.SearchVideos(&dto.SearchRequest{Keyword: "clip", Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Total)
	assert.Equal(t, int64(2), first.TotalPages)
	assert.Len(t, first.Videos, 2)

	second, err := svc.SearchVideos(&dto.SearchRequest{Keyword: "clip", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, second.Videos, 1)
}

func TestBackfillVideoIndexEmptyCatalog(t *testing.T) {
	db := setupTestDB(t)
	svc := newSearchService(db)

	// Nothing to index; the backfill exits before touching the search index.
	require.NoError(t, svc.BackfillVideoIndex(10))
}

func TestBackfillVideoIndexWithoutSearchIndex(t *testing.T) {
	db := setupTestDB(t)
	svc := newSearchService(db)
	author := createTestUser(t, db, "author")
	createTestVideo(t, db, author.ID, "clip")

	err := svc.BackfillVideoIndex(10)
	assert.Error(t, err)
}
