package repository

import (
	"clipstream/internal/model"

	"gorm.io/gorm"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *FavoriteRepository) WithTx(tx *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: tx}
}

// Create inserts a like edge. Duplicates hit the unique (user_id, video_id)
// index and surface as gorm.ErrDuplicatedKey.
func (r *FavoriteRepository) Create(userID, videoID int64) (*model.Favorite, error) {
	favorite := &model.Favorite{
		UserID:  userID,
		VideoID: videoID,
	}
	if err := r.db.Create(favorite).Error; err != nil {
		return nil, err
	}
	return favorite, nil
}

// Delete removes a like edge and reports whether one existed.
func (r *FavoriteRepository) Delete(userID, videoID int64) (bool, error) {
	result := r.db.Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&model.Favorite{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether the like edge is present.
func (r *FavoriteRepository) Exists(userID, videoID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error
	return count > 0, err
}

// GetLikedVideoIDs pages through the IDs of videos a user liked, newest first.
func (r *FavoriteRepository) GetLikedVideoIDs(userID int64, skip, limit int) ([]int64, int64, error) {
	query := r.db.Model(&model.Favorite{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videoIDs []int64
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).
		Pluck("video_id", &videoIDs).Error
	return videoIDs, total, err
}

// DeleteByVideo removes every like edge pointing at a video. Used when the
// video itself is deleted.
func (r *FavoriteRepository) DeleteByVideo(videoID int64) error {
	return r.db.Where("video_id = ?", videoID).Delete(&model.Favorite{}).Error
}

// CountByVideo counts the likes on a video.
func (r *FavoriteRepository) CountByVideo(videoID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}

// BatchCheckFavorited resolves like status for many videos in one query.
func (r *FavoriteRepository) BatchCheckFavorited(userID int64, videoIDs []int64) (map[int64]bool, error) {
	if len(videoIDs) == 0 {
		return map[int64]bool{}, nil
	}

	var likedIDs []int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND video_id IN ?", userID, videoIDs).
		Pluck("video_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}

	likedSet := make(map[int64]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedSet[id] = true
	}

	result := make(map[int64]bool, len(videoIDs))
	for _, id := range videoIDs {
		result[id] = likedSet[id]
	}
	return result, nil
}
