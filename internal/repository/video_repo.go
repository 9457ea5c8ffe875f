package repository

import (
	"clipstream/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *VideoRepository) WithTx(tx *gorm.DB) *VideoRepository {
	return &VideoRepository{db: tx}
}

// Create inserts a video row.
func (r *VideoRepository) Create(video *model.Video) error {
	return r.db.Create(video).Error
}

// GetByID fetches a published or pending video by ID.
func (r *VideoRepository) GetByID(id int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Where("id = ? AND status <> 'deleted'", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDWithAuthor fetches a video with its author preloaded.
func (r *VideoRepository) GetByIDWithAuthor(id int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Preload("Author").Where("id = ? AND status <> 'deleted'", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDAndAuthor fetches a video only if the given user owns it.
func (r *VideoRepository) GetByIDAndAuthor(id, authorID int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Where("id = ? AND author_id = ? AND status <> 'deleted'", id, authorID).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDs fetches published videos in bulk; missing IDs are skipped.
func (r *VideoRepository) GetByIDs(ids []int64) ([]model.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var videos []model.Video
	err := r.db.Where("id IN ? AND status = 'published'", ids).Find(&videos).Error
	return videos, err
}

// Update applies the given column map and returns the fresh row.
func (r *VideoRepository) Update(id int64, updates map[string]interface{}) (*model.Video, error) {
	result := r.db.Model(&model.Video{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var video model.Video
	if err := r.db.First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// SoftDelete flips a video to deleted without touching the row otherwise.
func (r *VideoRepository) SoftDelete(id int64) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).UpdateColumn("status", "deleted").Error
}

// ListByAuthor pages through one author's videos, newest first.
func (r *VideoRepository) ListByAuthor(authorID int64, skip, limit int) ([]model.Video, int64, error) {
	query := r.db.Model(&model.Video{}).
		Where("author_id = ? AND status <> 'deleted'", authorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.Video
	if err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// Feed pages through published videos across all authors, newest first.
func (r *VideoRepository) Feed(skip, limit int) ([]model.Video, int64, error) {
	query := r.db.Model(&model.Video{}).Where("status = 'published'")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.Video
	if err := query.Preload("Author").Order("created_at DESC").Offset(skip).Limit(limit).Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// IncrementViewCount adds one view to a video.
func (r *VideoRepository) IncrementViewCount(id int64) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// IncrementFavoriteCount adds one like to a video.
func (r *VideoRepository) IncrementFavoriteCount(id int64) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("favorite_count", gorm.Expr("favorite_count + 1")).Error
}

// DecrementFavoriteCount removes one like from a video, never below zero.
func (r *VideoRepository) DecrementFavoriteCount(id int64) error {
	return r.db.Model(&model.Video{}).Where("id = ? AND favorite_count > 0", id).
		UpdateColumn("favorite_count", gorm.Expr("favorite_count - 1")).Error
}

// SearchByKeyword pages through published videos whose title or description
// matches. DB fallback path for the search service.
func (r *VideoRepository) SearchByKeyword(keyword string, skip, limit int) ([]model.Video, int64, error) {
	pattern := "%" + keyword + "%"
	query := r.db.Model(&model.Video{}).
		Where("status = 'published'").
		Where("title LIKE ? OR description LIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.Video
	if err := query.Preload("Author").Order("created_at DESC").Offset(skip).Limit(limit).Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}
