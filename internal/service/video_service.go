package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"clipstream/internal/api/dto"
	"clipstream/internal/config"
	infraES "clipstream/internal/infra/elasticsearch"
	infraMinio "clipstream/internal/infra/minio"
	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// VideoService owns the video records and the author's video_count. The row
// insert/delete and the counter delta commit in one transaction so the
// counter always matches the set of published videos.
type VideoService struct {
	db           *gorm.DB
	videoRepo    *repository.VideoRepository
	userRepo     *repository.UserRepository
	favoriteRepo *repository.FavoriteRepository
}

func NewVideoService(db *gorm.DB, videoRepo *repository.VideoRepository, userRepo *repository.UserRepository, favoriteRepo *repository.FavoriteRepository) *VideoService {
	return &VideoService{db: db, videoRepo: videoRepo, userRepo: userRepo, favoriteRepo: favoriteRepo}
}

// Upload stores the blob, then commits the video row and the author's
// video_count increment together.
func (s *VideoService) Upload(authorID int64, req *dto.VideoUploadRequest, fileReader io.Reader, fileSize int64, fileFormat string) (*dto.VideoInfo, error) {
	objectName := fmt.Sprintf("%d/%s.%s", authorID, uuid.NewString(), fileFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	contentType := "video/" + fileFormat
	if _, err := infraMinio.UploadFile(ctx, infraMinio.VideosBucket, objectName, fileReader, fileSize, contentType); err != nil {
		return nil, fmt.Errorf("failed to store video blob: %w", err)
	}

	minioCfg := config.GetMinIO()
	video := &model.Video{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		PlayURL:     infraMinio.GetPublicURL(minioCfg.Endpoint, minioCfg.UseSSL, infraMinio.VideosBucket, objectName),
		Status:      "published",
		FileSize:    fileSize,
		FileFormat:  fileFormat,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.videoRepo.WithTx(tx).Create(video); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).IncrementVideoCount(authorID)
	})
	if err != nil {
		// The row never landed; drop the orphaned blob.
		if rmErr := infraMinio.RemoveFile(ctx, infraMinio.VideosBucket, objectName); rmErr != nil {
			logger.Warn("Failed to remove orphaned blob", zap.String("object", objectName), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	s.syncSearchDoc(video)

	return toVideoInfo(video, ""), nil
}

// GetDetail returns one video and counts the view.
func (s *VideoService) GetDetail(videoID int64) (*dto.VideoInfo, error) {
	video, err := s.videoRepo.GetByIDWithAuthor(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if video.Status == "published" {
		_ = s.videoRepo.IncrementViewCount(videoID)
		video.ViewCount++
	}

	return toVideoInfo(video, video.Author.Username), nil
}

// Update patches video metadata. Only the author may do this.
func (s *VideoService) Update(videoID, currentUserID int64, req *dto.VideoUpdateRequest) (*dto.VideoInfo, error) {
	if _, err := s.videoRepo.GetByIDAndAuthor(videoID, currentUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	video, err := s.videoRepo.Update(videoID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	s.syncSearchDoc(video)
	return toVideoInfo(video, ""), nil
}

// Delete soft-deletes a video and decrements the author's video_count in the
// same transaction. Only the author may do this.
func (s *VideoService) Delete(videoID, currentUserID int64) error {
	video, err := s.videoRepo.GetByIDAndAuthor(videoID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAuthorized
		}
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.videoRepo.WithTx(tx).SoftDelete(videoID); err != nil {
			return err
		}
		if err := s.favoriteRepo.WithTx(tx).DeleteByVideo(videoID); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).DecrementVideoCount(video.AuthorID)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	if infraES.Get() != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := infraES.DeleteVideo(ctx, videoID); err != nil {
			logger.Warn("Failed to remove video from search index", zap.Int64("video_id", videoID), zap.Error(err))
		}
	}
	return nil
}

// GetFeed pages through the newest published videos.
func (s *VideoService) GetFeed(page, pageSize int) (*dto.VideoListData, error) {
	skip := (page - 1) * pageSize
	videos, total, err := s.videoRepo.Feed(skip, pageSize)
	if err != nil {
		return nil, err
	}
	return buildVideoListData(videos, total, page, pageSize), nil
}

// ListByAuthor pages through one author's videos.
func (s *VideoService) ListByAuthor(authorID int64, page, pageSize int) (*dto.VideoListData, error) {
	skip := (page - 1) * pageSize
	videos, total, err := s.videoRepo.ListByAuthor(authorID, skip, pageSize)
	if err != nil {
		return nil, err
	}
	return buildVideoListData(videos, total, page, pageSize), nil
}

// syncSearchDoc pushes the video into the search index, best effort.
func (s *VideoService) syncSearchDoc(video *model.Video) {
	if infraES.Get() == nil {
		return
	}

	authorName := ""
	if author, err := s.userRepo.GetByID(video.AuthorID); err == nil {
		authorName = author.Username
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := infraES.SyncVideo(ctx, video, authorName); err != nil {
		logger.Warn("Failed to sync video to search index", zap.Int64("video_id", video.ID), zap.Error(err))
	}
}

func toVideoInfo(v *model.Video, authorName string) *dto.VideoInfo {
	return &dto.VideoInfo{
		ID:            v.ID,
		AuthorID:      v.AuthorID,
		AuthorName:    authorName,
		Title:         v.Title,
		Description:   v.Description,
		PlayURL:       v.PlayURL,
		CoverURL:      v.CoverURL,
		Status:        v.Status,
		ViewCount:     v.ViewCount,
		FavoriteCount: v.FavoriteCount,
		CreatedAt:     v.CreatedAt,
	}
}

func buildVideoListData(videos []model.Video, total int64, page, pageSize int) *dto.VideoListData {
	items := make([]dto.VideoInfo, 0, len(videos))
	for i := range videos {
		items = append(items, *toVideoInfo(&videos[i], videos[i].Author.Username))
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &dto.VideoListData{
		Videos:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
