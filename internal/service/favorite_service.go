package service

import (
	"errors"
	"fmt"

	"clipstream/internal/api/dto"
	"clipstream/internal/repository"

	"gorm.io/gorm"
)

// FavoriteService owns the like edge set and the videos.favorite_count it is
// derived from, with the same discipline as the relation service: edge change
// and counter delta commit together, and duplicate calls are no-ops.
type FavoriteService struct {
	db           *gorm.DB
	favoriteRepo *repository.FavoriteRepository
	videoRepo    *repository.VideoRepository
}

func NewFavoriteService(db *gorm.DB, favoriteRepo *repository.FavoriteRepository, videoRepo *repository.VideoRepository) *FavoriteService {
	return &FavoriteService{db: db, favoriteRepo: favoriteRepo, videoRepo: videoRepo}
}

// Favorite likes a video. Liking an already-liked video succeeds without
// touching the counter.
func (s *FavoriteService) Favorite(userID, videoID int64) (*dto.FavoriteResult, error) {
	if _, err := s.videoRepo.GetByID(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		favoriteRepo := s.favoriteRepo.WithTx(tx)

		exists, err := favoriteRepo.Exists(userID, videoID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		if _, err := favoriteRepo.Create(userID, videoID); err != nil {
			return err
		}
		return s.videoRepo.WithTx(tx).IncrementFavoriteCount(videoID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent identical like won; settle as a no-op.
			return s.buildFavoriteResult(userID, videoID)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	return s.buildFavoriteResult(userID, videoID)
}

// Unfavorite removes a like. Removing an absent like succeeds without
// touching the counter, and the counter never goes below zero.
func (s *FavoriteService) Unfavorite(userID, videoID int64) (*dto.FavoriteResult, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		deleted, err := s.favoriteRepo.WithTx(tx).Delete(userID, videoID)
		if err != nil {
			return err
		}
		if !deleted {
			return nil
		}
		return s.videoRepo.WithTx(tx).DecrementFavoriteCount(videoID)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	return s.buildFavoriteResult(userID, videoID)
}

// GetStatus reports whether the user liked the video and the current count.
func (s *FavoriteService) GetStatus(userID, videoID int64) (bool, int64, error) {
	if _, err := s.videoRepo.GetByID(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, ErrVideoNotFound
		}
		return false, 0, err
	}

	liked, err := s.favoriteRepo.Exists(userID, videoID)
	if err != nil {
		return false, 0, err
	}

	total, _ := s.favoriteRepo.CountByVideo(videoID)
	return liked, total, nil
}

// ListLikedVideos pages through the videos a user liked, newest like first.
// Liked videos that no longer resolve are skipped, not errors.
func (s *FavoriteService) ListLikedVideos(userID int64, page, pageSize int) (*dto.VideoListData, error) {
	skip := (page - 1) * pageSize
	videoIDs, total, err := s.favoriteRepo.GetLikedVideoIDs(userID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	videos, err := s.videoRepo.GetByIDs(videoIDs)
	if err != nil {
		return nil, err
	}

	// Keep the like ordering.
	videoMap := make(map[int64]int, len(videos))
	for i := range videos {
		videoMap[videos[i].ID] = i
	}
	ordered := make([]dto.VideoInfo, 0, len(videoIDs))
	for _, id := range videoIDs {
		if i, ok := videoMap[id]; ok {
			ordered = append(ordered, *toVideoInfo(&videos[i], ""))
		}
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &dto.VideoListData{
		Videos:     ordered,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// BatchCheckStatus resolves like status for many videos at once.
func (s *FavoriteService) BatchCheckStatus(userID int64, videoIDs []int64) (map[int64]bool, error) {
	return s.favoriteRepo.BatchCheckFavorited(userID, videoIDs)
}

func (s *FavoriteService) buildFavoriteResult(userID, videoID int64) (*dto.FavoriteResult, error) {
	liked, err := s.favoriteRepo.Exists(userID, videoID)
	if err != nil {
		return nil, err
	}

	result := &dto.FavoriteResult{
		UserID:  userID,
		VideoID: videoID,
		Liked:   liked,
	}
	if video, err := s.videoRepo.GetByID(videoID); err == nil {
		result.FavoriteCount = video.FavoriteCount
	}
	return result, nil
}
