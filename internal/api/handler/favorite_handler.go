package handler

import (
	"errors"
	"strconv"

	"clipstream/internal/api/dto"
	"clipstream/internal/api/middleware"
	"clipstream/internal/api/response"
	"clipstream/internal/service"
	"clipstream/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FavoriteHandler struct {
	favoriteService *service.FavoriteService
}

func NewFavoriteHandler(favoriteService *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// Favorite likes a video. Liking twice is a committed no-op.
func (h *FavoriteHandler) Favorite(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	videoID, err := parseVideoIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid video ID")
		return
	}

	result, err := h.favoriteService.Favorite(currentUserID, videoID)
	if err != nil {
		handleFavoriteError(c, err)
		return
	}

	response.OK(c, "Liked successfully", result)
}

// Unfavorite removes a like. Removing an absent like is a committed no-op.
func (h *FavoriteHandler) Unfavorite(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	videoID, err := parseVideoIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid video ID")
		return
	}

	result, err := h.favoriteService.Unfavorite(currentUserID, videoID)
	if err != nil {
		handleFavoriteError(c, err)
		return
	}

	response.OK(c, "Unliked successfully", result)
}

// GetStatus reports the like state and count for one video.
func (h *FavoriteHandler) GetStatus(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	videoID, err := parseVideoIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid video ID")
		return
	}

	liked, total, err := h.favoriteService.GetStatus(currentUserID, videoID)
	if err != nil {
		handleFavoriteError(c, err)
		return
	}

	response.OK(c, "Fetched like status successfully", gin.H{
		"video_id":       videoID,
		"liked":          liked,
		"favorite_count": total,
	})
}

// ListMyFavorites pages through the videos the authenticated user liked.
func (h *FavoriteHandler) ListMyFavorites(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.favoriteService.ListLikedVideos(currentUserID, page, pageSize)
	if err != nil {
		logger.Error("List liked videos failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch liked videos")
		return
	}

	response.OK(c, "Fetched liked videos successfully", data)
}

// BatchStatus resolves like status against many videos at once.
func (h *FavoriteHandler) BatchStatus(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)

	var req dto.BatchFavoriteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	statusMap, err := h.favoriteService.BatchCheckStatus(currentUserID, req.VideoIDs)
	if err != nil {
		logger.Error("Batch favorite status failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch like status")
		return
	}

	response.OK(c, "Fetched like status successfully", gin.H{
		"favorite_status": statusMap,
	})
}

func parseVideoIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("video_id"), 10, 64)
}

func handleFavoriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVideoNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrTransactionFailed):
		logger.Error("Favorite transaction failed", zap.Error(err))
		response.ServiceUnavailable(c, "Operation could not be committed, please retry")
	default:
		logger.Error("Favorite operation failed", zap.Error(err))
		response.InternalError(c, "Operation failed, please try again later")
	}
}
