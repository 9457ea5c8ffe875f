package handler

import (
	"errors"
	"path/filepath"
	"strings"

	"clipstream/internal/api/dto"
	"clipstream/internal/api/middleware"
	"clipstream/internal/api/response"
	"clipstream/internal/service"
	"clipstream/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Upload size cap, 500 MB.
const maxVideoSize = 500 << 20

var allowedVideoFormats = map[string]bool{
	"mp4":  true,
	"webm": true,
	"mov":  true,
	"avi":  true,
}

type VideoHandler struct {
	videoService *service.VideoService
}

func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// Upload accepts a multipart video upload.
func (h *VideoHandler) Upload(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)

	var req dto.VideoUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Missing video file")
		return
	}

	if fileHeader.Size > maxVideoSize {
		response.BadRequest(c, "Video file too large")
		return
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."))
	if !allowedVideoFormats[format] {
		response.BadRequest(c, "Unsupported video format")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read video file")
		return
	}
	defer file.Close()

	video, err := h.videoService.Upload(currentUserID, &req, file, fileHeader.Size, format)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.Created(c, "Video uploaded successfully", video)
}

// GetFeed pages through the newest published videos. Public.
func (h *VideoHandler) GetFeed(c *gin.Context) {
	page, pageSize := parsePagination(c)

	data, err := h.videoService.GetFeed(page, pageSize)
	if err != nil {
		logger.Error("Get feed failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch feed")
		return
	}

	response.OK(c, "Fetched feed successfully", data)
}

// GetDetail returns one video and counts the view.
func (h *VideoHandler) GetDetail(c *gin.Context) {
	videoID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid video ID")
		return
	}

	video, err := h.videoService.GetDetail(videoID)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "Fetched video successfully", video)
}

// GetMyVideos pages through the authenticated user's videos.
func (h *VideoHandler) GetMyVideos(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.videoService.ListByAuthor(currentUserID, page, pageSize)
	if err != nil {
		logger.Error("List my videos failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch videos")
		return
	}

	response.OK(c, "Fetched videos successfully", data)
}

// GetUserVideos pages through another user's videos.
func (h *VideoHandler) GetUserVideos(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	page, pageSize := parsePagination(c)

	data, err := h.videoService.ListByAuthor(userID, page, pageSize)
	if err != nil {
		logger.Error("List user videos failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch videos")
		return
	}

	response.OK(c, "Fetched videos successfully", data)
}

// UpdateVideo patches video metadata. Author only.
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	videoID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid video ID")
		return
	}

	var req dto.VideoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	video, err := h.videoService.Update(videoID, currentUserID, &req)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "Video updated successfully", video)
}

// DeleteVideo soft-deletes a video. Author only.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	videoID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid video ID")
		return
	}

	if err := h.videoService.Delete(videoID, currentUserID); err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "Video deleted successfully", nil)
}

func handleVideoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVideoNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrTransactionFailed):
		logger.Error("Video transaction failed", zap.Error(err))
		response.ServiceUnavailable(c, "Operation could not be committed, please retry")
	default:
		logger.Error("Video operation failed", zap.Error(err))
		response.InternalError(c, "Operation failed, please try again later")
	}
}
