package handler

import (
	"clipstream/internal/api/dto"
	"clipstream/internal/api/response"
	"clipstream/internal/service"
	"clipstream/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchVideos searches published videos by keyword.
func (h *SearchHandler) SearchVideos(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid search query: "+err.Error())
		return
	}

	data, err := h.searchService.SearchVideos(&req)
	if err != nil {
		logger.Error("Video search failed", zap.String("keyword", req.Keyword), zap.Error(err))
		response.InternalError(c, "Search failed, please try again later")
		return
	}

	response.OK(c, "Search completed successfully", data)
}

// SearchUsers searches profiles by keyword.
func (h *SearchHandler) SearchUsers(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid search query: "+err.Error())
		return
	}

	data, err := h.searchService.SearchUsers(&req)
	if err != nil {
		logger.Error("User search failed", zap.String("keyword", req.Keyword), zap.Error(err))
		response.InternalError(c, "Search failed, please try again later")
		return
	}

	response.OK(c, "Search completed successfully", data)
}
