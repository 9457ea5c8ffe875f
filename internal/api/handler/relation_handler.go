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

type RelationHandler struct {
	relationService *service.RelationService
}

func NewRelationHandler(relationService *service.RelationService) *RelationHandler {
	return &RelationHandler{relationService: relationService}
}

// Follow follows the target user. Following an already-followed user is a
// committed no-op, so the call always reports the settled state.
func (h *RelationHandler) Follow(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	result, err := h.relationService.Follow(currentUserID, targetID)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	response.OK(c, "Followed successfully", result)
}

// Unfollow removes the follow edge. Unfollowing a user who was never followed
// is a committed no-op.
func (h *RelationHandler) Unfollow(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	result, err := h.relationService.Unfollow(currentUserID, targetID)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	response.OK(c, "Unfollowed successfully", result)
}

// GetFollowing pages through the users the given user follows.
func (h *RelationHandler) GetFollowing(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	page, pageSize := parsePagination(c)

	data, err := h.relationService.GetFollowingList(userID, page, pageSize)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	response.OK(c, "Fetched following list successfully", data)
}

// GetFollowers pages through the users following the given user.
func (h *RelationHandler) GetFollowers(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	page, pageSize := parsePagination(c)

	data, err := h.relationService.GetFollowerList(userID, page, pageSize)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	response.OK(c, "Fetched follower list successfully", data)
}

// GetMyFollowing pages through the authenticated user's following list.
func (h *RelationHandler) GetMyFollowing(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.relationService.GetFollowingList(currentUserID, page, pageSize)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	response.OK(c, "Fetched my following list successfully", data)
}

// GetMyFollowers pages through the authenticated user's follower list.
func (h *RelationHandler) GetMyFollowers(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.relationService.GetFollowerList(currentUserID, page, pageSize)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	response.OK(c, "Fetched my follower list successfully", data)
}

// GetFollowStatus reports whether the authenticated user follows the target.
func (h *RelationHandler) GetFollowStatus(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	isFollowing, err := h.relationService.IsFollowing(currentUserID, targetID)
	if err != nil {
		logger.Error("Get follow status failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch follow status")
		return
	}

	response.OK(c, "Fetched follow status successfully", gin.H{
		"is_following": isFollowing,
		"follow_id":    targetID,
	})
}

// GetMutualFollows pages through users who follow the authenticated user back.
func (h *RelationHandler) GetMutualFollows(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.relationService.GetMutualFollows(currentUserID, page, pageSize)
	if err != nil {
		logger.Error("Get mutual follows failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch mutual follows")
		return
	}

	response.OK(c, "Fetched mutual follows successfully", data)
}

// BatchFollowStatus resolves follow status against many users at once.
func (h *RelationHandler) BatchFollowStatus(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)

	var req dto.BatchFollowStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	statusMap, err := h.relationService.BatchCheckFollowStatus(currentUserID, req.UserIDs)
	if err != nil {
		logger.Error("Batch follow status failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch follow status")
		return
	}

	response.OK(c, "Fetched follow status successfully", gin.H{
		"follow_status": statusMap,
	})
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func handleRelationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCannotFollowSelf):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrTransactionFailed):
		logger.Error("Relation transaction failed", zap.Error(err))
		response.ServiceUnavailable(c, "Operation could not be committed, please retry")
	default:
		logger.Error("Relation operation failed", zap.Error(err))
		response.InternalError(c, "Operation failed, please try again later")
	}
}
