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

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// GetMe returns the full profile of the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)

	profile, err := h.userService.GetProfile(currentUserID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "Fetched profile successfully", profile)
}

// GetUser returns one user's full profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "Fetched profile successfully", profile)
}

// UpdateUser patches profile display metadata.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	currentUserID, _ := middleware.GetCurrentUserID(c)
	currentUser, err := h.authService.GetCurrentUser(currentUserID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	profile, err := h.userService.UpdateProfile(targetID, currentUser, &req)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "Profile updated successfully", profile)
}

// ListUsers pages through users with optional filters. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	var username, userRole *string
	if v := c.Query("username"); v != "" {
		username = &v
	}
	if v := c.Query("user_role"); v != "" {
		userRole = &v
	}

	data, err := h.userService.ListUsers(page, pageSize, username, userRole)
	if err != nil {
		logger.Error("List users failed", zap.Error(err))
		response.InternalError(c, "Failed to list users")
		return
	}

	response.OK(c, "Fetched users successfully", data)
}

// DeleteUser soft-deletes a profile. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.DeactivateUser(userID); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "User deactivated successfully", nil)
}

// RestoreUser reverses a soft delete. Admin only.
func (h *UserHandler) RestoreUser(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.RestoreUser(userID); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "User restored successfully", nil)
}

// SetAdmin grants the admin role. Admin only.
func (h *UserHandler) SetAdmin(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	profile, err := h.userService.SetAdminRole(userID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "Admin role granted successfully", profile)
}

func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUsernameExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		response.Forbidden(c, err.Error())
	default:
		logger.Error("User operation failed", zap.Error(err))
		response.InternalError(c, "Operation failed, please try again later")
	}
}
