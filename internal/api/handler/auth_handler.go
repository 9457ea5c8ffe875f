package handler

import (
	"errors"

	"clipstream/internal/api/dto"
	"clipstream/internal/api/middleware"
	"clipstream/internal/api/response"
	"clipstream/internal/service"
	"clipstream/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account with a zeroed profile.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			response.Conflict(c, err.Error())
			return
		}
		logger.Error("Register failed", zap.Error(err))
		response.InternalError(c, "Registration failed, please try again later")
		return
	}

	response.Created(c, "Registered successfully", user)
}

// Login authenticates and returns a signed token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tokenData, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredential):
			response.Unauthorized(c, err.Error())
		case errors.Is(err, service.ErrUserDeleted):
			response.Forbidden(c, err.Error())
		default:
			logger.Error("Login failed", zap.Error(err))
			response.InternalError(c, "Login failed, please try again later")
		}
		return
	}

	response.OK(c, "Logged in successfully", tokenData)
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.GetCurrentToken(c)
	if !ok {
		response.Unauthorized(c, "Missing authentication")
		return
	}

	if err := h.authService.Logout(token); err != nil {
		logger.Error("Logout failed", zap.Error(err))
		response.InternalError(c, "Logout failed, please try again later")
		return
	}

	response.OK(c, "Logged out successfully", nil)
}

// Me returns the authenticated identity.
func (h *AuthHandler) Me(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)

	user, err := h.authService.GetCurrentUser(currentUserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		logger.Error("Get current user failed", zap.Error(err))
		response.InternalError(c, "Failed to fetch current user")
		return
	}

	response.OK(c, "Fetched current user successfully", user)
}
