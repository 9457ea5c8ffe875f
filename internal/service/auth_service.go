package service

import (
	"context"
	"errors"
	"time"

	"clipstream/internal/api/dto"
	"clipstream/internal/config"
	infraRedis "clipstream/internal/infra/redis"
	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/pkg/logger"
	"clipstream/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrUserDeleted       = errors.New("user account is deactivated")
)

// AuthService is the identity provider adapter: it issues the opaque user
// identity (JWT) the rest of the system trusts, and runs the create-or-migrate
// profile step on every successful sign-in.
type AuthService struct {
	userRepo    *repository.UserRepository
	userService *UserService
}

func NewAuthService(userRepo *repository.UserRepository, userService *UserService) *AuthService {
	return &AuthService{userRepo: userRepo, userService: userService}
}

// Register creates an account with a fresh profile: counters at zero, empty
// edge sets.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.UserInfo, error) {
	exists, err := s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:    req.Username,
		Password:    hashedPassword,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Avatar:      req.Avatar,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Login verifies credentials, migrates the profile forward and returns a
// signed token.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.TokenData, error) {
	user, err := s.userRepo.GetByUsernameIncludeDeleted(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if user.IsDelete != 0 {
		return nil, ErrUserDeleted
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredential
	}

	// Create-or-migrate on sign-in: back-fills fields an older schema left
	// unset without touching live counters.
	if _, err := s.userService.EnsureProfile(user.ID, &model.ProfileSeed{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Avatar:      user.Avatar,
	}); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	expireSeconds := int(config.GetJWT().ExpireHours) * 3600

	return &dto.TokenData{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: expireSeconds,
		User:      *toUserInfo(user),
	}, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *AuthService) Logout(token string) error {
	claims, err := utils.ParseToken(token)
	if err != nil {
		// Expired or malformed tokens are already unusable.
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := infraRedis.RevokeToken(ctx, token, ttl); err != nil {
		logger.Warn("Failed to revoke token", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return err
	}
	return nil
}

// GetCurrentUser resolves the authenticated identity to its profile.
func (s *AuthService) GetCurrentUser(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserInfo(user), nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Avatar:      user.Avatar,
		UserRole:    user.UserRole,
	}
}
