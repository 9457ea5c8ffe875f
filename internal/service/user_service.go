package service

import (
	"context"
	"errors"
	"time"

	"clipstream/internal/api/dto"
	infraES "clipstream/internal/infra/elasticsearch"
	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already taken")
	ErrNotAuthorized  = errors.New("not authorized to perform this action")
)

// UserService owns the profile records. Counters are read here but never
// written; the relation and video services move them through AdjustCounter.
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns one profile.
func (s *UserService) GetProfile(id int64) (*dto.UserFullInfo, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserFullInfo(user), nil
}

// EnsureProfile creates the profile if absent and migrates an existing one
// forward: counters left unset by an older schema are zeroed and missing
// display metadata is filled from the seed. Counters and display fields that
// already hold values are never overwritten, so repeated sign-ins of the
// same identity converge on the same record.
func (s *UserService) EnsureProfile(id int64, seed *model.ProfileSeed) (*dto.UserFullInfo, error) {
	user, err := s.userRepo.GetByIDIncludeDeleted(id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		stub := &model.User{
			ID:          id,
			Username:    seed.Username,
			DisplayName: seed.DisplayName,
			Email:       seed.Email,
			Avatar:      seed.Avatar,
		}
		if err := s.userRepo.CreateIfAbsent(stub); err != nil {
			return nil, err
		}
		// Re-read: a concurrent caller may have won the insert.
		user, err = s.userRepo.GetByIDIncludeDeleted(id)
		if err != nil {
			return nil, err
		}
		s.syncSearchDoc(user)
		return toUserFullInfo(user), nil
	}

	if err := s.userRepo.BackfillCounterDefaults(id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if user.DisplayName == nil && seed.DisplayName != nil {
		updates["display_name"] = *seed.DisplayName
	}
	if user.Email == nil && seed.Email != nil {
		updates["email"] = *seed.Email
	}
	if user.Avatar == nil && seed.Avatar != nil {
		updates["avatar"] = *seed.Avatar
	}

	if len(updates) > 0 {
		if user, err = s.userRepo.Update(id, updates); err != nil {
			return nil, err
		}
	} else if user, err = s.userRepo.GetByIDIncludeDeleted(id); err != nil {
		return nil, err
	}

	s.syncSearchDoc(user)
	return toUserFullInfo(user), nil
}

// UpdateProfile patches display metadata for the target user. Only the user
// themselves or an admin may do this.
func (s *UserService) UpdateProfile(targetID int64, currentUser *dto.UserInfo, req *dto.UserUpdateRequest) (*dto.UserFullInfo, error) {
	if currentUser.ID != targetID && currentUser.UserRole != "admin" {
		return nil, ErrNotAuthorized
	}

	updates := make(map[string]interface{})
	if req.Username != nil {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		updates["username"] = *req.Username
	}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}

	if len(updates) == 0 {
		return s.GetProfile(targetID)
	}

	user, err := s.userRepo.Update(targetID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.syncSearchDoc(user)
	return toUserFullInfo(user), nil
}

// DeactivateUser soft-deletes a profile. The row and its counters survive;
// the user just stops resolving in reads and listings.
func (s *UserService) DeactivateUser(userID int64) error {
	_, err := s.userRepo.Update(userID, map[string]interface{}{"is_delete": 1})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if infraES.Get() != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := infraES.DeleteUser(ctx, userID); err != nil {
			logger.Warn("Failed to remove user from search index", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// RestoreUser reverses a soft delete.
func (s *UserService) RestoreUser(userID int64) error {
	user, err := s.userRepo.Update(userID, map[string]interface{}{"is_delete": 0})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.syncSearchDoc(user)
	return nil
}

// SetAdminRole grants the admin role.
func (s *UserService) SetAdminRole(userID int64) (*dto.UserFullInfo, error) {
	user, err := s.userRepo.Update(userID, map[string]interface{}{"user_role": "admin"})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserFullInfo(user), nil
}

// ListUsers pages through users with optional filters. Admin only.
func (s *UserService) ListUsers(page, pageSize int, username, userRole *string) (*dto.PaginatedData, error) {
	skip := (page - 1) * pageSize
	users, total, err := s.userRepo.ListWithFilters(skip, pageSize, username, userRole)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserFullInfo, 0, len(users))
	for i := range users {
		items = append(items, *toUserFullInfo(&users[i]))
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &dto.PaginatedData{
		Items: items,
		Meta: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// syncSearchDoc pushes the profile into the search index, best effort.
func (s *UserService) syncSearchDoc(user *model.User) {
	if infraES.Get() == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := infraES.SyncUser(ctx, user); err != nil {
		logger.Warn("Failed to sync user to search index", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

func toUserFullInfo(user *model.User) *dto.UserFullInfo {
	return &dto.UserFullInfo{
		ID:             user.ID,
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		Email:          user.Email,
		Avatar:         user.Avatar,
		UserRole:       user.UserRole,
		FollowerCount:  user.FollowerCount,
		FollowingCount: user.FollowingCount,
		VideoCount:     user.VideoCount,
	}
}
