package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clipstream/internal/api/dto"
	infraKafka "clipstream/internal/infra/kafka"
	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")

	// ErrTransactionFailed wraps a store error that aborted an atomic
	// edge-plus-counters commit. Nothing was applied; the call is safe to
	// retry because a retry that finds the edge already settled is a no-op.
	ErrTransactionFailed = errors.New("transaction failed")
)

// RelationService owns the follow edge set and is the only writer of the
// follower/following counters. Every mutation commits the edge change and
// both counter deltas in one transaction; edge existence is the source of
// truth and repeated calls never move the counters twice.
type RelationService struct {
	db           *gorm.DB
	relationRepo *repository.RelationRepository
	userRepo     *repository.UserRepository

	// EventsTopic enables publishing of committed edge changes to Kafka.
	// Empty disables publishing (tests, tools).
	EventsTopic string
}

func NewRelationService(db *gorm.DB, relationRepo *repository.RelationRepository, userRepo *repository.UserRepository) *RelationService {
	return &RelationService{
		db:           db,
		relationRepo: relationRepo,
		userRepo:     userRepo,
	}
}

// Follow creates the follower->target edge and moves both counters by one.
// Following a user twice succeeds without touching edge or counters.
func (s *RelationService) Follow(followerID, targetID int64) (*dto.FollowResult, error) {
	if followerID == targetID {
		return nil, ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		relationRepo := s.relationRepo.WithTx(tx)
		userRepo := s.userRepo.WithTx(tx)

		exists, err := relationRepo.Exists(followerID, targetID)
		if err != nil {
			return err
		}
		if exists {
			// Edge already present: committed no-op.
			return nil
		}

		if _, err := relationRepo.Create(followerID, targetID); err != nil {
			return err
		}
		if err := userRepo.IncrementFollowingCount(followerID); err != nil {
			return err
		}
		if err := userRepo.IncrementFollowerCount(targetID); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to an identical follow. The winner committed
			// the edge and both counters, so this call settles as a no-op.
			return s.buildFollowResult(followerID, targetID)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	if changed {
		s.publishEvent(infraKafka.RelationEventFollow, followerID, targetID)
	}

	return s.buildFollowResult(followerID, targetID)
}

// Unfollow deletes the follower->target edge and moves both counters back by
// one. Unfollowing an absent edge succeeds without touching the counters.
func (s *RelationService) Unfollow(followerID, targetID int64) (*dto.FollowResult, error) {
	if followerID == targetID {
		return nil, ErrCannotFollowSelf
	}

	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		relationRepo := s.relationRepo.WithTx(tx)
		userRepo := s.userRepo.WithTx(tx)

		deleted, err := relationRepo.Delete(followerID, targetID)
		if err != nil {
			return err
		}
		if !deleted {
			return nil
		}

		if err := userRepo.DecrementFollowingCount(followerID); err != nil {
			return err
		}
		if err := userRepo.DecrementFollowerCount(targetID); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	if changed {
		s.publishEvent(infraKafka.RelationEventUnfollow, followerID, targetID)
	}

	return s.buildFollowResult(followerID, targetID)
}

// IsFollowing reports whether the follower->target edge exists.
func (s *RelationService) IsFollowing(followerID, targetID int64) (bool, error) {
	return s.relationRepo.Exists(followerID, targetID)
}

// GetFollowingList pages through the profiles a user follows.
func (s *RelationService) GetFollowingList(userID int64, page, pageSize int) (*dto.RelationListData, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	skip := (page - 1) * pageSize
	followingIDs, err := s.relationRepo.GetFollowingIDs(userID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	total, err := s.relationRepo.CountFollowing(userID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetByIDs(followingIDs)
	if err != nil {
		return nil, err
	}

	return buildRelationListData(users, followingIDs, total, page, pageSize), nil
}

// GetFollowerList pages through the profiles following a user.
func (s *RelationService) GetFollowerList(userID int64, page, pageSize int) (*dto.RelationListData, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	skip := (page - 1) * pageSize
	followerIDs, err := s.relationRepo.GetFollowerIDs(userID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	total, err := s.relationRepo.CountFollowers(userID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetByIDs(followerIDs)
	if err != nil {
		return nil, err
	}

	return buildRelationListData(users, followerIDs, total, page, pageSize), nil
}

// GetMutualFollows pages through the users the given user follows who follow back.
func (s *RelationService) GetMutualFollows(userID int64, page, pageSize int) (*dto.RelationListData, error) {
	skip := (page - 1) * pageSize
	mutualIDs, err := s.relationRepo.GetMutualFollowIDs(userID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	total, err := s.relationRepo.CountMutualFollows(userID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetByIDs(mutualIDs)
	if err != nil {
		return nil, err
	}

	return buildRelationListData(users, mutualIDs, total, page, pageSize), nil
}

// BatchCheckFollowStatus resolves follow status for many targets at once.
func (s *RelationService) BatchCheckFollowStatus(followerID int64, targetIDs []int64) (map[int64]bool, error) {
	return s.relationRepo.BatchCheckFollowing(followerID, targetIDs)
}

func (s *RelationService) buildFollowResult(followerID, targetID int64) (*dto.FollowResult, error) {
	following, err := s.relationRepo.Exists(followerID, targetID)
	if err != nil {
		return nil, err
	}

	result := &dto.FollowResult{
		FollowerID:  followerID,
		FollowingID: targetID,
		Following:   following,
	}

	if follower, err := s.userRepo.GetByID(followerID); err == nil {
		result.FollowingCount = follower.FollowingCount
	}
	if target, err := s.userRepo.GetByID(targetID); err == nil {
		result.FollowerCount = target.FollowerCount
	}

	return result, nil
}

// publishEvent announces a committed edge change. Publishing is best effort;
// the counters were already updated in the same transaction as the edge, so
// a lost event only delays reconciliation.
func (s *RelationService) publishEvent(eventType string, followerID, targetID int64) {
	if s.EventsTopic == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := &infraKafka.RelationEvent{
		Type:        eventType,
		FollowerID:  followerID,
		FollowingID: targetID,
		OccurredAt:  time.Now().Unix(),
	}
	if err := infraKafka.SendRelationEvent(ctx, s.EventsTopic, event); err != nil {
		logger.Warn("Failed to publish relation event",
			zap.String("type", eventType),
			zap.Int64("follower_id", followerID),
			zap.Int64("following_id", targetID),
			zap.Error(err),
		)
	}
}

// buildRelationListData projects users into the list payload, preserving the
// edge ordering in orderedIDs. IDs that did not resolve to a profile are
// skipped rather than failing the listing.
func buildRelationListData(users []model.User, orderedIDs []int64, total int64, page, pageSize int) *dto.RelationListData {
	userMap := make(map[int64]dto.RelationUserInfo, len(users))
	for i := range users {
		userMap[users[i].ID] = dto.RelationUserInfo{
			ID:             users[i].ID,
			Username:       users[i].Username,
			DisplayName:    users[i].DisplayName,
			Avatar:         users[i].Avatar,
			FollowerCount:  users[i].FollowerCount,
			FollowingCount: users[i].FollowingCount,
		}
	}

	userList := make([]dto.RelationUserInfo, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		if info, ok := userMap[id]; ok {
			userList = append(userList, info)
		}
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &dto.RelationListData{
		Users:      userList,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
