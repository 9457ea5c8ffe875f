package repository

import (
	"clipstream/internal/model"

	"gorm.io/gorm"
)

type RelationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) *RelationRepository {
	return &RelationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *RelationRepository) WithTx(tx *gorm.DB) *RelationRepository {
	return &RelationRepository{db: tx}
}

// Create inserts a follow edge. The unique (follower_id, following_id) index
// rejects duplicates with gorm.ErrDuplicatedKey.
func (r *RelationRepository) Create(followerID, followingID int64) (*model.Relation, error) {
	relation := &model.Relation{
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	if err := r.db.Create(relation).Error; err != nil {
		return nil, err
	}
	return relation, nil
}

// Delete removes a follow edge and reports whether one existed.
func (r *RelationRepository) Delete(followerID, followingID int64) (bool, error) {
	result := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Relation{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether the follow edge is present.
func (r *RelationRepository) Exists(followerID, followingID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Relation{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// GetFollowingIDs pages through the IDs a user follows, newest edge first.
func (r *RelationRepository) GetFollowingIDs(userID int64, skip, limit int) ([]int64, error) {
	var followingIDs []int64
	err := r.db.Model(&model.Relation{}).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Pluck("following_id", &followingIDs).Error
	return followingIDs, err
}

// GetFollowerIDs pages through the IDs following a user, newest edge first.
func (r *RelationRepository) GetFollowerIDs(userID int64, skip, limit int) ([]int64, error) {
	var followerIDs []int64
	err := r.db.Model(&model.Relation{}).
		Where("following_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Pluck("follower_id", &followerIDs).Error
	return followerIDs, err
}

// CountFollowing counts the edges where the user is the follower.
func (r *RelationRepository) CountFollowing(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Relation{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// CountFollowers counts the edges where the user is being followed.
func (r *RelationRepository) CountFollowers(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Relation{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

// GetMutualFollowIDs pages through users the given user follows who follow back.
func (r *RelationRepository) GetMutualFollowIDs(userID int64, skip, limit int) ([]int64, error) {
	var mutualIDs []int64
	err := r.db.Raw(`
		SELECT r1.following_id FROM relations r1
		INNER JOIN relations r2 ON r1.following_id = r2.follower_id AND r2.following_id = ?
		WHERE r1.follower_id = ?
		ORDER BY r1.created_at DESC
		LIMIT ? OFFSET ?
	`, userID, userID, limit, skip).Scan(&mutualIDs).Error
	return mutualIDs, err
}

// CountMutualFollows counts mutual follow pairs for a user.
func (r *RelationRepository) CountMutualFollows(userID int64) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*) FROM relations r1
		INNER JOIN relations r2 ON r1.following_id = r2.follower_id AND r2.following_id = ?
		WHERE r1.follower_id = ?
	`, userID, userID).Scan(&count).Error
	return count, err
}

// BatchCheckFollowing resolves follow status for many targets in one query.
func (r *RelationRepository) BatchCheckFollowing(followerID int64, followingIDs []int64) (map[int64]bool, error) {
	if len(followingIDs) == 0 {
		return map[int64]bool{}, nil
	}

	var followedIDs []int64
	err := r.db.Model(&model.Relation{}).
		Where("follower_id = ? AND following_id IN ?", followerID, followingIDs).
		Pluck("following_id", &followedIDs).Error
	if err != nil {
		return nil, err
	}

	followedSet := make(map[int64]bool, len(followedIDs))
	for _, id := range followedIDs {
		followedSet[id] = true
	}

	result := make(map[int64]bool, len(followingIDs))
	for _, id := range followingIDs {
		result[id] = followedSet[id]
	}
	return result, nil
}
