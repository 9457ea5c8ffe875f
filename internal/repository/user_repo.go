package repository

import (
	"fmt"

	"clipstream/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter columns a caller may adjust through AdjustCounter.
const (
	CounterFollowers = "follower_count"
	CounterFollowing = "following_count"
	CounterVideos    = "video_count"
)

var adjustableCounters = map[string]bool{
	CounterFollowers: true,
	CounterFollowing: true,
	CounterVideos:    true,
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// GetByID fetches a user by ID, excluding soft-deleted rows.
func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ? AND is_delete = 0", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDIncludeDeleted fetches a user by ID regardless of the delete flag.
func (r *UserRepository) GetByIDIncludeDeleted(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsernameIncludeDeleted fetches a user by username regardless of the
// delete flag. Login uses it to tell a deactivated account from a missing one.
func (r *UserRepository) GetByUsernameIncludeDeleted(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user row.
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// CreateIfAbsent inserts the user unless a row with the same key exists.
// Concurrent callers for the same identity all succeed with one stored row.
func (r *UserRepository) CreateIfAbsent(user *model.User) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error
}

// Update applies the given column map and returns the fresh row.
func (r *UserRepository) Update(id int64, updates map[string]interface{}) (*model.User, error) {
	result := r.db.Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByIDIncludeDeleted(id)
}

// ExistsByUsername reports whether the username is taken.
func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ? AND is_delete = 0", username).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByIDs fetches users in bulk, excluding soft-deleted rows. IDs that do
// not resolve are simply absent from the result.
func (r *UserRepository) GetByIDs(ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	err := r.db.Where("id IN ? AND is_delete = 0", ids).Find(&users).Error
	return users, err
}

// ListWithFilters pages through users with optional username/role filters.
func (r *UserRepository) ListWithFilters(skip, limit int, username, userRole *string) ([]model.User, int64, error) {
	query := r.db.Model(&model.User{}).Where("is_delete = 0")

	if username != nil && *username != "" {
		query = query.Where("username LIKE ?", "%"+*username+"%")
	}
	if userRole != nil && *userRole != "" {
		query = query.Where("user_role = ?", *userRole)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := query.Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// AdjustCounter applies a relative delta to one profile counter in a single
// column update. Negative results clamp at zero, so duplicate decrements can
// never drive a counter below zero. This is the only write path for counters.
func (r *UserRepository) AdjustCounter(id int64, field string, delta int64) error {
	if !adjustableCounters[field] {
		return fmt.Errorf("not an adjustable counter: %s", field)
	}
	expr := gorm.Expr(
		fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", field, field),
		delta, delta,
	)
	return r.db.Model(&model.User{}).Where("id = ?", id).UpdateColumn(field, expr).Error
}

// IncrementFollowerCount adds one follower to a user.
func (r *UserRepository) IncrementFollowerCount(id int64) error {
	return r.AdjustCounter(id, CounterFollowers, 1)
}

// DecrementFollowerCount removes one follower from a user, clamped at zero.
func (r *UserRepository) DecrementFollowerCount(id int64) error {
	return r.AdjustCounter(id, CounterFollowers, -1)
}

// IncrementFollowingCount adds one following to a user.
func (r *UserRepository) IncrementFollowingCount(id int64) error {
	return r.AdjustCounter(id, CounterFollowing, 1)
}

// DecrementFollowingCount removes one following from a user, clamped at zero.
func (r *UserRepository) DecrementFollowingCount(id int64) error {
	return r.AdjustCounter(id, CounterFollowing, -1)
}

// IncrementVideoCount adds one published video to a user.
func (r *UserRepository) IncrementVideoCount(id int64) error {
	return r.AdjustCounter(id, CounterVideos, 1)
}

// DecrementVideoCount removes one published video from a user, clamped at zero.
func (r *UserRepository) DecrementVideoCount(id int64) error {
	return r.AdjustCounter(id, CounterVideos, -1)
}

// BackfillCounterDefaults zeroes any counter column a pre-counter schema left
// NULL. Columns that already hold a value are untouched.
func (r *UserRepository) BackfillCounterDefaults(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		CounterFollowers: gorm.Expr("COALESCE(follower_count, 0)"),
		CounterFollowing: gorm.Expr("COALESCE(following_count, 0)"),
		CounterVideos:    gorm.Expr("COALESCE(video_count, 0)"),
	}).Error
}

// RecomputeRelationCounters rewrites both relation counters from the edge
// table in one statement, so the repaired values cannot interleave with a
// concurrent follow.
func (r *UserRepository) RecomputeRelationCounters(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		CounterFollowers: gorm.Expr("(SELECT COUNT(*) FROM relations WHERE following_id = users.id)"),
		CounterFollowing: gorm.Expr("(SELECT COUNT(*) FROM relations WHERE follower_id = users.id)"),
	}).Error
}

// RecomputeVideoCount rewrites the video counter from the videos table.
func (r *UserRepository) RecomputeVideoCount(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).UpdateColumn(
		CounterVideos,
		gorm.Expr("(SELECT COUNT(*) FROM videos WHERE author_id = users.id AND status = 'published')"),
	).Error
}

// SearchByKeyword pages through users whose username or display name matches.
// DB fallback path for the search service.
func (r *UserRepository) SearchByKeyword(keyword string, skip, limit int) ([]model.User, int64, error) {
	pattern := "%" + keyword + "%"
	query := r.db.Model(&model.User{}).
		Where("is_delete = 0").
		Where("username LIKE ? OR display_name LIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := query.Order("follower_count DESC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
