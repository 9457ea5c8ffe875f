package model

import "time"

// User is the denormalized profile record. FollowerCount, FollowingCount and
// VideoCount are derived from the relation/video tables; only the relation and
// video services may move them, and only through relative deltas.
type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement;comment:user id" json:"id"`
	Username       string    `gorm:"size:255;not null;uniqueIndex;comment:login name" json:"username"`
	Password       string    `gorm:"size:255;not null;comment:bcrypt hash" json:"-"`
	DisplayName    *string   `gorm:"size:255;comment:public display name" json:"display_name"`
	Email          *string   `gorm:"size:320;comment:contact email" json:"email"`
	Avatar         *string   `gorm:"size:500;comment:avatar url" json:"avatar"`
	FollowerCount  int64     `gorm:"not null;default:0;comment:users following this user" json:"follower_count"`
	FollowingCount int64     `gorm:"not null;default:0;comment:users this user follows" json:"following_count"`
	VideoCount     int64     `gorm:"not null;default:0;comment:published videos" json:"video_count"`
	UserRole       string    `gorm:"size:32;not null;default:'user';comment:user role" json:"user_role"`
	IsDelete       int64     `gorm:"not null;default:0;comment:soft delete flag" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime;comment:profile created" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;comment:last profile write" json:"updated_at"`

	Videos    []Video    `gorm:"foreignKey:AuthorID" json:"videos,omitempty"`
	Favorites []Favorite `gorm:"foreignKey:UserID" json:"favorites,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// ProfileSeed carries the display metadata an identity provider hands over on
// sign-in. All fields are optional; absent fields never overwrite stored ones.
type ProfileSeed struct {
	Username    string
	DisplayName *string
	Email       *string
	Avatar      *string
}
