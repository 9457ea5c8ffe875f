package model

import "time"

// Favorite is a directed like edge from a user to a video. Same discipline as
// Relation: the unique pair is the source of truth for videos.favorite_count.
type Favorite struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:like id" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_user_video_favorite;index:idx_favorites_user_id;comment:liking user id" json:"user_id"`
	VideoID   int64     `gorm:"not null;uniqueIndex:uq_user_video_favorite;index:idx_favorites_video_id;comment:liked video id" json:"video_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_favorites_created_at;comment:liked at" json:"created_at"`

	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Video Video `gorm:"foreignKey:VideoID" json:"video,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
