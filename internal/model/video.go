package model

import "time"

// Video is an uploaded clip. The blob lives in MinIO; PlayURL points at it.
type Video struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;comment:video id" json:"id"`
	AuthorID      int64     `gorm:"not null;index:idx_videos_author_id;index:idx_composite_author_status;comment:uploader id" json:"author_id"`
	Title         string    `gorm:"size:200;not null;comment:video title" json:"title"`
	Description   string    `gorm:"type:text;comment:video description" json:"description"`
	PlayURL       string    `gorm:"size:500;comment:playback url" json:"play_url"`
	CoverURL      string    `gorm:"size:500;comment:cover image url" json:"cover_url"`
	FileSize      int64     `gorm:"default:0;comment:blob size in bytes" json:"file_size"`
	FileFormat    string    `gorm:"size:20;comment:container format" json:"file_format"`
	Status        string    `gorm:"size:20;default:'published';index:idx_videos_status;index:idx_composite_author_status;comment:video status" json:"status"`
	ViewCount     int64     `gorm:"default:0;comment:play count" json:"view_count"`
	FavoriteCount int64     `gorm:"default:0;comment:like count" json:"favorite_count"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_videos_created_at;comment:uploaded at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime;comment:last write" json:"updated_at"`

	Author    User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Favorites []Favorite `gorm:"foreignKey:VideoID" json:"favorites,omitempty"`
}

func (Video) TableName() string {
	return "videos"
}
