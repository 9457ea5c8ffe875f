package dto

import "time"

// VideoUploadRequest carries the metadata of a multipart upload.
type VideoUploadRequest struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description" binding:"max=2000"`
}

// VideoUpdateRequest patches video metadata. Nil fields are untouched.
type VideoUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// VideoInfo is the video projection returned to clients.
type VideoInfo struct {
	ID            int64     `json:"id"`
	AuthorID      int64     `json:"author_id"`
	AuthorName    string    `json:"author_name,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PlayURL       string    `json:"play_url"`
	CoverURL      string    `json:"cover_url"`
	Status        string    `json:"status"`
	ViewCount     int64     `json:"view_count"`
	FavoriteCount int64     `json:"favorite_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// VideoListData is a page of videos.
type VideoListData struct {
	Videos     []VideoInfo `json:"videos"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int64       `json:"total_pages"`
}
