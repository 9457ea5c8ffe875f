package dto

// FavoriteResult reports the settled state after a like/unlike call.
type FavoriteResult struct {
	UserID        int64 `json:"user_id"`
	VideoID       int64 `json:"video_id"`
	Liked         bool  `json:"liked"`
	FavoriteCount int64 `json:"favorite_count"`
}

// BatchFavoriteStatusRequest asks for like status against many videos.
type BatchFavoriteStatusRequest struct {
	VideoIDs []int64 `json:"video_ids" binding:"required,min=1,max=100"`
}
