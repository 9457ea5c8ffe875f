package dto

// UserFullInfo is the complete profile projection.
type UserFullInfo struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	DisplayName    *string `json:"display_name"`
	Email          *string `json:"email"`
	Avatar         *string `json:"avatar"`
	UserRole       string  `json:"user_role"`
	FollowerCount  int64   `json:"follower_count"`
	FollowingCount int64   `json:"following_count"`
	VideoCount     int64   `json:"video_count"`
}

// UserUpdateRequest patches profile display metadata. Nil fields are untouched.
type UserUpdateRequest struct {
	Username    *string `json:"username" binding:"omitempty,min=3,max=64"`
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar" binding:"omitempty,url"`
}

// PaginationMeta describes one page of a listing.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// PaginatedData wraps a page of items with its meta.
type PaginatedData struct {
	Items interface{}    `json:"items"`
	Meta  PaginationMeta `json:"meta"`
}
