package dto

// RelationUserInfo is the profile summary shown in follower/following lists.
type RelationUserInfo struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	DisplayName    *string `json:"display_name"`
	Avatar         *string `json:"avatar"`
	FollowerCount  int64   `json:"follower_count"`
	FollowingCount int64   `json:"following_count"`
}

// FollowResult reports the settled state after a follow/unfollow call.
type FollowResult struct {
	FollowerID     int64 `json:"follower_id"`
	FollowingID    int64 `json:"following_id"`
	Following      bool  `json:"following"`
	FollowingCount int64 `json:"following_count"`
	FollowerCount  int64 `json:"follower_count"`
}

// RelationListData is a page of follower/following profiles.
type RelationListData struct {
	Users      []RelationUserInfo `json:"users"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int64              `json:"total_pages"`
}

// BatchFollowStatusRequest asks for follow status against many users.
type BatchFollowStatusRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1,max=100"`
}
