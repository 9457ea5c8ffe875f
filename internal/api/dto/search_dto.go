package dto

// SearchRequest is the shared query shape for user and video search.
type SearchRequest struct {
	Keyword  string `form:"q" binding:"required,min=1,max=100"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SearchVideoData is a page of video search hits.
type SearchVideoData struct {
	Videos     []VideoInfo `json:"videos"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int64       `json:"total_pages"`
	Source     string      `json:"source"` // "elasticsearch" or "database"
}

// SearchUserData is a page of user search hits.
type SearchUserData struct {
	Users      []RelationUserInfo `json:"users"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int64              `json:"total_pages"`
	Source     string             `json:"source"`
}
