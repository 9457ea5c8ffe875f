package dto

// RegisterRequest creates a new account and its profile.
type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=64"`
	Password    string  `json:"password" binding:"required,min=8,max=128"`
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Avatar      *string `json:"avatar" binding:"omitempty,url"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserInfo is the authenticated identity summary.
type UserInfo struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	Avatar      *string `json:"avatar"`
	UserRole    string  `json:"user_role"`
}

// TokenData is the login response payload.
type TokenData struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int      `json:"expires_in"`
	User      UserInfo `json:"user"`
}
