package identity

import (
	"time"

	"github.com/google/uuid"
)

// LoginInput contains login credentials
type LoginInput struct {
	Username string
	Password string
}

// UserInfo is the user projection returned alongside tokens
type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
}

// LoginResult contains the issued tokens and the authenticated user
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// CreateUserInput contains the fields for a new staff account
type CreateUserInput struct {
	Username    string
	Password    string
	DisplayName string
	Role        string
}
