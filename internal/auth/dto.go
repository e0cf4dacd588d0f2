// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Email     string   `json:"email"     validate:"required,email,max=254"`
	Password  string   `json:"password"  validate:"required,min=6,max=120"`
	FirstName string   `json:"firstName" validate:"required,max=100"`
	LastName  string   `json:"lastName"  validate:"required,max=100"`
	Phone     string   `json:"phone"     validate:"omitempty,max=20"`
	RoleNames []string `json:"roleNames" validate:"omitempty,dive,required"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponse struct {
	TokenType             string    `json:"tokenType"`
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	User                  UserInfo  `json:"user"`
}
