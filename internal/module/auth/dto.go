package auth

import (
	"time"

	"github.com/learnhub/admin/internal/domain"
)

// LoginRequest represents the input for user login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

// UserInfo is the public part of the signed-in user.
type UserInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse is the token plus the role and permission snapshot the
// dashboard caches for its route guard.
type LoginResponse struct {
	Token       string              `json:"token"`
	ExpiresAt   time.Time           `json:"expires_at"`
	User        UserInfo            `json:"user"`
	Roles       []string            `json:"roles"`
	Permissions []domain.Permission `json:"permissions"`
}
