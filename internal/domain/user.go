package domain

import (
	"context"
	"slices"
)

// User is an administrator of the dashboard.
type User struct {
	BaseModel
	Name         string   `gorm:"size:100;not null" json:"name"`
	Email        string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	Roles        []string `gorm:"serializer:json" json:"roles"`
	Status       string   `gorm:"size:16;index;not null" json:"status"`
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, string(role))
}

// UserRepository is the data access contract the auth module needs.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}
