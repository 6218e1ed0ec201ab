package domain

import "time"

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageRequest holds pagination, search, sorting and filtering parameters of
// a list query.
type PageRequest struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Filter map[string]string
}

// PageMeta is the pagination block of a list response.
type PageMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
}

// PageResult is one page of entities.
type PageResult[T any] struct {
	Entities   []T      `json:"entities"`
	Pagination PageMeta `json:"pagination"`
}

// Entity status values shared by catalog entities.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)
