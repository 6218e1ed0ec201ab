package domain

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// DefaultCurrency is used for packages priced without a currency.
const DefaultCurrency = money.USD

// Subject is a top-level area of study.
type Subject struct {
	BaseModel
	Name        string `gorm:"size:120;not null" json:"name"`
	Code        string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Description string `gorm:"size:1000" json:"description"`
	Status      string `gorm:"size:16;index;not null" json:"status"`
}

// Package is a sellable bundle of content within a subject.
type Package struct {
	BaseModel
	Name         string `gorm:"size:160;not null" json:"name"`
	SubjectID    uint   `gorm:"index;not null" json:"subject_id"`
	PriceCents   int64  `gorm:"not null" json:"price_cents"`
	Currency     string `gorm:"size:3;not null" json:"currency"`
	ValidityDays int    `json:"validity_days"`
	Status       string `gorm:"size:16;index;not null" json:"status"`
}

// Price formats the package price in its currency, e.g. "$49.00".
func (p Package) Price() string {
	code := strings.ToUpper(strings.TrimSpace(p.Currency))
	if code == "" {
		code = DefaultCurrency
	}
	return money.New(p.PriceCents, code).Display()
}

// Video is a hosted lesson recording.
type Video struct {
	BaseModel
	Title           string `gorm:"size:200;not null" json:"title"`
	SubjectID       uint   `gorm:"index;not null" json:"subject_id"`
	DurationSeconds int    `json:"duration_seconds"`
	Provider        string `gorm:"size:32;index" json:"provider"`
	Status          string `gorm:"size:16;index;not null" json:"status"`
}

// Faculty is an instructor.
type Faculty struct {
	BaseModel
	Name        string `gorm:"size:120;not null" json:"name"`
	Email       string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Designation string `gorm:"size:120" json:"designation"`
	Status      string `gorm:"size:16;index;not null" json:"status"`
}

// TableName overrides the pluralized default ("faculties").
func (Faculty) TableName() string { return "faculty" }

// Video providers.
var VideoProviders = []string{"vimeo", "youtube", "bunny"}
