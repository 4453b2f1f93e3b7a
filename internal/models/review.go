package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a public testimonial submitted through the site. Reviews start
// unverified and are only surfaced as verified after manual approval.
type Review struct {
	ID       string  `json:"id" gorm:"primaryKey;size:36"`
	Name     string  `json:"name" gorm:"not null;size:100"`
	Email    string  `json:"email" gorm:"not null;size:255"`
	Role     string  `json:"role" gorm:"size:100"`
	Subject  string  `json:"subject" gorm:"size:100"`
	Rating   int     `json:"rating" gorm:"not null"`
	Review   string  `json:"review" gorm:"not null;type:text"`
	Verified bool    `json:"verified" gorm:"default:false"`
	PhotoURL *string `json:"photo_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
