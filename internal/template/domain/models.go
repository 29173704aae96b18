package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound       = errors.New("template not found")
	ErrInvalidName    = errors.New("template name is required")
	ErrInvalidContent = errors.New("template content is required")
	ErrSlugTaken      = errors.New("template slug already exists")
)

// Template is a reusable prompt body. Content may reference the
// {product}, {description}, {platform}, {tone} and {language}
// placeholders, which are substituted at generation time.
type Template struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id,string"`
	Slug      string       `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Name      string       `gorm:"size:120;not null" json:"name"`
	Platform  string       `gorm:"size:40" json:"platform,omitempty"`
	Tone      string       `gorm:"size:40" json:"tone,omitempty"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	IsDefault bool         `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}

type CreateRequest struct {
	Name      string `json:"name"`
	Platform  string `json:"platform"`
	Tone      string `json:"tone"`
	Content   string `json:"content"`
	IsDefault bool   `json:"is_default"`
}

type ListFilter struct {
	Platform string
}
