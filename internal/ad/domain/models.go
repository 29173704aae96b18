package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound       = errors.New("ad not found")
	ErrInvalidProduct = errors.New("product name is required")
)

// GeneratedAd is one persisted generation. Rows are only written after
// the provider returned usable copy; failed attempts never consume
// quota.
type GeneratedAd struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id,string"`
	UserID       string       `gorm:"size:64;not null;index" json:"user_id"`
	Product      string       `gorm:"size:200;not null" json:"product"`
	Description  string       `gorm:"type:text" json:"description"`
	Platform     string       `gorm:"size:40" json:"platform,omitempty"`
	Tone         string       `gorm:"size:40" json:"tone,omitempty"`
	Language     string       `gorm:"size:40" json:"language,omitempty"`
	TemplateSlug string       `gorm:"size:120" json:"template_slug,omitempty"`
	Copy         string       `gorm:"type:text;not null" json:"copy"`
	Model        string       `gorm:"size:80" json:"model,omitempty"`
	Provider     string       `gorm:"size:40" json:"provider,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (GeneratedAd) TableName() string {
	return "generated_ads"
}

type GenerateRequest struct {
	Product     string `json:"product"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
	Tone        string `json:"tone"`
	Language    string `json:"language"`
	TemplateRef string `json:"template"`
}
