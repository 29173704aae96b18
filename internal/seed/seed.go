package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	templatedomain "github.com/copyadhq/copyad/internal/template/domain"
	"gorm.io/gorm"
)

type starterTemplate struct {
	Slug     string
	Name     string
	Platform string
	Tone     string
	Content  string
}

var starterTemplates = []starterTemplate{
	{
		Slug:     "launch-announcement",
		Name:     "Launch Announcement",
		Platform: "instagram",
		Tone:     "excited",
		Content:  "Introducing {product} on {platform}! {description} Written in a {tone} voice, in {language}.",
	},
	{
		Slug:     "limited-time-offer",
		Name:     "Limited Time Offer",
		Platform: "facebook",
		Tone:     "urgent",
		Content:  "Don't miss out on {product}. {description} Craft a {tone} call to action for {platform} in {language}.",
	},
	{
		Slug:     "feature-spotlight",
		Name:     "Feature Spotlight",
		Platform: "linkedin",
		Tone:     "professional",
		Content:  "Highlight what makes {product} stand out for a {platform} audience: {description}. Keep the copy {tone} and write it in {language}.",
	},
}

// EnsureDefaultTemplates seeds the starter ad templates so new installs
// have something to generate from. Existing slugs are left untouched.
func EnsureDefaultTemplates(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, st := range starterTemplates {
			var existing templatedomain.Template
			err := tx.WithContext(ctx).Where("slug = ?", st.Slug).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			now := time.Now().UTC()
			record := templatedomain.Template{
				ID:        node.Generate(),
				Slug:      st.Slug,
				Name:      st.Name,
				Platform:  st.Platform,
				Tone:      st.Tone,
				Content:   st.Content,
				IsDefault: true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
