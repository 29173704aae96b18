package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ad *GeneratedAd) error
	FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*GeneratedAd, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]GeneratedAd, error)
	CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) error
}
