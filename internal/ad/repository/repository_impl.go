package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/copyadhq/copyad/internal/ad/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ad *domain.GeneratedAd) error {
	return db.WithContext(ctx).Create(ad).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*domain.GeneratedAd, error) {
	var ad domain.GeneratedAd
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Limit(1).
		Find(&ad).Error
	if err != nil {
		return nil, err
	}
	if ad.ID == 0 {
		return nil, nil
	}
	return &ad, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.GeneratedAd, error) {
	var ads []domain.GeneratedAd
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&ads).Error
	if err != nil {
		return nil, err
	}
	return ads, nil
}

func (r *repo) CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.GeneratedAd{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) error {
	result := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.GeneratedAd{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
