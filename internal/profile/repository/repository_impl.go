package repository

import (
	"context"
	"time"

	"github.com/copyadhq/copyad/internal/profile/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, profile *domain.UserProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan", "email", "updated_at"}),
	}).Create(profile).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, nil
	}
	return &profile, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.UserProfile, error) {
	var profiles []domain.UserProfile
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repo) UpdateRole(ctx context.Context, db *gorm.DB, id, role string) error {
	result := db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"role":       role,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) CountByPlan(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Plan  string
		Count int64
	}
	err := db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Select("plan, count(*) as count").
		Group("plan").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Plan] = row.Count
	}
	return counts, nil
}
