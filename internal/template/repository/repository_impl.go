package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/copyadhq/copyad/internal/template/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tmpl *domain.Template) error {
	return db.WithContext(ctx).Create(tmpl).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Template, error) {
	var tmpl domain.Template
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&tmpl).Error
	if err != nil {
		return nil, err
	}
	if tmpl.ID == 0 {
		return nil, nil
	}
	return &tmpl, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Template, error) {
	var tmpl domain.Template
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		Limit(1).
		Find(&tmpl).Error
	if err != nil {
		return nil, err
	}
	if tmpl.ID == 0 {
		return nil, nil
	}
	return &tmpl, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Template, error) {
	query := db.WithContext(ctx).Model(&domain.Template{})
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}

	var templates []domain.Template
	err := query.
		Order("is_default desc, created_at asc, id asc").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	result := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Template{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
