package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, profile *UserProfile) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*UserProfile, error)
	List(ctx context.Context, db *gorm.DB) ([]UserProfile, error)
	UpdateRole(ctx context.Context, db *gorm.DB, id, role string) error
	CountByPlan(ctx context.Context, db *gorm.DB) (map[string]int64, error)
}
