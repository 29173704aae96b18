package service

import (
	"context"

	"github.com/copyadhq/copyad/internal/ad/domain"
	"github.com/copyadhq/copyad/internal/quota"
	"gorm.io/gorm"
)

type usageCounter struct {
	db   *gorm.DB
	repo domain.Repository
}

// ProvideUsageCounter exposes the persisted-ad count to the quota gate.
func ProvideUsageCounter(db *gorm.DB, repo domain.Repository) quota.UsageCounter {
	return &usageCounter{db: db, repo: repo}
}

func (c *usageCounter) CountByUser(ctx context.Context, userID string) (int64, error) {
	return c.repo.CountByUser(ctx, c.db, userID)
}
