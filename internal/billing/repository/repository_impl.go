package repository

import (
	"context"

	"github.com/copyadhq/copyad/internal/billing/domain"
	"github.com/copyadhq/copyad/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, tx *gorm.DB, event *domain.BillingEvent) (bool, error) {
	err := tx.WithContext(ctx).Create(event).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) FindByProviderEventID(ctx context.Context, tx *gorm.DB, providerEventID string) (*domain.BillingEvent, error) {
	var event domain.BillingEvent
	err := tx.WithContext(ctx).
		Where("provider_event_id = ?", providerEventID).
		Limit(1).
		Find(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) ListEvents(ctx context.Context, tx *gorm.DB, limit int) ([]domain.BillingEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var events []domain.BillingEvent
	err := tx.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
