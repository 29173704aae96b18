package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// InsertEvent writes the event record. It reports inserted=false when
	// a record with the same provider event id already exists.
	InsertEvent(ctx context.Context, db *gorm.DB, event *BillingEvent) (inserted bool, err error)
	FindByProviderEventID(ctx context.Context, db *gorm.DB, providerEventID string) (*BillingEvent, error)
	ListEvents(ctx context.Context, db *gorm.DB, limit int) ([]BillingEvent, error)
}
