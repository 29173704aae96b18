package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/copyadhq/copyad/internal/plan"
	"gorm.io/datatypes"
)

var (
	ErrVerificationFailed = errors.New("webhook signature verification failed")
	ErrInvalidPayload     = errors.New("webhook payload is not valid json")
	ErrInvalidEvent       = errors.New("webhook event is missing an id")
	ErrInvalidPlan        = errors.New("plan is not purchasable")
	ErrProviderNotReady   = errors.New("payment provider is not configured")
)

// Outcome classifies how a webhook event was resolved. Ignored outcomes
// are terminal no-ops: the event is acknowledged and recorded but no
// plan changes.
type Outcome string

const (
	OutcomePlanUpdated         Outcome = "plan_updated"
	OutcomeDuplicate           Outcome = "duplicate"
	OutcomeIgnoredUnknownType  Outcome = "ignored_unknown_type"
	OutcomeIgnoredMissingUser  Outcome = "ignored_missing_user"
	OutcomeIgnoredUnmappedPrice Outcome = "ignored_unmapped_price"
	OutcomeIgnoredNoPrice      Outcome = "ignored_no_price"
)

// BillingEvent is the durable record of one received webhook event.
// ProviderEventID carries a unique index; replays collide there and
// resolve as duplicates.
type BillingEvent struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id,string"`
	Provider        string         `gorm:"size:40;not null" json:"provider"`
	ProviderEventID string         `gorm:"size:120;not null;uniqueIndex" json:"provider_event_id"`
	Type            string         `gorm:"size:80;not null" json:"type"`
	Outcome         Outcome        `gorm:"size:40;not null" json:"outcome"`
	UserID          string         `gorm:"size:64;index" json:"user_id,omitempty"`
	PriceID         string         `gorm:"size:120" json:"price_id,omitempty"`
	Plan            plan.Plan      `gorm:"size:20" json:"plan,omitempty"`
	Payload         datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (BillingEvent) TableName() string {
	return "billing_events"
}

// WebhookResult reports what a webhook delivery did.
type WebhookResult struct {
	EventID string  `json:"event_id"`
	Type    string  `json:"type"`
	Outcome Outcome `json:"outcome"`
	UserID  string  `json:"user_id,omitempty"`
	Plan    plan.Plan `json:"plan,omitempty"`
}

type CheckoutRequest struct {
	UserID   string
	Email    string
	Plan     plan.Plan
	Interval plan.Interval
}

type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
