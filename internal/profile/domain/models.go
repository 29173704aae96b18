// Package domain contains the user plan record and its contracts.
package domain

import (
	"errors"
	"time"

	"github.com/copyadhq/copyad/internal/plan"
)

// Roles assignable to a user profile.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrNotFound    = errors.New("profile_not_found")
	ErrInvalidRole = errors.New("invalid_role")
)

// UserProfile is the per-user plan record. At most one row exists per user
// identifier; absence of a row implies the free plan and the user role.
type UserProfile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"type:text" json:"email"`
	Plan      plan.Plan `gorm:"type:text;not null;default:'free'" json:"plan"`
	Role      string    `gorm:"type:text;not null;default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (UserProfile) TableName() string { return "user_profiles" }

// UpsertPlanRequest overwrites a user's plan record. Only the webhook
// reconciler issues it.
type UpsertPlanRequest struct {
	UserID string
	Plan   plan.Plan
	Email  string
}

// Summary aggregates plan adoption for the admin dashboard.
type Summary struct {
	TotalUsers          int64            `json:"total_users"`
	PlanDistribution    map[string]int64 `json:"plan_distribution"`
	MonthlyRevenue      int64            `json:"monthly_revenue"`
	ActiveSubscriptions int64            `json:"active_subscriptions"`
}

// ValidRole reports whether role is assignable.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}
