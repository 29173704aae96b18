package domain

import (
	"context"

	"github.com/copyadhq/copyad/internal/plan"
)

type Service interface {
	// Get returns the stored profile, or ErrNotFound.
	Get(ctx context.Context, userID string) (*UserProfile, error)
	// ResolvePlan returns the user's current plan, defaulting to free when
	// no profile exists.
	ResolvePlan(ctx context.Context, userID string) (plan.Plan, error)
	// ResolveRole returns the user's role from the store, defaulting to
	// the user role. Roles are never trusted from client-supplied tokens.
	ResolveRole(ctx context.Context, userID string) (string, error)
	// UpsertPlan creates or overwrites the plan record. Replays of the same
	// request leave the record unchanged.
	UpsertPlan(ctx context.Context, req UpsertPlanRequest) error
	List(ctx context.Context) ([]UserProfile, error)
	UpdateRole(ctx context.Context, userID, role string) error
	Summary(ctx context.Context) (*Summary, error)
}
