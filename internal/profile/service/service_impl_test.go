package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/copyadhq/copyad/internal/plan"
	"github.com/copyadhq/copyad/internal/profile/domain"
	"github.com/copyadhq/copyad/internal/profile/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProfileService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.UserProfile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewService(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
}

func TestResolvePlanDefaultsToFree(t *testing.T) {
	svc := setupProfileService(t)
	ctx := context.Background()

	got, err := svc.ResolvePlan(ctx, "u-missing")
	if err != nil {
		t.Fatalf("resolve plan: %v", err)
	}
	if got != plan.PlanFree {
		t.Fatalf("expected free, got %q", got)
	}

	role, err := svc.ResolveRole(ctx, "u-missing")
	if err != nil {
		t.Fatalf("resolve role: %v", err)
	}
	if role != domain.RoleUser {
		t.Fatalf("expected user role, got %q", role)
	}
}

func TestUpsertPlanIsIdempotent(t *testing.T) {
	svc := setupProfileService(t)
	ctx := context.Background()

	req := domain.UpsertPlanRequest{UserID: "u1", Plan: plan.PlanPro, Email: "u1@example.com"}
	if err := svc.UpsertPlan(ctx, req); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := svc.UpsertPlan(ctx, req); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	profile, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.Plan != plan.PlanPro || profile.Email != "u1@example.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	profiles, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
}

func TestUpsertPlanPreservesRoleAndEmail(t *testing.T) {
	svc := setupProfileService(t)
	ctx := context.Background()

	if err := svc.UpsertPlan(ctx, domain.UpsertPlanRequest{UserID: "u2", Plan: plan.PlanPro, Email: "u2@example.com"}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
	if err := svc.UpdateRole(ctx, "u2", domain.RoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}

	// Replayed checkout without an email must not wipe the stored one.
	if err := svc.UpsertPlan(ctx, domain.UpsertPlanRequest{UserID: "u2", Plan: plan.PlanEnterprise}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	profile, err := svc.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.Role != domain.RoleAdmin {
		t.Fatalf("role was not preserved: %q", profile.Role)
	}
	if profile.Email != "u2@example.com" {
		t.Fatalf("email was not preserved: %q", profile.Email)
	}
	if profile.Plan != plan.PlanEnterprise {
		t.Fatalf("plan was not replaced: %q", profile.Plan)
	}
}

func TestUpdateRoleValidation(t *testing.T) {
	svc := setupProfileService(t)
	ctx := context.Background()

	if err := svc.UpdateRole(ctx, "u3", "superuser"); err != domain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if err := svc.UpdateRole(ctx, "u3", domain.RoleAdmin); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	svc := setupProfileService(t)
	ctx := context.Background()

	seed := []domain.UpsertPlanRequest{
		{UserID: "a", Plan: plan.PlanFree},
		{UserID: "b", Plan: plan.PlanPro},
		{UserID: "c", Plan: plan.PlanPro},
		{UserID: "d", Plan: plan.PlanEnterprise},
	}
	for _, req := range seed {
		if err := svc.UpsertPlan(ctx, req); err != nil {
			t.Fatalf("seed %s: %v", req.UserID, err)
		}
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalUsers != 4 {
		t.Fatalf("total users = %d, want 4", summary.TotalUsers)
	}
	if summary.PlanDistribution["pro"] != 2 {
		t.Fatalf("pro count = %d, want 2", summary.PlanDistribution["pro"])
	}
	if summary.MonthlyRevenue != 2*15+25 {
		t.Fatalf("monthly revenue = %d", summary.MonthlyRevenue)
	}
	if summary.ActiveSubscriptions != 3 {
		t.Fatalf("active subscriptions = %d, want 3", summary.ActiveSubscriptions)
	}
}
