package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/copyadhq/copyad/internal/billing/domain"
	"github.com/copyadhq/copyad/internal/billing/repository"
	"github.com/copyadhq/copyad/internal/config"
	"github.com/copyadhq/copyad/internal/plan"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
	profilerepository "github.com/copyadhq/copyad/internal/profile/repository"
	profileservice "github.com/copyadhq/copyad/internal/profile/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "whsec_test"

type billingFixture struct {
	svc      domain.Service
	profiles profiledomain.Service
}

func setupBillingService(t *testing.T) *billingFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.BillingEvent{}, &profiledomain.UserProfile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	holder, err := plan.NewCatalogHolder("")
	if err != nil {
		t.Fatalf("catalog holder: %v", err)
	}

	log := zap.NewNop()
	profiles := profileservice.NewService(profileservice.Params{
		DB: db, Log: log, Repo: profilerepository.Provide(),
	})
	svc := NewService(Params{
		Config:   config.Config{Stripe: config.StripeConfig{WebhookSecret: testSecret}},
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     repository.Provide(),
		Holder:   holder,
		Profiles: profiles,
	})

	return &billingFixture{svc: svc, profiles: profiles}
}

func checkoutPayload(eventID, userID, email, priceID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {"object": {
			"client_reference_id": %q,
			"customer_email": %q,
			"line_items": {"data": [{"price": {"id": %q}}]}
		}}
	}`, eventID, userID, email, priceID))
}

func deliver(t *testing.T, f *billingFixture, payload []byte) (*domain.WebhookResult, error) {
	t.Helper()
	header := SignPayload(testSecret, payload, time.Now())
	return f.svc.HandleWebhook(context.Background(), payload, header)
}

func TestWebhookUpgradesPlan(t *testing.T) {
	f := setupBillingService(t)

	result, err := deliver(t, f, checkoutPayload("evt_1", "u1", "u1@example.com", "price_pro_monthly"))
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if result.Outcome != domain.OutcomePlanUpdated || result.Plan != plan.PlanPro {
		t.Fatalf("unexpected result: %+v", result)
	}

	profile, err := f.profiles.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Plan != plan.PlanPro || profile.Email != "u1@example.com" {
		t.Fatalf("profile not updated: %+v", profile)
	}
}

func TestWebhookReplayIsNoOp(t *testing.T) {
	f := setupBillingService(t)
	payload := checkoutPayload("evt_1", "u1", "u1@example.com", "price_pro_yearly")

	if _, err := deliver(t, f, payload); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	result, err := deliver(t, f, payload)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Outcome != domain.OutcomeDuplicate {
		t.Fatalf("expected duplicate outcome, got %q", result.Outcome)
	}

	events, err := f.svc.ListEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(events))
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := setupBillingService(t)
	payload := checkoutPayload("evt_1", "u1", "", "price_pro_monthly")

	_, err := f.svc.HandleWebhook(context.Background(), payload, "t=123,v1=deadbeef")
	if err != domain.ErrVerificationFailed {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}

	header := SignPayload(testSecret, payload, time.Now().Add(-time.Hour))
	if _, err := f.svc.HandleWebhook(context.Background(), payload, header); err != domain.ErrVerificationFailed {
		t.Fatalf("expected ErrVerificationFailed for stale header, got %v", err)
	}
}

func TestWebhookIgnoresUnknownEventType(t *testing.T) {
	f := setupBillingService(t)
	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)

	result, err := deliver(t, f, payload)
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if result.Outcome != domain.OutcomeIgnoredUnknownType {
		t.Fatalf("expected ignored outcome, got %q", result.Outcome)
	}
}

func TestWebhookIgnoresMissingUser(t *testing.T) {
	f := setupBillingService(t)

	result, err := deliver(t, f, checkoutPayload("evt_1", "", "x@example.com", "price_pro_monthly"))
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if result.Outcome != domain.OutcomeIgnoredMissingUser {
		t.Fatalf("expected missing user outcome, got %q", result.Outcome)
	}
}

func TestWebhookUnmappedPriceNeverDowngrades(t *testing.T) {
	f := setupBillingService(t)
	ctx := context.Background()

	if err := f.profiles.UpsertPlan(ctx, profiledomain.UpsertPlanRequest{UserID: "u1", Plan: plan.PlanPro}); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	result, err := deliver(t, f, checkoutPayload("evt_2", "u1", "", "price_legacy_gold"))
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if result.Outcome != domain.OutcomeIgnoredUnmappedPrice {
		t.Fatalf("expected unmapped price outcome, got %q", result.Outcome)
	}

	profile, err := f.profiles.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Plan != plan.PlanPro {
		t.Fatalf("plan must not change on unmapped price, got %q", profile.Plan)
	}
}

func TestWebhookEmailFallsBackToCustomerDetails(t *testing.T) {
	f := setupBillingService(t)
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"client_reference_id": "u1",
			"customer_details": {"email": "fallback@example.com"},
			"line_items": {"data": [{"price": {"id": "price_enterprise_monthly"}}]}
		}}
	}`)

	if _, err := deliver(t, f, payload); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}

	profile, err := f.profiles.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Email != "fallback@example.com" || profile.Plan != plan.PlanEnterprise {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestWebhookIgnoresSessionWithoutPrice(t *testing.T) {
	f := setupBillingService(t)
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"client_reference_id": "u1"}}
	}`)

	result, err := deliver(t, f, payload)
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if result.Outcome != domain.OutcomeIgnoredNoPrice {
		t.Fatalf("expected no-price outcome, got %q", result.Outcome)
	}
}

func TestCheckoutRequiresConfiguredProvider(t *testing.T) {
	f := setupBillingService(t)

	_, err := f.svc.CreateCheckoutSession(context.Background(), domain.CheckoutRequest{
		UserID: "u1", Plan: plan.PlanPro,
	})
	if err != domain.ErrProviderNotReady {
		t.Fatalf("expected ErrProviderNotReady, got %v", err)
	}
}

func TestCheckoutRejectsUnpurchasablePlan(t *testing.T) {
	f := setupBillingService(t)

	for _, p := range []plan.Plan{plan.PlanFree, plan.Plan("platinum")} {
		_, err := f.svc.CreateCheckoutSession(context.Background(), domain.CheckoutRequest{
			UserID: "u1", Plan: p,
		})
		if err != domain.ErrInvalidPlan {
			t.Fatalf("plan %q: expected ErrInvalidPlan, got %v", p, err)
		}
	}
}
