package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/copyadhq/copyad/internal/billing/domain"
	"github.com/copyadhq/copyad/internal/config"
	"github.com/copyadhq/copyad/internal/observability/metrics"
	"github.com/copyadhq/copyad/internal/plan"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const provider = "stripe"

const eventCheckoutCompleted = "checkout.session.completed"

type Params struct {
	fx.In

	Config   config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Holder   *plan.CatalogHolder
	Profiles profiledomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	cfg      config.StripeConfig
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	holder   *plan.CatalogHolder
	profiles profiledomain.Service
	metrics  *metrics.Metrics
	verifier *Verifier
	stripe   *stripeclient.API
}

func NewService(p Params) domain.Service {
	var api *stripeclient.API
	if key := strings.TrimSpace(p.Config.Stripe.SecretKey); key != "" {
		api = &stripeclient.API{}
		api.Init(key, nil)
	}

	return &Service{
		cfg:      p.Config.Stripe,
		db:       p.DB,
		log:      p.Log.Named("billing.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		holder:   p.Holder,
		profiles: p.Profiles,
		metrics:  p.Metrics,
		verifier: NewVerifier(p.Config.Stripe.WebhookSecret),
		stripe:   api,
	}
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type checkoutSession struct {
	ClientReferenceID string `json:"client_reference_id"`
	CustomerEmail     string `json:"customer_email"`
	CustomerDetails   struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	LineItems struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"line_items"`
}

func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (*domain.WebhookResult, error) {
	if err := s.verifier.Verify(payload, signatureHeader); err != nil {
		s.log.Warn("webhook rejected", zap.Error(err))
		return nil, domain.ErrVerificationFailed
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.ErrInvalidEvent
	}

	// Replays short-circuit before any resolution work.
	existing, err := s.repo.FindByProviderEventID(ctx, s.db, event.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &domain.WebhookResult{
			EventID: event.ID,
			Type:    event.Type,
			Outcome: domain.OutcomeDuplicate,
			UserID:  existing.UserID,
			Plan:    existing.Plan,
		}, nil
	}

	record := &domain.BillingEvent{
		ID:              s.genID.Generate(),
		Provider:        provider,
		ProviderEventID: event.ID,
		Type:            event.Type,
		Payload:         datatypes.JSON(payload),
	}

	switch event.Type {
	case eventCheckoutCompleted:
		s.resolveCheckoutCompleted(ctx, &event, record)
	default:
		record.Outcome = domain.OutcomeIgnoredUnknownType
	}

	if record.Outcome == domain.OutcomePlanUpdated {
		if err := s.profiles.UpsertPlan(ctx, profiledomain.UpsertPlanRequest{
			UserID: record.UserID,
			Plan:   record.Plan,
			Email:  s.emailFromPayload(&event),
		}); err != nil {
			return nil, err
		}
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, record)
	if err != nil {
		return nil, err
	}
	outcome := record.Outcome
	if !inserted {
		outcome = domain.OutcomeDuplicate
	}

	s.metrics.RecordBillingEvent(ctx,
		attribute.String("event_type", event.Type),
		attribute.String("outcome", string(outcome)),
	)
	s.log.Info("webhook resolved",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("outcome", string(outcome)),
	)

	return &domain.WebhookResult{
		EventID: event.ID,
		Type:    event.Type,
		Outcome: outcome,
		UserID:  record.UserID,
		Plan:    record.Plan,
	}, nil
}

// resolveCheckoutCompleted fills the record in place. Every ignore path
// is terminal and acknowledged; a user's plan is never downgraded
// because a price was unrecognized.
func (s *Service) resolveCheckoutCompleted(ctx context.Context, event *stripeEvent, record *domain.BillingEvent) {
	var session checkoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		record.Outcome = domain.OutcomeIgnoredUnknownType
		return
	}

	userID := strings.TrimSpace(session.ClientReferenceID)
	if userID == "" {
		record.Outcome = domain.OutcomeIgnoredMissingUser
		return
	}
	record.UserID = userID

	var priceID string
	if len(session.LineItems.Data) > 0 {
		priceID = strings.TrimSpace(session.LineItems.Data[0].Price.ID)
	}
	if priceID == "" {
		record.Outcome = domain.OutcomeIgnoredNoPrice
		return
	}
	record.PriceID = priceID

	purchased, ok := s.holder.Catalog().PlanFor(priceID)
	if !ok {
		s.log.Warn("unmapped price on completed checkout",
			zap.String("event_id", event.ID),
			zap.String("price_id", priceID),
		)
		record.Outcome = domain.OutcomeIgnoredUnmappedPrice
		return
	}

	record.Plan = purchased
	record.Outcome = domain.OutcomePlanUpdated
}

func (s *Service) emailFromPayload(event *stripeEvent) string {
	var session checkoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return ""
	}
	if email := strings.TrimSpace(session.CustomerEmail); email != "" {
		return email
	}
	return strings.TrimSpace(session.CustomerDetails.Email)
}

func (s *Service) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	interval := req.Interval
	if interval == "" {
		interval = plan.IntervalMonthly
	}
	priceID, ok := s.holder.Catalog().PriceFor(req.Plan, interval)
	if !ok {
		return nil, domain.ErrInvalidPlan
	}
	if s.stripe == nil {
		return nil, domain.ErrProviderNotReady
	}

	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(req.UserID),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	session, err := s.stripe.CheckoutSessions.New(params)
	if err != nil {
		s.log.Error("checkout session creation failed",
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.String("user_id", req.UserID),
		zap.String("plan", string(req.Plan)),
		zap.String("session_id", session.ID),
	)
	return &domain.CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func (s *Service) ListEvents(ctx context.Context, limit int) ([]domain.BillingEvent, error) {
	return s.repo.ListEvents(ctx, s.db, limit)
}
