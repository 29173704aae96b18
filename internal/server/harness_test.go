package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	addomain "github.com/copyadhq/copyad/internal/ad/domain"
	adrepository "github.com/copyadhq/copyad/internal/ad/repository"
	adservice "github.com/copyadhq/copyad/internal/ad/service"
	"github.com/copyadhq/copyad/internal/auth"
	"github.com/copyadhq/copyad/internal/authorization"
	billingdomain "github.com/copyadhq/copyad/internal/billing/domain"
	billingrepository "github.com/copyadhq/copyad/internal/billing/repository"
	billingservice "github.com/copyadhq/copyad/internal/billing/service"
	"github.com/copyadhq/copyad/internal/config"
	"github.com/copyadhq/copyad/internal/generation"
	"github.com/copyadhq/copyad/internal/observability"
	"github.com/copyadhq/copyad/internal/plan"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
	profilerepository "github.com/copyadhq/copyad/internal/profile/repository"
	profileservice "github.com/copyadhq/copyad/internal/profile/service"
	"github.com/copyadhq/copyad/internal/quota"
	templatedomain "github.com/copyadhq/copyad/internal/template/domain"
	templaterepository "github.com/copyadhq/copyad/internal/template/repository"
	templateservice "github.com/copyadhq/copyad/internal/template/service"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testWebhookSecret = "whsec_test"
)

type fakeProvider struct {
	result *generation.Result
	err    error
}

func (p *fakeProvider) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type testServer struct {
	srv      *Server
	provider *fakeProvider
	profiles profiledomain.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&profiledomain.UserProfile{},
		&addomain.GeneratedAd{},
		&templatedomain.Template{},
		&billingdomain.BillingEvent{},
	); err != nil {
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

	cfg := config.Config{
		AuthJWTSecret: testJWTSecret,
		Stripe:        config.StripeConfig{WebhookSecret: testWebhookSecret},
	}
	log := zap.NewNop()

	profiles := profileservice.NewService(profileservice.Params{
		DB: db, Log: log, Repo: profilerepository.Provide(),
	})
	templates := templateservice.NewService(templateservice.Params{
		DB: db, Log: log, GenID: node, Repo: templaterepository.Provide(),
	})

	adRepo := adrepository.Provide()
	gate := quota.NewGate(quota.Params{
		Config:   cfg,
		Log:      log,
		Holder:   holder,
		Profiles: profiles,
		Usage:    adservice.ProvideUsageCounter(db, adRepo),
	})

	provider := &fakeProvider{result: &generation.Result{Copy: "Fresh copy!", Model: "test-model", Provider: "stub"}}
	ads := adservice.NewService(adservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      adRepo,
		Gate:      gate,
		Templates: templates,
		Provider:  provider,
	})

	billingSvc := billingservice.NewService(billingservice.Params{
		Config:   cfg,
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     billingrepository.Provide(),
		Holder:   holder,
		Profiles: profiles,
	})

	enforcer, err := authorization.NewEnforcer(db)
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	authzSvc := authorization.NewService(authorization.Params{
		Log:      log,
		Enforcer: enforcer,
		Profiles: profiles,
	})

	engine := NewEngine(cfg, observability.Config{}, nil)
	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		DB:         db,
		Verifier:   auth.NewVerifier(cfg),
		AuthzSvc:   authzSvc,
		ProfileSvc: profiles,
		AdSvc:      ads,
		TemplSvc:   templates,
		BillingSvc: billingSvc,
		Gate:       gate,
		Holder:     holder,
	})

	return &testServer{srv: srv, provider: provider, profiles: profiles}
}

func (ts *testServer) token(t *testing.T, userID, email string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}
