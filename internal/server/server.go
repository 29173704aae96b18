package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/copyadhq/copyad/internal/ad"
	addomain "github.com/copyadhq/copyad/internal/ad/domain"
	"github.com/copyadhq/copyad/internal/auth"
	"github.com/copyadhq/copyad/internal/authorization"
	"github.com/copyadhq/copyad/internal/billing"
	billingdomain "github.com/copyadhq/copyad/internal/billing/domain"
	"github.com/copyadhq/copyad/internal/config"
	"github.com/copyadhq/copyad/internal/generation"
	"github.com/copyadhq/copyad/internal/observability"
	obsmiddleware "github.com/copyadhq/copyad/internal/observability/logger"
	obsmetrics "github.com/copyadhq/copyad/internal/observability/metrics"
	obstracing "github.com/copyadhq/copyad/internal/observability/tracing"
	"github.com/copyadhq/copyad/internal/plan"
	"github.com/copyadhq/copyad/internal/profile"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
	"github.com/copyadhq/copyad/internal/quota"
	"github.com/copyadhq/copyad/internal/template"
	templatedomain "github.com/copyadhq/copyad/internal/template/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	plan.Module,
	profile.Module,
	template.Module,
	ad.Module,
	quota.Module,
	generation.Module,
	billing.Module,
	auth.Module,
	authorization.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	verifier   *auth.Verifier
	authzSvc   authorization.Service
	profileSvc profiledomain.Service
	adSvc      addomain.Service
	templSvc   templatedomain.Service
	billingSvc billingdomain.Service
	gate       *quota.Gate
	holder     *plan.CatalogHolder
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Verifier   *auth.Verifier
	AuthzSvc   authorization.Service
	ProfileSvc profiledomain.Service
	AdSvc      addomain.Service
	TemplSvc   templatedomain.Service
	BillingSvc billingdomain.Service
	Gate       *quota.Gate
	Holder     *plan.CatalogHolder
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		verifier:   p.Verifier,
		authzSvc:   p.AuthzSvc,
		profileSvc: p.ProfileSvc,
		adSvc:      p.AdSvc,
		templSvc:   p.TemplSvc,
		billingSvc: p.BillingSvc,
		gate:       p.Gate,
		holder:     p.Holder,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", s.AuthRequired())

	v1.GET("/me", s.Me)

	// -------- Ads --------
	v1.POST("/ads", s.authorizeAction(authorization.ObjectAd, authorization.ActionCreate), s.GenerateAd)
	v1.GET("/ads", s.authorizeAction(authorization.ObjectAd, authorization.ActionView), s.ListAds)
	v1.GET("/ads/:id", s.authorizeAction(authorization.ObjectAd, authorization.ActionView), s.GetAdByID)
	v1.DELETE("/ads/:id", s.authorizeAction(authorization.ObjectAd, authorization.ActionDelete), s.DeleteAd)

	// -------- Templates --------
	v1.GET("/templates", s.authorizeAction(authorization.ObjectTemplate, authorization.ActionView), s.ListTemplates)
	v1.GET("/templates/:ref", s.authorizeAction(authorization.ObjectTemplate, authorization.ActionView), s.GetTemplate)

	// -------- Billing --------
	v1.POST("/billing/checkout", s.authorizeAction(authorization.ObjectBilling, authorization.ActionCreate), s.CreateCheckout)
}

func (s *Server) registerWebhookRoutes() {
	// Provider deliveries carry their own signature; no bearer auth here.
	s.engine.POST("/webhooks/stripe", s.HandleStripeWebhook)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/v1/admin", s.AuthRequired())

	admin.GET("/users", s.authorizeAction(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	admin.PATCH("/users/:id/role", s.authorizeAction(authorization.ObjectUser, authorization.ActionManage), s.UpdateUserRole)
	admin.GET("/summary", s.authorizeAction(authorization.ObjectSummary, authorization.ActionView), s.GetSummary)
	admin.GET("/billing/events", s.authorizeAction(authorization.ObjectBilling, authorization.ActionView), s.ListBillingEvents)

	admin.POST("/templates", s.authorizeAction(authorization.ObjectTemplate, authorization.ActionCreate), s.CreateTemplate)
	admin.DELETE("/templates/:ref", s.authorizeAction(authorization.ObjectTemplate, authorization.ActionDelete), s.DeleteTemplate)
}
