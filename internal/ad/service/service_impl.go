package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/copyadhq/copyad/internal/ad/domain"
	"github.com/copyadhq/copyad/internal/generation"
	"github.com/copyadhq/copyad/internal/observability/metrics"
	"github.com/copyadhq/copyad/internal/quota"
	templatedomain "github.com/copyadhq/copyad/internal/template/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Gate      *quota.Gate
	Templates templatedomain.Service
	Provider  generation.Provider
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	gate      *quota.Gate
	templates templatedomain.Service
	provider  generation.Provider
	metrics   *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("ad.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		gate:      p.Gate,
		templates: p.Templates,
		provider:  p.Provider,
		metrics:   p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, userID string, req domain.GenerateRequest) (*domain.GeneratedAd, error) {
	product := strings.TrimSpace(req.Product)
	if product == "" {
		return nil, domain.ErrInvalidProduct
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))

	decision, release, err := s.gate.Admit(ctx, userID)
	if err != nil {
		if err == quota.ErrQuotaExceeded {
			s.metrics.RecordQuotaDenied(ctx,
				attribute.String("plan", planLabel(decision)),
				attribute.String("platform", platform),
			)
			s.log.Info("generation denied by quota",
				zap.String("user_id", userID),
				zap.String("plan", planLabel(decision)),
			)
		}
		return nil, err
	}
	defer release()

	var templateBody, templateSlug string
	if ref := strings.TrimSpace(req.TemplateRef); ref != "" {
		tmpl, err := s.templates.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		templateBody = tmpl.Content
		templateSlug = tmpl.Slug
		if platform == "" {
			platform = tmpl.Platform
		}
		if strings.TrimSpace(req.Tone) == "" {
			req.Tone = tmpl.Tone
		}
	}

	genReq := generation.Request{
		Product:     product,
		Description: strings.TrimSpace(req.Description),
		Platform:    platform,
		Tone:        strings.ToLower(strings.TrimSpace(req.Tone)),
		Language:    strings.TrimSpace(req.Language),
	}
	genReq.Prompt = generation.RenderPrompt(templateBody, genReq)

	result, err := s.provider.Generate(ctx, genReq)
	if err != nil {
		s.metrics.RecordGenerationFailure(ctx,
			attribute.String("plan", string(decision.Plan)),
			attribute.String("platform", platform),
		)
		s.log.Warn("generation failed, nothing persisted",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	ad := &domain.GeneratedAd{
		ID:           s.genID.Generate(),
		UserID:       userID,
		Product:      product,
		Description:  genReq.Description,
		Platform:     platform,
		Tone:         genReq.Tone,
		Language:     genReq.Language,
		TemplateSlug: templateSlug,
		Copy:         result.Copy,
		Model:        result.Model,
		Provider:     result.Provider,
	}
	if err := s.repo.Insert(ctx, s.db, ad); err != nil {
		return nil, err
	}

	s.metrics.RecordGeneration(ctx,
		attribute.String("plan", string(decision.Plan)),
		attribute.String("platform", platform),
		attribute.String("outcome", "ok"),
	)
	s.log.Info("ad generated",
		zap.String("user_id", userID),
		zap.String("ad_id", ad.ID.String()),
		zap.String("plan", string(decision.Plan)),
	)
	return ad, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.GeneratedAd, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*domain.GeneratedAd, error) {
	adID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	ad, err := s.repo.FindByID(ctx, s.db, userID, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, domain.ErrNotFound
	}
	return ad, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	adID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, userID, adID)
}

func planLabel(decision *quota.Decision) string {
	if decision == nil {
		return "unknown"
	}
	return string(decision.Plan)
}
