package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/copyadhq/copyad/internal/template/domain"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("template.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Template, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.ErrInvalidContent
	}

	key := slug.Make(name)
	existing, err := s.repo.FindBySlug(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrSlugTaken
	}

	tmpl := &domain.Template{
		ID:        s.genID.Generate(),
		Slug:      key,
		Name:      name,
		Platform:  strings.ToLower(strings.TrimSpace(req.Platform)),
		Tone:      strings.ToLower(strings.TrimSpace(req.Tone)),
		Content:   content,
		IsDefault: req.IsDefault,
	}
	if err := s.repo.Insert(ctx, s.db, tmpl); err != nil {
		return nil, err
	}

	s.log.Info("template created",
		zap.String("template_id", tmpl.ID.String()),
		zap.String("slug", tmpl.Slug),
	)
	return tmpl, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Template, error) {
	filter.Platform = strings.ToLower(strings.TrimSpace(filter.Platform))
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Get(ctx context.Context, ref string) (*domain.Template, error) {
	tmpl, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, domain.ErrNotFound
	}
	return tmpl, nil
}

func (s *Service) Delete(ctx context.Context, ref string) error {
	tmpl, err := s.find(ctx, ref)
	if err != nil {
		return err
	}
	if tmpl == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, tmpl.ID)
}

func (s *Service) find(ctx context.Context, ref string) (*domain.Template, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrNotFound
	}

	tmpl, err := s.repo.FindBySlug(ctx, s.db, ref)
	if err != nil || tmpl != nil {
		return tmpl, err
	}

	id, parseErr := snowflake.ParseString(ref)
	if parseErr != nil {
		return nil, nil
	}
	return s.repo.FindByID(ctx, s.db, id)
}
