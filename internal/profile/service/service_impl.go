package service

import (
	"context"
	"strings"

	"github.com/copyadhq/copyad/internal/plan"
	"github.com/copyadhq/copyad/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("profile.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

func (s *Service) ResolvePlan(ctx context.Context, userID string) (plan.Plan, error) {
	profile, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	if profile == nil || profile.Plan == "" {
		return plan.DefaultPlan, nil
	}
	return profile.Plan, nil
}

func (s *Service) ResolveRole(ctx context.Context, userID string) (string, error) {
	profile, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	if profile == nil || strings.TrimSpace(profile.Role) == "" {
		return domain.RoleUser, nil
	}
	return profile.Role, nil
}

func (s *Service) UpsertPlan(ctx context.Context, req domain.UpsertPlanRequest) error {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.ErrNotFound
	}

	existing, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}

	profile := &domain.UserProfile{
		ID:    userID,
		Email: strings.TrimSpace(req.Email),
		Plan:  req.Plan,
		Role:  domain.RoleUser,
	}
	if existing != nil {
		profile.Role = existing.Role
		profile.CreatedAt = existing.CreatedAt
		if profile.Email == "" {
			profile.Email = existing.Email
		}
	}

	if err := s.repo.Upsert(ctx, s.db, profile); err != nil {
		return err
	}

	s.log.Info("plan record upserted",
		zap.String("user_id", userID),
		zap.String("plan", string(req.Plan)),
	)
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.UserProfile, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) UpdateRole(ctx context.Context, userID, role string) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}
	return s.repo.UpdateRole(ctx, s.db, userID, role)
}

// Per-seat list prices used for the advisory revenue figure on the admin
// summary. Not a billing ledger.
const (
	proMonthlyPrice        = 15
	enterpriseMonthlyPrice = 25
)

func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	counts, err := s.repo.CountByPlan(ctx, s.db)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{PlanDistribution: counts}
	for _, count := range counts {
		summary.TotalUsers += count
	}
	summary.MonthlyRevenue = counts[string(plan.PlanPro)]*proMonthlyPrice +
		counts[string(plan.PlanEnterprise)]*enterpriseMonthlyPrice
	summary.ActiveSubscriptions = counts[string(plan.PlanPro)] + counts[string(plan.PlanEnterprise)]
	return summary, nil
}
