package profile

import (
	"github.com/copyadhq/copyad/internal/profile/repository"
	"github.com/copyadhq/copyad/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
