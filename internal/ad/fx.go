package ad

import (
	"github.com/copyadhq/copyad/internal/ad/repository"
	"github.com/copyadhq/copyad/internal/ad/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ad.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.ProvideUsageCounter),
	fx.Provide(service.NewService),
)
