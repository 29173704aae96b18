package billing

import (
	"github.com/copyadhq/copyad/internal/billing/repository"
	"github.com/copyadhq/copyad/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
