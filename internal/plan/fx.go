package plan

import (
	"github.com/copyadhq/copyad/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.catalog",
	fx.Provide(func(cfg config.Config) (*CatalogHolder, error) {
		return NewCatalogHolder(cfg.Quota.PlanConfigPath)
	}),
)
