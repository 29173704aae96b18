package generation

import (
	"github.com/copyadhq/copyad/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("generation",
	fx.Provide(func(cfg config.Config, log *zap.Logger) Provider {
		return NewOpenAIProvider(cfg.Generation, log)
	}),
)
