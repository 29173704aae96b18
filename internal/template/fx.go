package template

import (
	"github.com/copyadhq/copyad/internal/template/repository"
	"github.com/copyadhq/copyad/internal/template/service"
	"go.uber.org/fx"
)

var Module = fx.Module("template.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
