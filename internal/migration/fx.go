package migration

import (
	addomain "github.com/copyadhq/copyad/internal/ad/domain"
	billingdomain "github.com/copyadhq/copyad/internal/billing/domain"
	"github.com/copyadhq/copyad/internal/config"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
	"github.com/copyadhq/copyad/internal/seed"
	templatedomain "github.com/copyadhq/copyad/internal/template/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(
				&profiledomain.UserProfile{},
				&addomain.GeneratedAd{},
				&templatedomain.Template{},
				&billingdomain.BillingEvent{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultTemplates(conn)
	}),
)
