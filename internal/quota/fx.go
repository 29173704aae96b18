package quota

import (
	"strings"

	"github.com/copyadhq/copyad/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("quota",
	fx.Provide(provideRedis),
	fx.Provide(NewLocker),
	fx.Provide(NewGate),
)

// provideRedis returns nil when no address is configured; the gate then
// runs in soft mode regardless of the enforcement flag.
func provideRedis(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
