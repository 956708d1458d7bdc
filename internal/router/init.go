package router

import (
	"github.com/dwisetyawan/account-service/internal/application"
	"github.com/dwisetyawan/account-service/internal/container"
	pginfra "github.com/dwisetyawan/account-service/internal/infrastructure/postgres"
	handlers "github.com/dwisetyawan/account-service/internal/interface/http"
	"github.com/dwisetyawan/account-service/internal/router/modules"
	"github.com/dwisetyawan/account-service/pkg/helpers"
)

func buildAccountModule() *modules.AccountModule {
	cfg := container.GetConfig()

	repo := pginfra.NewAccountRepository(container.GetPGPool())

	var images application.ImageStore
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		images = helpers.NewGCSImageStore(gcs, cfg.GCSBucket)
	}

	var cache application.ProfileCache
	if rdb := container.GetRedis(); rdb != nil {
		cache = helpers.NewRedisCache(rdb)
	}

	service := application.NewService(
		repo,
		images,
		cache,
		container.GetRabbitPub(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESAccountsIndex,
	)

	handler := handlers.NewAccountHandler(service, container.GetLogger())
	return modules.NewAccountModule(handler)
}

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildAccountModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
