//go:build wireinject
// +build wireinject

package mcp

import (
	"github.com/google/wire"

	"github.com/fkoehler/stepscout/internal/config"
	"github.com/fkoehler/stepscout/internal/search"
	"github.com/fkoehler/stepscout/internal/session"
	"github.com/fkoehler/stepscout/pkg/logging"
	"github.com/fkoehler/stepscout/pkg/stepstone"
)

// InitializeResources creates Resources with all components wired up.
func InitializeResources(cfg config.Config, logger *logging.Logger) (*Resources, error) {
	wire.Build(
		provideStepstoneConfig,
		stepstone.NewClient,
		wire.Bind(new(search.Provider), new(*stepstone.Client)),
		wire.Bind(new(DetailFetcher), new(*stepstone.Client)),

		provideSearchService,
		provideSessionStore,

		newResources,
	)

	return &Resources{}, nil
}

// provideStepstoneConfig extracts the scraping client config.
func provideStepstoneConfig(cfg config.Config, logger *logging.Logger) stepstone.Config {
	return stepstone.Config{
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	}
}

func provideSearchService(cfg config.Config, provider search.Provider, logger *logging.Logger) (*search.Service, error) {
	return search.NewService(provider,
		search.WithWorkers(cfg.SearchWorkers),
		search.WithTimeout(cfg.SearchTimeout),
		search.WithLogger(logger),
	)
}

func provideSessionStore(cfg config.Config, logger *logging.Logger) *session.Store {
	return session.NewStore(cfg.SessionTTL, logger)
}

func newResources(svc *search.Service, store *session.Store, detailer DetailFetcher) *Resources {
	return &Resources{
		SearchSvc: svc,
		Sessions:  store,
		Detailer:  detailer,
	}
}
