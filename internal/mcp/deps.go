package mcp

import (
	"context"

	"github.com/fkoehler/stepscout/internal/config"
	"github.com/fkoehler/stepscout/internal/domain"
	"github.com/fkoehler/stepscout/internal/search"
	"github.com/fkoehler/stepscout/internal/session"
	"github.com/fkoehler/stepscout/pkg/logging"
	"github.com/fkoehler/stepscout/pkg/stepstone"
)

// DetailFetcher re-derives a single listing's full record from its source
// link.
type DetailFetcher interface {
	Detail(ctx context.Context, link string) (domain.JobDetail, error)
}

// Resources groups everything the tools need. The session store is owned
// here, at the composition root, and handed into both tools explicitly.
type Resources struct {
	SearchSvc *search.Service
	Sessions  *session.Store
	Detailer  DetailFetcher
}

// NewResources hand-wires the default resource set from configuration.
func NewResources(cfg config.Config, logger *logging.Logger) (*Resources, error) {
	client, err := stepstone.NewClient(stepstone.Config{
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	svc, err := search.NewService(client,
		search.WithWorkers(cfg.SearchWorkers),
		search.WithTimeout(cfg.SearchTimeout),
		search.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &Resources{
		SearchSvc: svc,
		Sessions:  session.NewStore(cfg.SessionTTL, logger),
		Detailer:  client,
	}, nil
}
