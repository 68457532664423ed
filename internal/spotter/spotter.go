// Package spotter assembles the lookup chain from configuration.
package spotter

import (
	"log/slog"

	"github.com/seanssullivan/iss-spotter/internal/config"
	"github.com/seanssullivan/iss-spotter/internal/lookup"
	"github.com/seanssullivan/iss-spotter/internal/transport"
)

// NewPassFetcher returns the pass stage selected by cfg.PassBackend.
func NewPassFetcher(cfg config.Config, getter transport.Getter, logger *slog.Logger) lookup.PassFetcher {
	if cfg.PassBackend == config.BackendPredict {
		return lookup.NewPredictedPassFetcher(getter, cfg.Predict, logger)
	}
	return lookup.NewHTTPPassFetcher(getter, cfg.PassURL)
}

// New builds an Orchestrator whose three stages share one HTTP getter.
func New(cfg config.Config, logger *slog.Logger) *lookup.Orchestrator {
	getter := transport.NewHTTPGetter(transport.Options{
		Timeout:      cfg.HTTPTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	return lookup.NewOrchestrator(
		lookup.NewHTTPAddressResolver(getter, cfg.IPURL),
		lookup.NewHTTPCoordinateResolver(getter, cfg.GeoURL),
		NewPassFetcher(cfg, getter, logger),
		logger,
	)
}
