package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"successplan/internal/config"
	"successplan/internal/logger"
	"successplan/internal/metrics"
	"successplan/internal/store"
	"successplan/internal/viewmode"
)

// ResolveConfig loads successplan.yml from workspace, falling back to
// defaults when the file is missing. A non-empty driver overrides the file.
func ResolveConfig(workspace, driver string) (*config.Config, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if driver != "" {
		cfg.Storage.Driver = driver
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	cfg.Storage.Workspace = workspace
	return cfg, nil
}

// Bootstrap opens the configured backend and loads the resident plan. The
// caller owns the returned State and must Close it.
func Bootstrap(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*State, error) {
	if log == nil {
		log = logger.Nop()
	}
	backend, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.MustNewMetrics(reg)
	}
	st, err := Open(ctx, Options{
		Gateway: store.Gateway{Backend: backend, Seed: Seed},
		Gate:    &viewmode.Gate{},
		Log:     log,
		Metrics: m,
	})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return st, nil
}
