package cmd

import (
	"fmt"
	"time"

	"ixp-tracker/core/config"
	"ixp-tracker/core/database"
	"ixp-tracker/core/logger"
	"ixp-tracker/core/metrics"
	"ixp-tracker/feature/tracker/store"

	"go.uber.org/zap"
)

// runtime bundles what every command needs after startup.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// bootstrap loads configuration, builds the logger and connects the store.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &runtime{cfg: cfg, logger: l, store: store.New(db)}, nil
}

// finish records a completed batch run and exports metrics if configured.
func (r *runtime) finish(command string) {
	metrics.LastRunTimestamp.WithLabelValues(command).Set(float64(time.Now().Unix()))
	if err := metrics.WriteTextfile(r.cfg.Metrics); err != nil {
		r.logger.Warn("Metrics export failed", zap.Error(err))
	}
	_ = r.logger.Sync()
}
