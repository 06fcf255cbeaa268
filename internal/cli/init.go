// Package cli provides common initialization for the weekspend binaries
// and the report command.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weekspend/internal/backend"
	"weekspend/internal/config"
	"weekspend/internal/log"
	"weekspend/internal/weekly"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadConfig loads .env (when present) and the environment, then validates.
func LoadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewAggregator builds the report aggregator for cfg's time zone and locale.
// A nil now uses the wall clock.
func NewAggregator(cfg *config.Config, now func() time.Time) (*weekly.Aggregator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	locale, ok := weekly.LocaleFor(cfg.WeekLocale)
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q", cfg.WeekLocale)
	}
	return weekly.NewAggregator(
		weekly.WithClock(now),
		weekly.WithLocation(loc),
		weekly.WithLocale(locale),
	), nil
}

// OpenBackend creates the ledger selected by cfg.DataBackend.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := bcfg.Validate(); err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
