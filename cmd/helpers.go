package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ziadkadry99/smartie/internal/config"
	"github.com/ziadkadry99/smartie/internal/db"
	"github.com/ziadkadry99/smartie/internal/exchange"
	"github.com/ziadkadry99/smartie/internal/location"
	"github.com/ziadkadry99/smartie/internal/responder"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `smartie init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openExchangeLog opens the SQLite exchange log under the configured data
// directory.
func openExchangeLog(cfg *config.Config) (*db.DB, *exchange.Store, error) {
	if err := os.MkdirAll(cfg.Log.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(filepath.Join(cfg.Log.DataDir, "smartie.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return database, exchange.NewStore(database), nil
}

// newResponder wires the answer client, the exchange log and logging
// into a Responder.
func newResponder(cfg *config.Config, recorder responder.Recorder, logger *zap.Logger) (*responder.Responder, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	client := responder.NewClient(cfg.Endpoint.AskURL, timeout)
	return responder.New(client, responder.Options{
		ErrorText: cfg.Widget.ErrorText,
		Recorder:  recorder,
		Logger:    logger,
	}), nil
}

func newReporter(cfg *config.Config, logger *zap.Logger) (*location.Reporter, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	return location.NewReporter(cfg.Endpoint.LocationURL, timeout, logger), nil
}
