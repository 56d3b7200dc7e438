package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bgol/updatetd/internal/config"
	"github.com/bgol/updatetd/internal/logging"
	"github.com/bgol/updatetd/internal/tradedb"
)

// loadConfig loads the configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if flagDB != "" {
		cfg.Database = flagDB
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// setup builds the configuration, the logger and a connected TradeDB.
func setup() (*config.Config, *zap.Logger, *tradedb.TradeDB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	tdb := tradedb.New(log, cfg.Settings())
	return cfg, log, tdb, nil
}
