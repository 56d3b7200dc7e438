// Package config loads the application configuration from environment
// variables and an optional .env file.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bgol/updatetd/internal/logging"
	"github.com/bgol/updatetd/internal/tradedb"
)

// Config holds all configuration of the synchronizer.
type Config struct {
	// Database is the path of the TradeDangerous SQLite file.
	Database string `mapstructure:"database"`
	// Create gates auto-creation of unknown reference records.
	Create CreateConfig `mapstructure:"create"`
	// RareItemCache enables the per-station rare item cache.
	RareItemCache bool `mapstructure:"rareitem_cache"`
	// JournalDir is the game's journal directory watched for events.
	JournalDir string `mapstructure:"journal_dir"`
	// DataDir holds the CSV reference exports for the import command.
	DataDir string `mapstructure:"data_dir"`
	// BackupDir holds the database backups.
	BackupDir string `mapstructure:"backup_dir"`
	// BackupKeep is the number of backups retained by cleanup.
	BackupKeep int `mapstructure:"backup_keep"`
	// Log configures the logger.
	Log logging.Config `mapstructure:"log"`
}

// CreateConfig holds the three independent auto-creation flags.
type CreateConfig struct {
	Item   bool `mapstructure:"item"`
	Ship   bool `mapstructure:"ship"`
	Module bool `mapstructure:"module"`
}

// Load reads configuration from the environment, after overloading a .env
// file if one exists. Variables are prefixed UPDATETD_, nested keys joined
// with underscores (UPDATETD_CREATE_ITEM, UPDATETD_LOG_LEVEL, ...).
func Load() (*Config, error) {
	_ = godotenv.Overload(".env")

	v := viper.New()
	v.SetEnvPrefix("updatetd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database", "")
	v.SetDefault("create.item", true)
	v.SetDefault("create.ship", true)
	v.SetDefault("create.module", false)
	v.SetDefault("rareitem_cache", false)
	v.SetDefault("journal_dir", "")
	v.SetDefault("data_dir", "data")
	v.SetDefault("backup_dir", "backups")
	v.SetDefault("backup_keep", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Settings maps the configuration to the core's settings record.
func (c *Config) Settings() tradedb.Settings {
	return tradedb.Settings{
		Path:             c.Database,
		CreateItem:       c.Create.Item,
		CreateShip:       c.Create.Ship,
		CreateModule:     c.Create.Module,
		UseRareItemCache: c.RareItemCache,
	}
}
