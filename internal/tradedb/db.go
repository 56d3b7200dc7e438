// Package tradedb keeps a local TradeDangerous SQLite database in sync with
// telemetry from the game: system jumps, dockings and market, shipyard and
// outfitting snapshots. Events are normalized, diffed against an in-memory
// identity cache and applied to the store with minimal mutations.
package tradedb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotConnected is returned by operations that need a database handle while
// no database is configured or reachable.
var ErrNotConnected = errors.New("database not connected")

// Settings holds the configurable behavior of the synchronizer.
type Settings struct {
	// Path is the SQLite database file. Empty means "not configured".
	Path string
	// CreateItem allows auto-creation of unknown items and categories.
	CreateItem bool
	// CreateShip allows auto-creation of unknown ships.
	CreateShip bool
	// CreateModule allows auto-creation of unknown modules.
	CreateModule bool
	// UseRareItemCache enables seeding and flushing of the per-station
	// rare item cache.
	UseRareItemCache bool
}

// TradeDB owns the database handle, the identity cache and the
// reconciliation logic. Access is single-threaded: the event source delivers
// one event at a time and every handler runs to completion.
type TradeDB struct {
	log      *zap.Logger
	settings Settings
	db       *sql.DB
	cache    *cache

	// timestamp is the current event's timestamp in TimeFormat, set at the
	// start of every handler and stamped into modified columns on writes.
	timestamp string

	// reorderItem marks that an Item or Category was created and the per
	// category ui_order needs recomputing.
	reorderItem bool
}

// New creates a TradeDB, connects to the configured database and loads the
// reference tables into the cache. A missing or unconfigured database file is
// not an error; the TradeDB starts disconnected and every handler becomes a
// logged no-op until ChangeSettings points it at a usable file.
func New(log *zap.Logger, settings Settings) *TradeDB {
	t := &TradeDB{
		log:      log,
		settings: settings,
		cache:    newCache(),
	}
	t.connect()
	if err := t.loadCache(); err != nil {
		t.log.Error("initial cache load failed", zap.Error(err))
	}
	return t
}

// IsConnected reports whether a database handle is open.
func (t *TradeDB) IsConnected() bool {
	return t.db != nil
}

// Close closes the database handle, if any.
func (t *TradeDB) Close() error {
	if t.db == nil {
		return nil
	}
	err := t.db.Close()
	t.db = nil
	t.log.Info("database connection closed")
	return err
}

// connect closes any open handle and opens the configured database file. The
// file must already exist (use Create to make a new one); a missing file
// leaves the TradeDB disconnected.
func (t *TradeDB) connect() {
	_ = t.Close()

	if t.settings.Path == "" {
		t.log.Info("no database file configured")
		return
	}
	if t.settings.Path != ":memory:" {
		info, err := os.Stat(t.settings.Path)
		if err != nil || info.IsDir() {
			t.log.Error("database file not usable", zap.String("path", t.settings.Path), zap.Error(err))
			return
		}
	}

	db, err := open(t.settings.Path)
	if err != nil {
		t.log.Error("database open failed", zap.String("path", t.settings.Path), zap.Error(err))
		return
	}
	t.log.Info("connected to database", zap.String("path", t.settings.Path))
	t.db = db
}

// open opens a SQLite database and applies the connection pragmas.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer, keep the one connection alive so pragmas and the
	// in-memory database survive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA journal_mode=WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Create makes a new database file with the TradeDangerous schema. It is used
// by the init command; TradeDB itself never creates files.
func Create(path string) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// InitSchema creates all tables and indexes on the connected database.
func (t *TradeDB) InitSchema() error {
	if !t.IsConnected() {
		return ErrNotConnected
	}
	if _, err := t.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Reload replaces the identity cache from the store, used after creating the
// schema on a fresh database or after external bulk changes.
func (t *TradeDB) Reload() error {
	return t.loadCache()
}

// ChangeSettings applies new settings. A changed database path triggers a
// reconnect and a full cache reload.
func (t *TradeDB) ChangeSettings(settings Settings) {
	reconnect := settings.Path != t.settings.Path
	t.settings = settings
	if reconnect {
		t.log.Info("database file changed", zap.String("path", settings.Path))
		t.connect()
		if err := t.loadCache(); err != nil {
			t.log.Error("cache reload failed", zap.Error(err))
		}
	}
}

// Settings returns the active settings.
func (t *TradeDB) Settings() Settings {
	return t.settings
}

// Execute runs a single statement with per-statement durability and logs it
// with its duration at debug level.
func (t *TradeDB) Execute(stmt string, bind ...any) (sql.Result, error) {
	if !t.IsConnected() {
		return nil, ErrNotConnected
	}
	start := time.Now()
	res, err := t.db.Exec(stmt, bind...)
	t.log.Debug("execute",
		zap.Duration("took", time.Since(start)),
		zap.String("stmt", stmt),
		zap.Any("bind", bind),
	)
	if err != nil {
		return nil, fmt.Errorf("execute %q: %w", stmt, err)
	}
	return res, nil
}

// query runs a row-returning statement.
func (t *TradeDB) query(stmt string, bind ...any) (*sql.Rows, error) {
	if !t.IsConnected() {
		return nil, ErrNotConnected
	}
	rows, err := t.db.Query(stmt, bind...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", stmt, err)
	}
	return rows, nil
}

// TableCounts returns the row count per entity table, used by the status
// command.
func (t *TradeDB) TableCounts() (map[string]int64, error) {
	if !t.IsConnected() {
		return nil, ErrNotConnected
	}
	counts := make(map[string]int64)
	for _, table := range []string{
		"Added", "Category", "Item", "RareItem", "Ship", "Upgrade",
		"System", "Station", "StationItem", "ShipVendor", "UpgradeVendor",
	} {
		var n int64
		if err := t.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// setTimestamp parses an event timestamp and stores it as the modification
// time for the writes of the current event. Falls back to the current time if
// the event timestamp is unparseable.
func (t *TradeDB) setTimestamp(ts time.Time) {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	t.timestamp = ts.UTC().Format(TimeFormat)
}
