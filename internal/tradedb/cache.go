package tradedb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// The identity cache holds the latest known record per entity, keyed the way
// the reconciliation engine looks things up. Reference tables (Added,
// Category, Item, Ship, Upgrade, RareItem) are loaded wholesale at connect
// time; System and Station rows are loaded lazily on first access. Name keys
// are upper-cased so lookups are case-insensitive regardless of how the
// store collates.
type cache struct {
	addedByName    map[string]Added
	categoryByName map[string]Category
	categoryByID   map[int64]Category
	itemByID       map[int64]Item
	shipByID       map[int64]Ship
	upgradeByID    map[int64]Upgrade
	rareByID       map[int64]RareItem
	systemByID     map[int64]System
	stationByID    map[int64]Station

	// rareByStation holds rare items known to exist at a station but not yet
	// confirmed in the store. Entries are consumed once, on the next
	// successful station update.
	rareByStation map[int64][]RareItem
}

func newCache() *cache {
	return &cache{
		addedByName:    make(map[string]Added),
		categoryByName: make(map[string]Category),
		categoryByID:   make(map[int64]Category),
		itemByID:       make(map[int64]Item),
		shipByID:       make(map[int64]Ship),
		upgradeByID:    make(map[int64]Upgrade),
		rareByID:       make(map[int64]RareItem),
		systemByID:     make(map[int64]System),
		stationByID:    make(map[int64]Station),
		rareByStation:  make(map[int64][]RareItem),
	}
}

// loadCache replaces the whole cache from the store. Called at connect time
// and whenever the backing database is switched.
func (t *TradeDB) loadCache() error {
	t.cache = newCache()
	if !t.IsConnected() {
		return nil
	}

	if err := t.loadAdded(); err != nil {
		return err
	}
	if err := t.loadCategory(); err != nil {
		return err
	}
	if err := t.loadItem(); err != nil {
		return err
	}
	if err := t.loadShip(); err != nil {
		return err
	}
	if err := t.loadUpgrade(); err != nil {
		return err
	}
	if err := t.loadRareItem(); err != nil {
		return err
	}

	t.log.Info("cache loaded",
		zap.Int("added", len(t.cache.addedByName)),
		zap.Int("categories", len(t.cache.categoryByID)),
		zap.Int("items", len(t.cache.itemByID)),
		zap.Int("ships", len(t.cache.shipByID)),
		zap.Int("upgrades", len(t.cache.upgradeByID)),
		zap.Int("rares", len(t.cache.rareByID)),
	)
	return nil
}

func selectAll(entity any, table string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(columnsOf(entity), ","), table)
}

func (t *TradeDB) loadAdded() error {
	rows, err := t.query(selectAll(Added{}, "Added"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a Added
		if err := rows.Scan(&a.AddedID, &a.Name); err != nil {
			return fmt.Errorf("scan Added: %w", err)
		}
		t.cache.addedByName[strings.ToUpper(a.Name)] = a
	}
	return rows.Err()
}

func (t *TradeDB) loadCategory() error {
	rows, err := t.query(selectAll(Category{}, "Category"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.CategoryID, &c.Name); err != nil {
			return fmt.Errorf("scan Category: %w", err)
		}
		t.cache.categoryByName[strings.ToUpper(c.Name)] = c
		t.cache.categoryByID[c.CategoryID] = c
	}
	return rows.Err()
}

func (t *TradeDB) loadItem() error {
	rows, err := t.query(selectAll(Item{}, "Item"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var i Item
		var avgPrice, fdevID sql.NullInt64
		if err := rows.Scan(&i.ItemID, &i.Name, &i.CategoryID, &i.UIOrder, &avgPrice, &fdevID); err != nil {
			return fmt.Errorf("scan Item: %w", err)
		}
		i.AvgPrice = avgPrice.Int64
		i.FDevID = fdevID.Int64
		t.cache.itemByID[i.ItemID] = i
	}
	return rows.Err()
}

func (t *TradeDB) loadShip() error {
	rows, err := t.query(selectAll(Ship{}, "Ship"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s Ship
		var cost sql.NullInt64
		if err := rows.Scan(&s.ShipID, &s.Name, &cost); err != nil {
			return fmt.Errorf("scan Ship: %w", err)
		}
		s.Cost = cost.Int64
		t.cache.shipByID[s.ShipID] = s
	}
	return rows.Err()
}

func (t *TradeDB) loadUpgrade() error {
	rows, err := t.query(selectAll(Upgrade{}, "Upgrade"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u Upgrade
		var ship sql.NullString
		if err := rows.Scan(&u.UpgradeID, &u.Name, &u.Class, &u.Rating, &ship); err != nil {
			return fmt.Errorf("scan Upgrade: %w", err)
		}
		u.Ship = ship.String
		t.cache.upgradeByID[u.UpgradeID] = u
	}
	return rows.Err()
}

func (t *TradeDB) loadRareItem() error {
	rows, err := t.query(selectAll(RareItem{}, "RareItem"))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RareItem
		var cost, maxAlloc sql.NullInt64
		if err := rows.Scan(&r.RareID, &r.StationID, &r.CategoryID, &r.Name,
			&cost, &maxAlloc, &r.Illegal, &r.Suppressed); err != nil {
			return fmt.Errorf("scan RareItem: %w", err)
		}
		r.Cost = cost.Int64
		r.MaxAllocation = maxAlloc.Int64
		t.cache.rareByID[r.RareID] = r
	}
	return rows.Err()
}

// getSystem returns the system by address, loading it from the store on a
// cache miss. Returns nil when the system is unknown.
func (t *TradeDB) getSystem(address int64) (*System, error) {
	if s, ok := t.cache.systemByID[address]; ok {
		return &s, nil
	}
	if !t.IsConnected() {
		return nil, ErrNotConnected
	}

	var s System
	stmt := selectAll(System{}, "System") + " WHERE system_id = ?"
	err := t.db.QueryRow(stmt, address).Scan(
		&s.SystemID, &s.Name, &s.PosX, &s.PosY, &s.PosZ, &s.AddedID, &s.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load System %d: %w", address, err)
	}
	t.cache.systemByID[address] = s
	return &s, nil
}

// getStation returns the station by market id, loading it from the store on
// a cache miss. Returns nil when the station is unknown.
func (t *TradeDB) getStation(marketID int64) (*Station, error) {
	if s, ok := t.cache.stationByID[marketID]; ok {
		return &s, nil
	}
	if !t.IsConnected() {
		return nil, ErrNotConnected
	}

	var s Station
	stmt := selectAll(Station{}, "Station") + " WHERE station_id = ?"
	err := t.db.QueryRow(stmt, marketID).Scan(
		&s.StationID, &s.Name, &s.SystemID, &s.LsFromStar, &s.Blackmarket,
		&s.MaxPadSize, &s.Market, &s.Shipyard, &s.Modified, &s.Outfitting,
		&s.Rearm, &s.Refuel, &s.Repair, &s.Planetary, &s.TypeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load Station %d: %w", marketID, err)
	}
	t.cache.stationByID[marketID] = s
	return &s, nil
}

// getAdded returns the Added record for a commander name, creating it on
// first sight. Creation is not gated; the record only names who discovered a
// system.
func (t *TradeDB) getAdded(name string) (*Added, error) {
	if a, ok := t.cache.addedByName[strings.ToUpper(name)]; ok {
		return &a, nil
	}

	res, err := t.Execute("INSERT INTO Added(name) VALUES(?)", name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("Added insert id: %w", err)
	}
	a := Added{AddedID: id, Name: name}
	t.cache.addedByName[strings.ToUpper(a.Name)] = a
	t.log.Info("created added", zap.Int64("added_id", a.AddedID), zap.String("name", a.Name))
	return &a, nil
}

// getCategory normalizes a raw category name and returns the Category,
// creating it when allowed. Returns nil for names that normalize to "no
// category" and for unknown categories while create-item is off.
func (t *TradeDB) getCategory(rawName string) (*Category, error) {
	name := CategoryName(rawName)
	if name == "" {
		return nil, nil
	}
	if c, ok := t.cache.categoryByName[strings.ToUpper(name)]; ok {
		return &c, nil
	}
	if !t.settings.CreateItem {
		return nil, nil
	}

	res, err := t.Execute("INSERT INTO Category(name) VALUES(?)", name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("Category insert id: %w", err)
	}
	c := Category{CategoryID: id, Name: name}
	t.cache.categoryByName[strings.ToUpper(c.Name)] = c
	t.cache.categoryByID[c.CategoryID] = c
	t.reorderItem = true
	t.log.Info("created category", zap.Int64("category_id", c.CategoryID), zap.String("name", c.Name))
	return &c, nil
}
