package tradedb

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bgol/updatetd/internal/events"
)

// The reconciliation engine. Every mutable entity goes through the same
// three-state protocol: derive a candidate record from the event, compare it
// to the cached record, then insert the full record, update only the changed
// columns, or do nothing. The cache entry is refreshed from the store after
// an apply so it reflects store truth including defaulted columns.

type applyResult int

const (
	resultUnchanged applyResult = iota
	resultCreated
	resultUpdated
)

// updateEntry runs the three-state protocol for one record. On a column-level
// update the modified column is always stamped with the current event
// timestamp; an identical record keeps its old timestamp by not being
// written at all.
func updateEntry[T comparable](t *TradeDB, table string, old *T, new T, ids ...col) (applyResult, error) {
	if old == nil {
		stmt, bind := insertStmt(table, new)
		if _, err := t.Execute(stmt, bind...); err != nil {
			return resultUnchanged, err
		}
		t.log.Info("created", zap.String("table", table), zap.Any("record", new))
		return resultCreated, nil
	}

	if *old == new {
		t.log.Debug("up-to-date", zap.String("table", table), zap.Any("key", keyFields(ids)))
		return resultUnchanged, nil
	}

	changed := diffColumns(*old, new)
	stamped := false
	for i := range changed {
		if changed[i].name == "modified" {
			changed[i].value = t.timestamp
			stamped = true
		}
	}
	if !stamped {
		changed = append(changed, col{name: "modified", value: t.timestamp})
	}

	stmt, bind := updateStmt(table, changed, ids)
	if _, err := t.Execute(stmt, bind...); err != nil {
		return resultUnchanged, err
	}
	t.log.Info("updated", zap.String("table", table), zap.Any("key", keyFields(ids)))
	return resultUpdated, nil
}

// importEntry is updateEntry for tables without a modified column, used by
// the bulk import path.
func importEntry[T comparable](t *TradeDB, table string, old *T, new T, ids ...col) (applyResult, error) {
	if old == nil {
		stmt, bind := insertStmt(table, new)
		if _, err := t.Execute(stmt, bind...); err != nil {
			return resultUnchanged, err
		}
		t.log.Info("created", zap.String("table", table), zap.Any("record", new))
		return resultCreated, nil
	}
	if *old == new {
		return resultUnchanged, nil
	}

	stmt, bind := updateStmt(table, diffColumns(*old, new), ids)
	if _, err := t.Execute(stmt, bind...); err != nil {
		return resultUnchanged, err
	}
	t.log.Info("updated", zap.String("table", table), zap.Any("key", keyFields(ids)))
	return resultUpdated, nil
}

func keyFields(ids []col) map[string]any {
	m := make(map[string]any, len(ids))
	for _, c := range ids {
		m[c.name] = c.value
	}
	return m
}

// insertMany bulk-inserts rows through one prepared statement.
func insertMany[T any](t *TradeDB, table string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := t.db.Prepare(buildInsert(table, columnsOf(rows[0])))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(valuesOf(row)...); err != nil {
			return err
		}
	}
	t.log.Debug("bulk insert", zap.String("table", table), zap.Int("rows", len(rows)))
	return nil
}

// UpdateSystem reconciles a system from a jump, location, carrier jump or
// nav route leg. The added-by attribution of an existing system is preserved;
// a new system is attributed to the given commander, creating the Added
// record on first sight.
func (t *TradeDB) UpdateSystem(ev events.LocationChanged, cmdrName string) error {
	if !t.IsConnected() {
		t.log.Info("database not connected, system update skipped")
		return nil
	}
	t.setTimestamp(ev.Timestamp)

	old, err := t.getSystem(ev.SystemAddress)
	if err != nil {
		return err
	}

	newSystem := System{
		SystemID: ev.SystemAddress,
		Name:     ev.StarSystem,
		PosX:     SnapToGrid(ev.StarPos[0]),
		PosY:     SnapToGrid(ev.StarPos[1]),
		PosZ:     SnapToGrid(ev.StarPos[2]),
		Modified: t.timestamp,
	}
	if old != nil {
		newSystem.AddedID = old.AddedID
		newSystem.Modified = old.Modified
	} else {
		added, err := t.getAdded(cmdrName)
		if err != nil {
			return err
		}
		newSystem.AddedID = added.AddedID
	}

	res, err := updateEntry(t, "System", old, newSystem, col{"system_id", newSystem.SystemID})
	if err != nil {
		return err
	}
	if res != resultUnchanged {
		return t.refreshSystem(newSystem.SystemID)
	}
	return nil
}

// refreshSystem re-reads a system row into the cache after a write.
func (t *TradeDB) refreshSystem(address int64) error {
	delete(t.cache.systemByID, address)
	_, err := t.getSystem(address)
	return err
}

// UpdateStation reconciles a station from a Docked event. The station's
// system must already be known; no placeholder system is created. A
// successful pass flushes the rare items cached for this station.
func (t *TradeDB) UpdateStation(ev events.Docked) error {
	if !t.IsConnected() {
		t.log.Info("database not connected, station update skipped")
		return nil
	}

	system, err := t.getSystem(ev.SystemAddress)
	if err != nil {
		return err
	}
	if system == nil {
		t.log.Info("system not known, station update skipped",
			zap.Int64("system_address", ev.SystemAddress),
			zap.String("station", ev.StationName),
		)
		return nil
	}
	t.setTimestamp(ev.Timestamp)

	services := ServiceSet(ev.StationServices)
	old, err := t.getStation(ev.MarketID)
	if err != nil {
		return err
	}

	newStation := Station{
		StationID:   ev.MarketID,
		Name:        CorrectStationName(ev.StationName),
		SystemID:    system.SystemID,
		LsFromStar:  int64(math.Round(ev.DistFromStarLS)),
		Blackmarket: ServiceFlag(services, "BlackMarket"),
		MaxPadSize:  DerivePadSize(ev.LandingPads.Large, ev.LandingPads.Medium, ev.LandingPads.Small, ev.StationType),
		Market:      ServiceFlag(services, "Commodities", "Market"),
		Shipyard:    ServiceFlag(services, "Shipyard"),
		Modified:    t.timestamp,
		Outfitting:  ServiceFlag(services, "Outfitting"),
		Rearm:       ServiceFlag(services, "Rearm"),
		Refuel:      ServiceFlag(services, "Refuel"),
		Repair:      ServiceFlag(services, "Repair"),
		Planetary:   IsPlanetary(ev.StationType),
		TypeID:      StationTypeID(ev.StationType),
	}
	if old != nil {
		newStation.Modified = old.Modified
	}

	res, err := updateEntry(t, "Station", old, newStation, col{"station_id", newStation.StationID})
	if err != nil {
		return err
	}
	if res != resultUnchanged {
		if err := t.refreshStation(newStation.StationID); err != nil {
			return err
		}
	}

	return t.flushRareItems(newStation.StationID)
}

// refreshStation re-reads a station row into the cache after a write.
func (t *TradeDB) refreshStation(marketID int64) error {
	delete(t.cache.stationByID, marketID)
	_, err := t.getStation(marketID)
	return err
}

// makeItem returns the Item for a market commodity, creating it when allowed.
// Returns nil when the item is unknown and auto-creation is off.
func (t *TradeDB) makeItem(c events.Commodity) (*Item, error) {
	if item, ok := t.cache.itemByID[c.ID]; ok {
		return &item, nil
	}
	if !t.settings.CreateItem {
		return nil, nil
	}

	category, err := t.getCategory(c.CategoryName)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, nil
	}

	item := Item{
		ItemID:     c.ID,
		Name:       c.Name,
		CategoryID: category.CategoryID,
		UIOrder:    0,
		AvgPrice:   MakeNumber(c.MeanPrice, 0),
		FDevID:     c.ID,
	}
	stmt, bind := insertStmt("Item", item)
	if _, err := t.Execute(stmt, bind...); err != nil {
		return nil, err
	}
	t.cache.itemByID[item.ItemID] = item
	t.reorderItem = true
	t.log.Info("created item", zap.Int64("item_id", item.ItemID), zap.String("name", item.Name))
	return &item, nil
}

// makeShip returns the Ship for a shipyard entry, creating it when allowed.
func (t *TradeDB) makeShip(e events.VendorEntry) (*Ship, error) {
	if ship, ok := t.cache.shipByID[e.ID]; ok {
		return &ship, nil
	}
	if !t.settings.CreateShip {
		return nil, nil
	}

	ship := Ship{
		ShipID: e.ID,
		Name:   ShipName(e.Name),
		Cost:   MakeNumber(e.BaseValue, 0),
	}
	stmt, bind := insertStmt("Ship", ship)
	if _, err := t.Execute(stmt, bind...); err != nil {
		return nil, err
	}
	t.cache.shipByID[ship.ShipID] = ship
	t.log.Info("created ship", zap.Int64("ship_id", ship.ShipID), zap.String("name", ship.Name))
	return &ship, nil
}

// makeUpgrade returns the Upgrade for an outfitting entry, creating it when
// allowed. Class and rating are unknown from the snapshot and default to "?".
func (t *TradeDB) makeUpgrade(e events.VendorEntry) (*Upgrade, error) {
	if upgrade, ok := t.cache.upgradeByID[e.ID]; ok {
		return &upgrade, nil
	}
	if !t.settings.CreateModule {
		return nil, nil
	}

	upgrade := Upgrade{
		UpgradeID: e.ID,
		Name:      e.Name,
		Class:     "?",
		Rating:    "?",
	}
	stmt, bind := insertStmt("Upgrade", upgrade)
	if _, err := t.Execute(stmt, bind...); err != nil {
		return nil, err
	}
	t.cache.upgradeByID[upgrade.UpgradeID] = upgrade
	t.log.Info("created upgrade", zap.Int64("upgrade_id", upgrade.UpgradeID), zap.String("name", upgrade.Name))
	return &upgrade, nil
}

// UpdateMarket synchronizes the StationItem rows of a station by full
// replace: every existing row is deleted and the surviving snapshot lines are
// re-inserted. Commodities with no usable category, a legality marker, or an
// id belonging to a known rare item are skipped.
func (t *TradeDB) UpdateMarket(snap events.MarketSnapshot) error {
	if !t.IsConnected() {
		t.log.Info("database not connected, market update skipped")
		return nil
	}
	if snap.Commodities == nil {
		t.log.Info("no market data")
		return nil
	}
	station, err := t.getStation(snap.ID)
	if err != nil {
		return err
	}
	if station == nil {
		t.log.Info("station not known, market update skipped", zap.Int64("market_id", snap.ID))
		return nil
	}
	t.setTimestamp(snap.Timestamp)
	t.reorderItem = false

	var rows []StationItem
	for _, commodity := range *snap.Commodities {
		if CategoryName(commodity.CategoryName) == "" {
			continue
		}
		if commodity.Legality != "" {
			// Not generally tradeable (stolen, prohibited, ...).
			continue
		}
		if _, isRare := t.cache.rareByID[commodity.ID]; isRare {
			continue
		}

		item, err := t.makeItem(commodity)
		if err != nil {
			return err
		}
		if item == nil {
			t.log.Warn("unknown item skipped",
				zap.Int64("id", commodity.ID), zap.String("name", commodity.Name))
			continue
		}

		sd, ok := CollapseSupplyDemand(SupplyDemand{
			DemandPrice: MakeNumber(commodity.SellPrice, 0),
			DemandUnits: MakeNumber(commodity.Demand, 0),
			DemandLevel: MakeNumber(commodity.DemandBracket, 0),
			SupplyPrice: MakeNumber(commodity.BuyPrice, 0),
			SupplyUnits: MakeNumber(commodity.Stock, 0),
			SupplyLevel: MakeNumber(commodity.StockBracket, 0),
		})
		if !ok {
			// Not on the market, just in someone's cargo.
			continue
		}

		rows = append(rows, StationItem{
			StationID:   station.StationID,
			ItemID:      item.ItemID,
			DemandPrice: sd.DemandPrice,
			DemandUnits: sd.DemandUnits,
			DemandLevel: sd.DemandLevel,
			SupplyPrice: sd.SupplyPrice,
			SupplyUnits: sd.SupplyUnits,
			SupplyLevel: sd.SupplyLevel,
			Modified:    t.timestamp,
			FromLive:    1,
		})
	}

	if _, err := t.Execute("DELETE FROM StationItem WHERE station_id = ?", station.StationID); err != nil {
		return err
	}
	if err := insertMany(t, "StationItem", rows); err != nil {
		return err
	}
	t.log.Info("market synchronized",
		zap.Int64("station_id", station.StationID), zap.Int("items", len(rows)))

	return t.updateItemUIOrder()
}

// UpdateShipyard synchronizes the ShipVendor rows of a station by full
// replace, covering both the available and the unavailable ship lists.
func (t *TradeDB) UpdateShipyard(snap events.ShipyardSnapshot) error {
	if !t.IsConnected() {
		t.log.Info("database not connected, shipyard update skipped")
		return nil
	}
	if snap.Ships == nil {
		t.log.Info("no shipyard data")
		return nil
	}
	station, err := t.getStation(snap.ID)
	if err != nil {
		return err
	}
	if station == nil {
		t.log.Info("station not known, shipyard update skipped", zap.Int64("market_id", snap.ID))
		return nil
	}
	t.setTimestamp(snap.Timestamp)

	var rows []ShipVendor
	for _, list := range [][]events.VendorEntry{snap.Ships.Available, snap.Ships.Unavailable} {
		for _, entry := range list {
			ship, err := t.makeShip(entry)
			if err != nil {
				return err
			}
			if ship == nil {
				t.log.Warn("unknown ship skipped",
					zap.Int64("id", entry.ID), zap.String("name", entry.Name))
				continue
			}
			rows = append(rows, ShipVendor{
				ShipID:    ship.ShipID,
				StationID: station.StationID,
				Modified:  t.timestamp,
			})
		}
	}

	if _, err := t.Execute("DELETE FROM ShipVendor WHERE station_id = ?", station.StationID); err != nil {
		return err
	}
	if err := insertMany(t, "ShipVendor", rows); err != nil {
		return err
	}
	t.log.Info("shipyard synchronized",
		zap.Int64("station_id", station.StationID), zap.Int("ships", len(rows)))
	return nil
}

// UpdateOutfitting synchronizes the UpgradeVendor rows of a station by full
// replace.
func (t *TradeDB) UpdateOutfitting(snap events.OutfittingSnapshot) error {
	if !t.IsConnected() {
		t.log.Info("database not connected, outfitting update skipped")
		return nil
	}
	if snap.Modules == nil {
		t.log.Info("no outfitting data")
		return nil
	}
	station, err := t.getStation(snap.ID)
	if err != nil {
		return err
	}
	if station == nil {
		t.log.Info("station not known, outfitting update skipped", zap.Int64("market_id", snap.ID))
		return nil
	}
	t.setTimestamp(snap.Timestamp)

	var rows []UpgradeVendor
	for _, entry := range *snap.Modules {
		upgrade, err := t.makeUpgrade(entry)
		if err != nil {
			return err
		}
		if upgrade == nil {
			t.log.Warn("unknown module skipped",
				zap.Int64("id", entry.ID), zap.String("name", entry.Name))
			continue
		}
		rows = append(rows, UpgradeVendor{
			UpgradeID: upgrade.UpgradeID,
			StationID: station.StationID,
			Modified:  t.timestamp,
		})
	}

	if _, err := t.Execute("DELETE FROM UpgradeVendor WHERE station_id = ?", station.StationID); err != nil {
		return err
	}
	if err := insertMany(t, "UpgradeVendor", rows); err != nil {
		return err
	}
	t.log.Info("outfitting synchronized",
		zap.Int64("station_id", station.StationID), zap.Int("modules", len(rows)))
	return nil
}

// updateItemUIOrder recomputes the per-category ui_order after new items or
// categories appeared: items of a category are sorted by case-folded name and
// numbered from 1. Only rows whose order actually changed are written.
func (t *TradeDB) updateItemUIOrder() error {
	if !t.reorderItem || !t.settings.CreateItem {
		return nil
	}

	byCategory := make(map[int64][]Item)
	for _, item := range t.cache.itemByID {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	for _, items := range byCategory {
		sort.Slice(items, func(i, j int) bool {
			return strings.ToUpper(items[i].Name) < strings.ToUpper(items[j].Name)
		})
		for i, item := range items {
			order := int64(i + 1)
			if item.UIOrder == order {
				continue
			}
			if _, err := t.Execute("UPDATE Item SET ui_order=? WHERE item_id=?", order, item.ItemID); err != nil {
				return err
			}
			item.UIOrder = order
			t.cache.itemByID[item.ItemID] = item
		}
	}

	t.reorderItem = false
	return nil
}
