package tradedb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bgol/updatetd/internal/events"
)

func newTestDB(t *testing.T) *TradeDB {
	t.Helper()
	tdb := New(zap.NewNop(), Settings{
		Path:             ":memory:",
		CreateItem:       true,
		CreateShip:       true,
		CreateModule:     true,
		UseRareItemCache: true,
	})
	require.True(t, tdb.IsConnected(), "in-memory database should connect")
	require.NoError(t, tdb.InitSchema())
	require.NoError(t, tdb.loadCache())
	t.Cleanup(func() { tdb.Close() })
	return tdb
}

func locationEvent(ts time.Time) events.LocationChanged {
	return events.LocationChanged{
		Timestamp:     ts,
		SystemAddress: 100,
		StarSystem:    "Shinrarta Dezhra",
		StarPos:       [3]float64{1.0, 2.0, 3.0},
	}
}

func dockedEvent(ts time.Time) events.Docked {
	return events.Docked{
		Timestamp:       ts,
		SystemAddress:   100,
		MarketID:        200,
		StationName:     "Jameson Memorial",
		StationType:     "Orbis",
		DistFromStarLS:  324.6,
		StationServices: []string{"Market", "Shipyard"},
	}
}

func countRows(t *testing.T, tdb *TradeDB, table, where string, bind ...any) int {
	t.Helper()
	stmt := "SELECT COUNT(*) FROM " + table
	if where != "" {
		stmt += " WHERE " + where
	}
	var n int
	require.NoError(t, tdb.db.QueryRow(stmt, bind...).Scan(&n))
	return n
}

func TestUpdateSystemCreatesThenUpToDate(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tdb.UpdateSystem(locationEvent(ts), "CMDR"))
	require.Equal(t, 1, countRows(t, tdb, "System", ""))

	system, err := tdb.getSystem(100)
	require.NoError(t, err)
	require.NotNil(t, system)
	assert.Equal(t, "Shinrarta Dezhra", system.Name)
	assert.Equal(t, SnapToGrid(1.0), system.PosX)
	assert.Equal(t, SnapToGrid(2.0), system.PosY)
	assert.Equal(t, SnapToGrid(3.0), system.PosZ)
	assert.Equal(t, "2025-06-01 12:00:00", system.Modified)

	// The commander got an Added record.
	added, ok := tdb.cache.addedByName["CMDR"]
	require.True(t, ok)
	assert.NotZero(t, added.AddedID)
	assert.Equal(t, added.AddedID, system.AddedID)

	// Applying the identical event later is a no-op: no write, timestamp kept.
	require.NoError(t, tdb.UpdateSystem(locationEvent(ts.Add(time.Hour)), "CMDR"))
	system, err = tdb.getSystem(100)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01 12:00:00", system.Modified)
	require.Equal(t, 1, countRows(t, tdb, "System", ""))
}

func TestUpdateSystemAdvancesModifiedOnChange(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tdb.UpdateSystem(locationEvent(ts), "CMDR"))

	changed := locationEvent(ts.Add(time.Hour))
	changed.StarPos = [3]float64{4.0, 5.0, 6.0}
	require.NoError(t, tdb.UpdateSystem(changed, "CMDR"))

	system, err := tdb.getSystem(100)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01 13:00:00", system.Modified)
	assert.Equal(t, SnapToGrid(4.0), system.PosX)
}

func TestUpdateSystemPreservesAddedBy(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tdb.UpdateSystem(locationEvent(ts), "First"))

	changed := locationEvent(ts.Add(time.Hour))
	changed.StarPos = [3]float64{4.0, 5.0, 6.0}
	require.NoError(t, tdb.UpdateSystem(changed, "Second"))

	system, err := tdb.getSystem(100)
	require.NoError(t, err)
	first := tdb.cache.addedByName["FIRST"]
	assert.Equal(t, first.AddedID, system.AddedID)
	// No Added record was created for the second commander.
	_, ok := tdb.cache.addedByName["SECOND"]
	assert.False(t, ok)
}

func TestUpdateStationRequiresKnownSystem(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tdb.UpdateStation(dockedEvent(ts)))
	assert.Equal(t, 0, countRows(t, tdb, "Station", ""))
	assert.Equal(t, 0, countRows(t, tdb, "System", ""))
}

func TestLocationThenDockedEndToEnd(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tdb.UpdateSystem(locationEvent(ts), "CMDR"))
	require.NoError(t, tdb.UpdateStation(dockedEvent(ts)))

	require.Equal(t, 1, countRows(t, tdb, "System", "system_id = ?", 100))
	require.Equal(t, 1, countRows(t, tdb, "Station", "station_id = ?", 200))

	station, err := tdb.getStation(200)
	require.NoError(t, err)
	require.NotNil(t, station)
	assert.Equal(t, "Jameson Memorial", station.Name)
	assert.Equal(t, int64(100), station.SystemID)
	assert.Equal(t, int64(4), station.TypeID)
	assert.Equal(t, int64(325), station.LsFromStar)
	assert.Equal(t, "Y", station.Market)
	assert.Equal(t, "Y", station.Shipyard)
	assert.Equal(t, "N", station.Blackmarket)
	assert.Equal(t, "N", station.Planetary)
	assert.Equal(t, "L", station.MaxPadSize)

	// Docking again with identical data leaves the timestamp alone.
	modified := station.Modified
	require.NoError(t, tdb.UpdateStation(dockedEvent(ts.Add(time.Hour))))
	station, err = tdb.getStation(200)
	require.NoError(t, err)
	assert.Equal(t, modified, station.Modified)
}

func TestUpdateStationServiceListAbsent(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tdb.UpdateSystem(locationEvent(ts), "CMDR"))

	ev := dockedEvent(ts)
	ev.StationServices = nil
	require.NoError(t, tdb.UpdateStation(ev))

	station, err := tdb.getStation(200)
	require.NoError(t, err)
	assert.Equal(t, "?", station.Market)
	assert.Equal(t, "?", station.Blackmarket)
}

func TestUpdateStationCorrectsLocalisedName(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tdb.UpdateSystem(locationEvent(ts), "CMDR"))

	ev := dockedEvent(ts)
	ev.StationName = "Hochburg-Carrier"
	ev.StationType = "MegaShip"
	require.NoError(t, tdb.UpdateStation(ev))

	station, err := tdb.getStation(200)
	require.NoError(t, err)
	assert.Equal(t, "Stronghold Carrier", station.Name)
	assert.Equal(t, int64(13), station.TypeID)
}

func commodity(id int64, name, category string, stock, stockBracket float64) events.Commodity {
	return events.Commodity{
		ID:            id,
		Name:          name,
		CategoryName:  category,
		MeanPrice:     float64(1000),
		SellPrice:     float64(900),
		Demand:        float64(0),
		DemandBracket: float64(0),
		BuyPrice:      float64(800),
		Stock:         stock,
		StockBracket:  stockBracket,
	}
}

func marketSnapshot(ts time.Time, commodities ...events.Commodity) events.MarketSnapshot {
	return events.MarketSnapshot{ID: 200, Timestamp: ts, Commodities: &commodities}
}

func seedStation(t *testing.T, tdb *TradeDB) {
	t.Helper()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tdb.UpdateSystem(locationEvent(ts), "CMDR"))
	require.NoError(t, tdb.UpdateStation(dockedEvent(ts)))
}

func TestUpdateMarketFullReplace(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	ts := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	snapA := marketSnapshot(ts,
		commodity(1, "Gold", "Metals", 100, 2),
		commodity(2, "Silver", "Metals", 50, 2),
		commodity(3, "Tea", "Foods", 10, 1),
	)
	require.NoError(t, tdb.UpdateMarket(snapA))
	assert.Equal(t, 3, countRows(t, tdb, "StationItem", "station_id = ?", 200))
	assert.Equal(t, 3, countRows(t, tdb, "Item", ""))
	assert.Equal(t, 2, countRows(t, tdb, "Category", ""))

	snapB := marketSnapshot(ts.Add(time.Hour), commodity(1, "Gold", "Metals", 80, 2))
	require.NoError(t, tdb.UpdateMarket(snapB))
	assert.Equal(t, 1, countRows(t, tdb, "StationItem", "station_id = ?", 200))
	// Items are reference data and survive the replace.
	assert.Equal(t, 3, countRows(t, tdb, "Item", ""))
}

func TestUpdateMarketSkips(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	ts := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	// A known rare item id never becomes a generic Item.
	tdb.cache.rareByID[42] = RareItem{RareID: 42, StationID: 200, Name: "Lavian Brandy"}

	illegal := commodity(5, "Contraband", "Drugs", 10, 1)
	illegal.Legality = "IL"

	snap := marketSnapshot(ts,
		commodity(42, "Lavian Brandy", "Legal Drugs", 10, 1),
		commodity(6, "Limpets", "NonMarketable", 10, 1),
		illegal,
		commodity(1, "Gold", "Metals", 100, 2),
	)
	require.NoError(t, tdb.UpdateMarket(snap))

	assert.Equal(t, 1, countRows(t, tdb, "StationItem", "station_id = ?", 200))
	assert.Equal(t, 1, countRows(t, tdb, "Item", ""))
}

func TestUpdateMarketDropsUntradable(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	ts := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	dead := commodity(7, "Biowaste", "Waste ", 0, 0)
	dead.Demand = float64(0)
	dead.DemandBracket = float64(0)
	require.NoError(t, tdb.UpdateMarket(marketSnapshot(ts, dead)))

	// The item record is created, but no market row remains.
	assert.Equal(t, 1, countRows(t, tdb, "Item", ""))
	assert.Equal(t, 0, countRows(t, tdb, "StationItem", ""))
}

func TestUpdateMarketCreateItemDisabled(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	settings := tdb.Settings()
	settings.CreateItem = false
	tdb.ChangeSettings(settings)

	ts := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	require.NoError(t, tdb.UpdateMarket(marketSnapshot(ts, commodity(1, "Gold", "Metals", 100, 2))))

	assert.Equal(t, 0, countRows(t, tdb, "Item", ""))
	assert.Equal(t, 0, countRows(t, tdb, "StationItem", ""))
}

func TestUpdateMarketUnknownStation(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	require.NoError(t, tdb.UpdateMarket(marketSnapshot(ts, commodity(1, "Gold", "Metals", 100, 2))))
	assert.Equal(t, 0, countRows(t, tdb, "StationItem", ""))
}

func TestUpdateMarketNoCommodityList(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	snap := events.MarketSnapshot{ID: 200, Timestamp: time.Now()}
	require.NoError(t, tdb.UpdateMarket(snap))
	assert.Equal(t, 0, countRows(t, tdb, "StationItem", ""))
}

func TestItemUIOrderRecalculation(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	ts := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	// Arrival order differs from alphabetical order.
	snap := marketSnapshot(ts,
		commodity(1, "silver", "Metals", 100, 2),
		commodity(2, "Gold", "Metals", 100, 2),
		commodity(3, "Tea", "Foods", 10, 1),
	)
	require.NoError(t, tdb.UpdateMarket(snap))

	assert.Equal(t, int64(1), tdb.cache.itemByID[2].UIOrder, "Gold sorts first in Metals")
	assert.Equal(t, int64(2), tdb.cache.itemByID[1].UIOrder, "silver sorts second, case-folded")
	assert.Equal(t, int64(1), tdb.cache.itemByID[3].UIOrder, "Tea is alone in Foods")

	var order int64
	require.NoError(t, tdb.db.QueryRow("SELECT ui_order FROM Item WHERE item_id = 1").Scan(&order))
	assert.Equal(t, int64(2), order)
}

func shipEntry(id int64, name string, cost float64) events.VendorEntry {
	return events.VendorEntry{ID: id, Name: name, BaseValue: cost}
}

func TestUpdateShipyardFullReplace(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	ts := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	snapA := events.ShipyardSnapshot{
		ID: 200, Timestamp: ts,
		Ships: &events.ShipLists{
			Available:   []events.VendorEntry{shipEntry(1, "SideWinder", 32000), shipEntry(2, "Python", 56978180)},
			Unavailable: []events.VendorEntry{shipEntry(3, "Anaconda", 146969450)},
		},
	}
	require.NoError(t, tdb.UpdateShipyard(snapA))
	assert.Equal(t, 3, countRows(t, tdb, "ShipVendor", "station_id = ?", 200))
	assert.Equal(t, 3, countRows(t, tdb, "Ship", ""))

	// The localization map kicked in.
	assert.Equal(t, "Sidewinder", tdb.cache.shipByID[1].Name)

	snapB := events.ShipyardSnapshot{
		ID: 200, Timestamp: ts.Add(time.Hour),
		Ships: &events.ShipLists{Available: []events.VendorEntry{shipEntry(2, "Python", 56978180)}},
	}
	require.NoError(t, tdb.UpdateShipyard(snapB))
	assert.Equal(t, 1, countRows(t, tdb, "ShipVendor", "station_id = ?", 200))
	assert.Equal(t, 3, countRows(t, tdb, "Ship", ""))
}

func TestUpdateShipyardCreateShipDisabled(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	settings := tdb.Settings()
	settings.CreateShip = false
	tdb.ChangeSettings(settings)

	snap := events.ShipyardSnapshot{
		ID: 200, Timestamp: time.Now(),
		Ships: &events.ShipLists{Available: []events.VendorEntry{shipEntry(1, "SideWinder", 32000)}},
	}
	require.NoError(t, tdb.UpdateShipyard(snap))
	assert.Equal(t, 0, countRows(t, tdb, "Ship", ""))
	assert.Equal(t, 0, countRows(t, tdb, "ShipVendor", ""))
}

func TestUpdateOutfittingFullReplace(t *testing.T) {
	tdb := newTestDB(t)
	seedStation(t, tdb)
	ts := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	modules := events.VendorList{
		{ID: 10, Name: "Int_Hyperdrive_Size2_Class1"},
		{ID: 11, Name: "Int_Hyperdrive_Size3_Class5"},
	}
	snapA := events.OutfittingSnapshot{ID: 200, Timestamp: ts, Modules: &modules}
	require.NoError(t, tdb.UpdateOutfitting(snapA))
	assert.Equal(t, 2, countRows(t, tdb, "UpgradeVendor", "station_id = ?", 200))
	assert.Equal(t, "?", tdb.cache.upgradeByID[10].Class)

	smaller := events.VendorList{{ID: 10, Name: "Int_Hyperdrive_Size2_Class1"}}
	snapB := events.OutfittingSnapshot{ID: 200, Timestamp: ts.Add(time.Hour), Modules: &smaller}
	require.NoError(t, tdb.UpdateOutfitting(snapB))
	assert.Equal(t, 1, countRows(t, tdb, "UpgradeVendor", "station_id = ?", 200))
	assert.Equal(t, 2, countRows(t, tdb, "Upgrade", ""))
}

func TestRareItemCachePopOnce(t *testing.T) {
	tdb := newTestDB(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tdb.UpdateSystem(locationEvent(ts), "CMDR"))

	category, err := tdb.getCategory("Legal Drugs")
	require.NoError(t, err)
	require.NotNil(t, category)

	tdb.SeedRareItem(RareItem{RareID: 42, StationID: 200, CategoryID: category.CategoryID,
		Name: "Lavian Brandy", Cost: 10365, MaxAllocation: 7, Illegal: "N", Suppressed: "N"})
	tdb.SeedRareItem(RareItem{RareID: 43, StationID: 200, CategoryID: category.CategoryID,
		Name: "Leathery Eggs", Cost: 25600, MaxAllocation: 5, Illegal: "?", Suppressed: "?"})
	require.Len(t, tdb.cache.rareByStation[200], 2)

	require.NoError(t, tdb.UpdateStation(dockedEvent(ts)))
	assert.Equal(t, 2, countRows(t, tdb, "RareItem", "station_id = ?", 200))
	assert.Empty(t, tdb.cache.rareByStation)

	// A second docking finds nothing left to flush.
	require.NoError(t, tdb.UpdateStation(dockedEvent(ts.Add(time.Hour))))
	assert.Equal(t, 2, countRows(t, tdb, "RareItem", "station_id = ?", 200))
}

func TestSeedRareItemSkipsKnown(t *testing.T) {
	tdb := newTestDB(t)
	tdb.cache.rareByID[42] = RareItem{RareID: 42}
	tdb.SeedRareItem(RareItem{RareID: 42, StationID: 200})
	assert.Empty(t, tdb.cache.rareByStation)
}
