package tradedb

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Bulk import of reference data from TradeDangerous CSV exports. Each row
// runs through the same three-state reconciliation protocol as live events;
// the ui_order recalculation happens once at the end.

// readCSV reads a delimited file into one string map per row, keyed by the
// header line.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// categoryColumn is the CSV header used for category foreign keys.
const categoryColumn = "name@Category.category_id"

// ImportStandardData imports Category, Item, Ship and Upgrade rows from
// {dataDir}/{Table}.csv. Missing files are logged and skipped.
func (t *TradeDB) ImportStandardData(dataDir string) error {
	if !t.IsConnected() {
		t.log.Info("database not connected, import skipped")
		return nil
	}

	for _, table := range []string{"Category", "Item", "Ship", "Upgrade"} {
		path := filepath.Join(dataDir, table+".csv")
		rows, err := readCSV(path)
		if err != nil {
			if os.IsNotExist(err) {
				t.log.Warn("import file not found", zap.String("path", path))
				continue
			}
			return err
		}
		t.log.Info("importing", zap.String("path", path), zap.Int("rows", len(rows)))

		for _, row := range rows {
			if err := t.importRow(table, row); err != nil {
				return err
			}
		}
	}

	if err := t.updateItemUIOrder(); err != nil {
		return err
	}
	t.log.Info("import done")
	return nil
}

func (t *TradeDB) importRow(table string, row map[string]string) error {
	switch table {
	case "Category":
		_, err := t.getCategory(row["name"])
		return err

	case "Item":
		category, err := t.getCategory(row[categoryColumn])
		if err != nil {
			return err
		}
		if category == nil {
			t.log.Warn("item without category skipped", zap.String("name", row["name"]))
			return nil
		}
		item := Item{
			ItemID:     MakeNumber(row["item_id"], 0),
			Name:       row["name"],
			CategoryID: category.CategoryID,
			UIOrder:    MakeNumber(row["ui_order"], 0),
			AvgPrice:   MakeNumber(row["avg_price"], 0),
			FDevID:     MakeNumber(row["fdev_id"], 0),
		}
		var old *Item
		if cached, ok := t.cache.itemByID[item.ItemID]; ok {
			old = &cached
		}
		res, err := importEntry(t, "Item", old, item, col{"item_id", item.ItemID})
		if err != nil {
			return err
		}
		if res != resultUnchanged {
			t.cache.itemByID[item.ItemID] = item
			t.reorderItem = true
		}
		return nil

	case "Ship":
		ship := Ship{
			ShipID: MakeNumber(row["ship_id"], 0),
			Name:   row["name"],
			Cost:   MakeNumber(row["cost"], 0),
		}
		var old *Ship
		if cached, ok := t.cache.shipByID[ship.ShipID]; ok {
			old = &cached
		}
		res, err := importEntry(t, "Ship", old, ship, col{"ship_id", ship.ShipID})
		if err != nil {
			return err
		}
		if res != resultUnchanged {
			t.cache.shipByID[ship.ShipID] = ship
		}
		return nil

	case "Upgrade":
		upgrade := Upgrade{
			UpgradeID: MakeNumber(row["upgrade_id"], 0),
			Name:      row["name"],
			Class:     orUnknown(row["class"]),
			Rating:    orUnknown(row["rating"]),
			Ship:      row["ship"],
		}
		var old *Upgrade
		if cached, ok := t.cache.upgradeByID[upgrade.UpgradeID]; ok {
			old = &cached
		}
		res, err := importEntry(t, "Upgrade", old, upgrade, col{"upgrade_id", upgrade.UpgradeID})
		if err != nil {
			return err
		}
		if res != resultUnchanged {
			t.cache.upgradeByID[upgrade.UpgradeID] = upgrade
		}
		return nil
	}
	return fmt.Errorf("unknown import table %q", table)
}

// FillRareItemCache seeds the per-station rare item cache from
// {dataDir}/RareItem.csv. A disabled cache stays empty.
func (t *TradeDB) FillRareItemCache(dataDir string) error {
	t.ClearRareItemCache()
	if !t.settings.UseRareItemCache {
		return nil
	}

	path := filepath.Join(dataDir, "RareItem.csv")
	rows, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.log.Warn("import file not found", zap.String("path", path))
			return nil
		}
		return err
	}

	seeded := 0
	for _, row := range rows {
		category, err := t.getCategory(row[categoryColumn])
		if err != nil {
			return err
		}
		if category == nil {
			continue
		}
		rare := RareItem{
			RareID:        MakeNumber(row["rare_id"], 0),
			StationID:     MakeNumber(row["station_id"], 0),
			CategoryID:    category.CategoryID,
			Name:          row["name"],
			Cost:          MakeNumber(row["cost"], 0),
			MaxAllocation: MakeNumber(row["max_allocation"], 0),
			Illegal:       orUnknown(row["illegal"]),
			Suppressed:    orUnknown(row["suppressed"]),
		}
		if _, known := t.cache.rareByID[rare.RareID]; known {
			continue
		}
		t.SeedRareItem(rare)
		seeded++
	}
	t.log.Info("rare item cache filled", zap.Int("seeded", seeded))
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
