package tradedb

import "go.uber.org/zap"

// The rare item station cache holds rare items known from the reference list
// but not yet present in the store. Each station's entry is consumed exactly
// once: docking at the station flushes it into the RareItem table and drops
// it from the cache, so later market updates at the same station do nothing.

// SeedRareItem queues a rare item for insertion on the next docking at its
// station. Rares already present in the identity set are not queued.
func (t *TradeDB) SeedRareItem(r RareItem) {
	if !t.settings.UseRareItemCache {
		return
	}
	if _, known := t.cache.rareByID[r.RareID]; known {
		return
	}
	t.cache.rareByStation[r.StationID] = append(t.cache.rareByStation[r.StationID], r)
}

// ClearRareItemCache drops all queued rare items, used before re-seeding.
func (t *TradeDB) ClearRareItemCache() {
	t.cache.rareByStation = make(map[int64][]RareItem)
}

// flushRareItems consumes the queued rare items of a station, inserting each
// one that is still missing from the store.
func (t *TradeDB) flushRareItems(stationID int64) error {
	rares, ok := t.cache.rareByStation[stationID]
	if !ok {
		return nil
	}
	delete(t.cache.rareByStation, stationID)

	for _, rare := range rares {
		if _, exists := t.cache.rareByID[rare.RareID]; exists {
			continue
		}
		stmt, bind := insertStmt("RareItem", rare)
		if _, err := t.Execute(stmt, bind...); err != nil {
			return err
		}
		t.cache.rareByID[rare.RareID] = rare
		t.log.Info("created rare item",
			zap.Int64("rare_id", rare.RareID),
			zap.Int64("station_id", rare.StationID),
			zap.String("name", rare.Name),
		)
	}
	return nil
}
