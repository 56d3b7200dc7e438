// Package journal delivers game telemetry to the synchronizer core. It tails
// the journal directory for appended event lines and reads the station
// snapshot documents (Market.json, Shipyard.json, Outfitting.json) when the
// game rewrites them. Delivery is synchronous: one event is handled to
// completion before the next is read.
package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bgol/updatetd/internal/events"
	"github.com/bgol/updatetd/internal/tradedb"
)

// snapshotFiles names the station snapshot document per kind.
var snapshotFiles = map[events.SnapshotKind]string{
	events.KindMarket:     "Market.json",
	events.KindShipyard:   "Shipyard.json",
	events.KindOutfitting: "Outfitting.json",
}

// dispatcher routes decoded events into the core. It tracks the active
// commander name to attribute newly discovered systems.
type dispatcher struct {
	log  *zap.Logger
	tdb  *tradedb.TradeDB
	dir  string
	cmdr string
}

// processLine decodes one journal line and runs the matching handler.
// Undecodable lines are logged and dropped; handler errors propagate.
func (d *dispatcher) processLine(line []byte) error {
	ev, err := events.Decode(line)
	if err != nil {
		d.log.Warn("undecodable journal line", zap.Error(err))
		return nil
	}

	switch ev := ev.(type) {
	case nil:
		return nil

	case events.Commander:
		d.cmdr = ev.Name
		return nil

	case events.LocationChanged:
		return d.tdb.UpdateSystem(ev, d.cmdr)

	case events.NavRoute:
		for _, leg := range ev.Legs {
			if err := d.tdb.UpdateSystem(leg, d.cmdr); err != nil {
				return err
			}
		}
		return nil

	case events.Docked:
		return d.tdb.UpdateStation(ev)

	case events.SnapshotSignal:
		return d.loadSnapshot(ev.Kind)
	}
	return nil
}

// loadSnapshot reads the snapshot document for the given kind from the
// journal directory and feeds it to the core. A missing or empty file is
// logged and skipped.
func (d *dispatcher) loadSnapshot(kind events.SnapshotKind) error {
	path := filepath.Join(d.dir, snapshotFiles[kind])
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		d.log.Warn("snapshot file not readable", zap.String("path", path), zap.Error(err))
		return nil
	}

	switch kind {
	case events.KindMarket:
		snap, err := events.ParseMarket(data)
		if err != nil {
			d.log.Warn("snapshot file not decodable", zap.String("path", path), zap.Error(err))
			return nil
		}
		return d.tdb.UpdateMarket(snap)

	case events.KindShipyard:
		snap, err := events.ParseShipyard(data)
		if err != nil {
			d.log.Warn("snapshot file not decodable", zap.String("path", path), zap.Error(err))
			return nil
		}
		return d.tdb.UpdateShipyard(snap)

	case events.KindOutfitting:
		snap, err := events.ParseOutfitting(data)
		if err != nil {
			d.log.Warn("snapshot file not decodable", zap.String("path", path), zap.Error(err))
			return nil
		}
		return d.tdb.UpdateOutfitting(snap)
	}
	return fmt.Errorf("unknown snapshot kind %q", kind)
}
