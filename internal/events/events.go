// Package events decodes the semi-structured telemetry payloads into typed
// event records at the boundary, so the synchronizer core never inspects
// untyped maps. Journal lines become tagged variants keyed on the "event"
// field; market, shipyard and outfitting snapshots are parsed from their own
// JSON documents.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is a decoded journal event. The concrete type identifies the kind.
type Event interface {
	event()
}

// Commander reports the active commander name (Commander and LoadGame
// journal events). The watcher tracks it to attribute newly added systems.
type Commander struct {
	Timestamp time.Time
	Name      string
}

// LocationChanged reports that the current system is known: a jump, a
// location fix, a carrier jump, or one leg of a plotted nav route.
type LocationChanged struct {
	Timestamp     time.Time
	SystemAddress int64
	StarSystem    string
	StarPos       [3]float64
}

// NavRoute carries one LocationChanged per plotted route hop.
type NavRoute struct {
	Timestamp time.Time
	Legs      []LocationChanged
}

// LandingPads holds the pad counts of a Docked event.
type LandingPads struct {
	Large  int `json:"Large"`
	Medium int `json:"Medium"`
	Small  int `json:"Small"`
}

// Docked reports a completed docking at a station.
type Docked struct {
	Timestamp       time.Time
	SystemAddress   int64
	MarketID        int64
	StationName     string
	StationType     string
	DistFromStarLS  float64
	StationServices []string
	LandingPads     LandingPads
}

// SnapshotKind distinguishes the station snapshot documents.
type SnapshotKind string

const (
	KindMarket     SnapshotKind = "market"
	KindShipyard   SnapshotKind = "shipyard"
	KindOutfitting SnapshotKind = "outfitting"
)

// SnapshotSignal reports that the game has (re)written one of the station
// snapshot documents; the watcher reads the matching file on receipt.
type SnapshotSignal struct {
	Timestamp time.Time
	Kind      SnapshotKind
	MarketID  int64
}

func (Commander) event()       {}
func (LocationChanged) event() {}
func (NavRoute) event()        {}
func (Docked) event()          {}
func (SnapshotSignal) event()  {}

// Decode parses a single journal line into its typed event. Events of no
// interest to the synchronizer decode to (nil, nil).
func Decode(line []byte) (Event, error) {
	var probe struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, fmt.Errorf("journal line: %w", err)
	}

	switch probe.Event {
	case "Commander":
		var raw struct {
			Timestamp time.Time `json:"timestamp"`
			Name      string    `json:"Name"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("Commander event: %w", err)
		}
		return Commander{Timestamp: raw.Timestamp, Name: raw.Name}, nil

	case "LoadGame":
		var raw struct {
			Timestamp time.Time `json:"timestamp"`
			Commander string    `json:"Commander"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("LoadGame event: %w", err)
		}
		return Commander{Timestamp: raw.Timestamp, Name: raw.Commander}, nil

	case "FSDJump", "Location", "CarrierJump":
		loc, err := decodeLocation(line)
		if err != nil {
			return nil, fmt.Errorf("%s event: %w", probe.Event, err)
		}
		return loc, nil

	case "NavRoute":
		var raw struct {
			Timestamp time.Time         `json:"timestamp"`
			Route     []json.RawMessage `json:"Route"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("NavRoute event: %w", err)
		}
		route := NavRoute{Timestamp: raw.Timestamp}
		for _, leg := range raw.Route {
			l, err := decodeLocation(leg)
			if err != nil {
				return nil, fmt.Errorf("NavRoute leg: %w", err)
			}
			// Route legs carry no timestamp of their own.
			l.Timestamp = raw.Timestamp
			route.Legs = append(route.Legs, l)
		}
		return route, nil

	case "Docked":
		var raw struct {
			Timestamp       time.Time   `json:"timestamp"`
			SystemAddress   int64       `json:"SystemAddress"`
			MarketID        int64       `json:"MarketID"`
			StationName     string      `json:"StationName"`
			StationType     string      `json:"StationType"`
			DistFromStarLS  float64     `json:"DistFromStarLS"`
			StationServices []string    `json:"StationServices"`
			LandingPads     LandingPads `json:"LandingPads"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("Docked event: %w", err)
		}
		return Docked{
			Timestamp:       raw.Timestamp,
			SystemAddress:   raw.SystemAddress,
			MarketID:        raw.MarketID,
			StationName:     raw.StationName,
			StationType:     raw.StationType,
			DistFromStarLS:  raw.DistFromStarLS,
			StationServices: raw.StationServices,
			LandingPads:     raw.LandingPads,
		}, nil

	case "Market", "Shipyard", "Outfitting":
		var raw struct {
			Timestamp time.Time `json:"timestamp"`
			MarketID  int64     `json:"MarketID"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("%s event: %w", probe.Event, err)
		}
		kinds := map[string]SnapshotKind{
			"Market":     KindMarket,
			"Shipyard":   KindShipyard,
			"Outfitting": KindOutfitting,
		}
		return SnapshotSignal{Timestamp: raw.Timestamp, Kind: kinds[probe.Event], MarketID: raw.MarketID}, nil
	}

	return nil, nil
}

// decodeLocation handles the shared shape of jump, location and route leg
// records. The system name field varies across event versions.
func decodeLocation(data []byte) (LocationChanged, error) {
	var raw struct {
		Timestamp     time.Time  `json:"timestamp"`
		SystemAddress int64      `json:"SystemAddress"`
		StarSystem    string     `json:"StarSystem"`
		SystemName    string     `json:"SystemName"`
		System        string     `json:"System"`
		StarPos       [3]float64 `json:"StarPos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return LocationChanged{}, err
	}

	name := raw.StarSystem
	if name == "" {
		name = raw.SystemName
	}
	if name == "" {
		name = raw.System
	}
	return LocationChanged{
		Timestamp:     raw.Timestamp,
		SystemAddress: raw.SystemAddress,
		StarSystem:    name,
		StarPos:       raw.StarPos,
	}, nil
}
