package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Station snapshot documents. Their list-valued fields arrive either as a
// keyed mapping or as a plain array depending on the source; VendorList
// normalizes both into a sequence once, at decode time.

// Commodity is one market line of a market snapshot. Numeric fields are kept
// loosely typed; upstream feeds deliver numbers, numeric strings or nothing
// at all, and the core coerces them with a fallback default.
type Commodity struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CategoryName  string `json:"categoryname"`
	Legality      string `json:"legality"`
	MeanPrice     any    `json:"meanPrice"`
	SellPrice     any    `json:"sellPrice"`
	Demand        any    `json:"demand"`
	DemandBracket any    `json:"demandBracket"`
	BuyPrice      any    `json:"buyPrice"`
	Stock         any    `json:"stock"`
	StockBracket  any    `json:"stockBracket"`
}

// MarketSnapshot is the commodity market of one station. A nil Commodities
// pointer means the payload carried no commodity list at all.
type MarketSnapshot struct {
	ID          int64        `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Commodities *[]Commodity `json:"commodities"`
}

// VendorEntry is one ship or module offered by a station.
type VendorEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BaseValue any    `json:"basevalue"`
}

// VendorList accepts either a JSON object keyed by arbitrary ids or a JSON
// array. Mapping entries are ordered by key so decoding is deterministic.
type VendorList []VendorEntry

// UnmarshalJSON implements the mapping-or-list normalization.
func (v *VendorList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}

	if data[0] == '[' {
		var list []VendorEntry
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*v = list
		return nil
	}

	var keyed map[string]VendorEntry
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := make([]VendorEntry, 0, len(keyed))
	for _, k := range keys {
		list = append(list, keyed[k])
	}
	*v = list
	return nil
}

// ShipLists holds the two sub-collections of a shipyard snapshot.
type ShipLists struct {
	Available   VendorList `json:"shipyard_list"`
	Unavailable VendorList `json:"unavailable_list"`
}

// ShipyardSnapshot is the shipyard of one station. A nil Ships pointer means
// the payload carried no ship list.
type ShipyardSnapshot struct {
	ID        int64      `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Ships     *ShipLists `json:"ships"`
}

// OutfittingSnapshot is the module market of one station. A nil Modules
// pointer means the payload carried no module collection.
type OutfittingSnapshot struct {
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Modules   *VendorList `json:"modules"`
}

// ParseMarket decodes a market snapshot document.
func ParseMarket(data []byte) (MarketSnapshot, error) {
	var snap MarketSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return MarketSnapshot{}, fmt.Errorf("market snapshot: %w", err)
	}
	return snap, nil
}

// ParseShipyard decodes a shipyard snapshot document.
func ParseShipyard(data []byte) (ShipyardSnapshot, error) {
	var snap ShipyardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ShipyardSnapshot{}, fmt.Errorf("shipyard snapshot: %w", err)
	}
	return snap, nil
}

// ParseOutfitting decodes an outfitting snapshot document.
func ParseOutfitting(data []byte) (OutfittingSnapshot, error) {
	var snap OutfittingSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return OutfittingSnapshot{}, fmt.Errorf("outfitting snapshot: %w", err)
	}
	return snap, nil
}
