package tradedb

import (
	"regexp"
	"strconv"
	"strings"
)

// Normalization of raw event fields into canonical entity fields. The game
// and its companion API deliver inconsistent data in a few known ways
// (localised station names, wrong pad sizes for construction depots, items
// carrying both supply and demand); everything that papers over those bugs
// lives here.

// SnapToGrid snaps a coordinate to the 1/32 ly grid the game uses for star
// positions. Rounds half away from zero at the 1/32 unit.
func SnapToGrid(val float64) float64 {
	val *= 32
	if val < 0 {
		val -= 0.5
	} else {
		val += 0.5
	}
	return float64(int64(val)) / 32.0
}

// MakeNumber coerces an untrusted payload value into an int64. JSON numbers
// arrive as float64, some feeds deliver numeric strings, and missing fields
// decode as nil; anything that cannot be converted yields the default.
func MakeNumber(val any, def int64) int64 {
	switch v := val.(type) {
	case nil:
		return def
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			if f, ferr := strconv.ParseFloat(strings.TrimSpace(v), 64); ferr == nil {
				return int64(f)
			}
			return def
		}
		return n
	default:
		return def
	}
}

// planetaryStationTypes are the station types that sit on a planet surface.
var planetaryStationTypes = map[string]bool{
	"CRATERPORT":                 true,
	"CRATEROUTPOST":              true,
	"ONFOOTSETTLEMENT":           true,
	"PLANETARYCONSTRUCTIONDEPOT": true,
}

// stationTypeMap maps the (upper-cased) journal station type to the
// TradeDangerous numeric type id.
var stationTypeMap = map[string]int64{
	"OUTPOST":          1,
	"CORIOLIS":         2,
	"OCELLUS":          3,
	"BERNAL":           3,
	"ORBIS":            4,
	"CRATEROUTPOST":    11,
	"CRATERPORT":       12,
	"MEGASHIP":         13,
	"ASTEROIDBASE":     14,
	"FLEETCARRIER":     24,
	"ONFOOTSETTLEMENT": 25,
}

// padSizeByStationType is the fallback pad size when the event carries no
// explicit landing pad counts.
var padSizeByStationType = map[string]string{
	"OUTPOST":                    "M",
	"ASTEROIDBASE":               "L",
	"BERNAL":                     "L",
	"CORIOLIS":                   "L",
	"CRATEROUTPOST":              "L",
	"CRATERPORT":                 "L",
	"FLEETCARRIER":               "L",
	"MEGASHIP":                   "L",
	"OCELLUS":                    "L",
	"ORBIS":                      "L",
	"PLANETARYCONSTRUCTIONDEPOT": "L",
	"SPACECONSTRUCTIONDEPOT":     "L",
}

// DerivePadSize determines the largest landing pad of a station. Explicit pad
// counts win; otherwise the station type decides. Construction depots report
// wrong pad sizes (game bug), they always take large ships.
func DerivePadSize(large, medium, small int, stationType string) string {
	size := "?"
	switch {
	case large > 0:
		size = "L"
	case medium > 0:
		size = "M"
	case small > 0:
		size = "S"
	default:
		if s, ok := padSizeByStationType[strings.ToUpper(stationType)]; ok {
			size = s
		}
	}
	if strings.HasSuffix(strings.ToUpper(stationType), "CONSTRUCTIONDEPOT") {
		size = "L"
	}
	return size
}

const (
	strongholdCarrierName = "Stronghold Carrier"
	colonisationShipName  = "System Colonisation Ship"
)

// Some station names arrive localised instead of in English (game bug). The
// patterns cover the known variants.
var (
	strongholdCarrierRe = regexp.MustCompile(`(?i)^(\$ShipName_StrongholdCarrier|Hochburg-Carrier|Portanaves bastión|Porte-vaisseaux de forteresse|Transportadora da potência|Носитель-база)`)
	colonisationShipRe  = regexp.MustCompile(`(?i)^\$EXT_PANEL_ColonisationShip`)
)

// CorrectStationName replaces known localised station names with their
// canonical English form and passes everything else through unchanged.
func CorrectStationName(name string) string {
	if colonisationShipRe.MatchString(name) {
		return colonisationShipName
	}
	if strongholdCarrierRe.MatchString(name) {
		return strongholdCarrierName
	}
	return name
}

// ServiceFlag reports whether any of the given services is present in a
// station's service set as "Y"/"N", or "?" when the event carried no service
// list at all. The set is expected to hold upper-cased service names; some
// services go by two names across event versions ("Commodities"/"Market").
func ServiceFlag(services map[string]bool, keys ...string) string {
	if services == nil {
		return "?"
	}
	for _, key := range keys {
		if services[strings.ToUpper(key)] {
			return "Y"
		}
	}
	return "N"
}

// ServiceSet builds the upper-cased lookup set for ServiceFlag. A nil slice
// stays nil so the "unknown" case survives.
func ServiceSet(services []string) map[string]bool {
	if services == nil {
		return nil
	}
	set := make(map[string]bool, len(services))
	for _, s := range services {
		set[strings.ToUpper(s)] = true
	}
	return set
}

// categoryNameMap translates companion API category names to the
// TradeDangerous vocabulary. An empty target means the category (and all its
// items) is ignored; drones end up there.
var categoryNameMap = map[string]string{
	"Narcotics":     "Legal Drugs",
	"Slaves":        "Slavery",
	"Waste ":        "Waste",
	"NonMarketable": "",
}

// CategoryName normalizes a raw category name. An empty result means "no
// category" and the caller must skip the record.
func CategoryName(name string) string {
	if mapped, ok := categoryNameMap[name]; ok {
		return mapped
	}
	return name
}

// shipNameMap translates internal ship symbols to display names.
var shipNameMap = map[string]string{
	"adder":                "Adder",
	"anaconda":             "Anaconda",
	"asp":                  "Asp Explorer",
	"asp_scout":            "Asp Scout",
	"belugaliner":          "Beluga Liner",
	"cobramkiii":           "Cobra MkIII",
	"cobramkiv":            "Cobra MkIV",
	"diamondback":          "Diamondback Scout",
	"diamondbackxl":        "Diamondback Explorer",
	"dolphin":              "Dolphin",
	"eagle":                "Eagle",
	"empire_courier":       "Imperial Courier",
	"empire_eagle":         "Imperial Eagle",
	"empire_trader":        "Imperial Clipper",
	"federation_corvette":  "Federal Corvette",
	"federation_dropship":  "Federal Dropship",
	"federation_gunship":   "Federal Gunship",
	"ferdelance":           "Fer-de-Lance",
	"hauler":               "Hauler",
	"krait_light":          "Krait Phantom",
	"krait_mkii":           "Krait MkII",
	"mamba":                "Mamba",
	"orca":                 "Orca",
	"python":               "Python",
	"sidewinder":           "Sidewinder",
	"type6":                "Type-6 Transporter",
	"type7":                "Type-7 Transporter",
	"type9":                "Type-9 Heavy",
	"type9_military":       "Type-10 Defender",
	"typex":                "Alliance Chieftain",
	"typex_2":              "Alliance Crusader",
	"typex_3":              "Alliance Challenger",
	"viper":                "Viper MkIII",
	"viper_mkiv":           "Viper MkIV",
	"vulture":              "Vulture",
}

// ShipName maps an internal ship symbol to its display name, passing unknown
// names through unchanged.
func ShipName(name string) string {
	if mapped, ok := shipNameMap[strings.ToLower(name)]; ok {
		return mapped
	}
	return name
}

// SupplyDemand is the tradable side of a market line after collapsing.
type SupplyDemand struct {
	DemandPrice int64
	DemandUnits int64
	DemandLevel int64
	SupplyPrice int64
	SupplyUnits int64
	SupplyLevel int64
}

// CollapseSupplyDemand resolves market lines that report both supply and
// demand (game bug): the side with zero units is dropped, and if supply
// remains the demand units and level are cleared. Returns ok=false when
// neither side survives, meaning the item is not actually on the market.
func CollapseSupplyDemand(sd SupplyDemand) (SupplyDemand, bool) {
	if sd.SupplyLevel != 0 && sd.DemandLevel != 0 {
		if sd.SupplyUnits == 0 {
			sd.SupplyLevel = 0
		}
		if sd.DemandUnits == 0 {
			sd.DemandLevel = 0
		}
	}

	if sd.SupplyLevel == 0 {
		// No stock bracket, ignore the supply side.
		sd.SupplyPrice = 0
		sd.SupplyUnits = 0
	} else {
		// Supply wins, demand does not matter.
		sd.DemandUnits = 0
		sd.DemandLevel = 0
	}

	if sd.SupplyLevel == 0 && sd.DemandLevel == 0 {
		return SupplyDemand{}, false
	}
	return sd, true
}

// IsPlanetary classifies a station type as planetary ("Y"/"N").
func IsPlanetary(stationType string) string {
	if planetaryStationTypes[strings.ToUpper(stationType)] {
		return "Y"
	}
	return "N"
}

// StationTypeID maps a station type to its numeric id, 0 when unknown.
func StationTypeID(stationType string) int64 {
	return stationTypeMap[strings.ToUpper(stationType)]
}
