package tradedb

// The entity structs mirror the TradeDangerous tables one to one. They are
// plain value types: every field is comparable, so change detection is a
// simple == between the cached record and the freshly derived one. The db
// struct tags name the table columns and drive the statement builder.

// TimeFormat is the timestamp layout used in the modified columns.
const TimeFormat = "2006-01-02 15:04:05"

// Added names the source that first added a system (commander name).
type Added struct {
	AddedID int64  `db:"added_id"`
	Name    string `db:"name"`
}

// Category is a commodity category, created on demand.
type Category struct {
	CategoryID int64  `db:"category_id"`
	Name       string `db:"name"`
}

// Item is a tradeable commodity.
type Item struct {
	ItemID     int64  `db:"item_id"`
	Name       string `db:"name"`
	CategoryID int64  `db:"category_id"`
	UIOrder    int64  `db:"ui_order"`
	AvgPrice   int64  `db:"avg_price"`
	FDevID     int64  `db:"fdev_id"`
}

// RareItem is a station-bound rare commodity. Rares are excluded from the
// generic Item handling.
type RareItem struct {
	RareID        int64  `db:"rare_id"`
	StationID     int64  `db:"station_id"`
	CategoryID    int64  `db:"category_id"`
	Name          string `db:"name"`
	Cost          int64  `db:"cost"`
	MaxAllocation int64  `db:"max_allocation"`
	Illegal       string `db:"illegal"`
	Suppressed    string `db:"suppressed"`
}

// Ship is a purchasable ship hull.
type Ship struct {
	ShipID int64  `db:"ship_id"`
	Name   string `db:"name"`
	Cost   int64  `db:"cost"`
}

// Upgrade is a ship module ("Upgrade" in TradeDangerous terms).
type Upgrade struct {
	UpgradeID int64  `db:"upgrade_id"`
	Name      string `db:"name"`
	Class     string `db:"class"`
	Rating    string `db:"rating"`
	Ship      string `db:"ship"`
}

// System is a star system, keyed by the game's system address. Positions are
// snapped to the 1/32 ly grid.
type System struct {
	SystemID int64   `db:"system_id"`
	Name     string  `db:"name"`
	PosX     float64 `db:"pos_x"`
	PosY     float64 `db:"pos_y"`
	PosZ     float64 `db:"pos_z"`
	AddedID  int64   `db:"added_id"`
	Modified string  `db:"modified"`
}

// Station is a dockable station, keyed by the game's market id. Service
// columns hold "Y", "N" or "?" (unknown).
type Station struct {
	StationID   int64  `db:"station_id"`
	Name        string `db:"name"`
	SystemID    int64  `db:"system_id"`
	LsFromStar  int64  `db:"ls_from_star"`
	Blackmarket string `db:"blackmarket"`
	MaxPadSize  string `db:"max_pad_size"`
	Market      string `db:"market"`
	Shipyard    string `db:"shipyard"`
	Modified    string `db:"modified"`
	Outfitting  string `db:"outfitting"`
	Rearm       string `db:"rearm"`
	Refuel      string `db:"refuel"`
	Repair      string `db:"repair"`
	Planetary   string `db:"planetary"`
	TypeID      int64  `db:"type_id"`
}

// StationItem is one market line at a station. Exactly one of the supply and
// demand sides is non-zero.
type StationItem struct {
	StationID   int64  `db:"station_id"`
	ItemID      int64  `db:"item_id"`
	DemandPrice int64  `db:"demand_price"`
	DemandUnits int64  `db:"demand_units"`
	DemandLevel int64  `db:"demand_level"`
	SupplyPrice int64  `db:"supply_price"`
	SupplyUnits int64  `db:"supply_units"`
	SupplyLevel int64  `db:"supply_level"`
	Modified    string `db:"modified"`
	FromLive    int64  `db:"from_live"`
}

// ShipVendor records that a station sells a ship.
type ShipVendor struct {
	ShipID    int64  `db:"ship_id"`
	StationID int64  `db:"station_id"`
	Modified  string `db:"modified"`
}

// UpgradeVendor records that a station sells a module.
type UpgradeVendor struct {
	UpgradeID int64  `db:"upgrade_id"`
	StationID int64  `db:"station_id"`
	Modified  string `db:"modified"`
}
