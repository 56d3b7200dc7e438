package tradedb

const schema = `
CREATE TABLE IF NOT EXISTS Added (
    added_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT COLLATE NOCASE NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS Category (
    category_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT COLLATE NOCASE NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS Item (
    item_id INTEGER PRIMARY KEY,
    name TEXT COLLATE NOCASE NOT NULL,
    category_id INTEGER NOT NULL,
    ui_order INTEGER NOT NULL DEFAULT 0,
    avg_price INTEGER,
    fdev_id INTEGER,
    FOREIGN KEY (category_id) REFERENCES Category(category_id)
);

CREATE TABLE IF NOT EXISTS Ship (
    ship_id INTEGER PRIMARY KEY,
    name TEXT COLLATE NOCASE NOT NULL,
    cost INTEGER
);

CREATE TABLE IF NOT EXISTS Upgrade (
    upgrade_id INTEGER PRIMARY KEY,
    name TEXT COLLATE NOCASE NOT NULL,
    class TEXT NOT NULL DEFAULT '?',
    rating TEXT NOT NULL DEFAULT '?',
    ship TEXT
);

CREATE TABLE IF NOT EXISTS System (
    system_id INTEGER PRIMARY KEY,
    name TEXT COLLATE NOCASE NOT NULL,
    pos_x REAL NOT NULL,
    pos_y REAL NOT NULL,
    pos_z REAL NOT NULL,
    added_id INTEGER,
    modified TEXT NOT NULL,
    FOREIGN KEY (added_id) REFERENCES Added(added_id)
);

CREATE TABLE IF NOT EXISTS Station (
    station_id INTEGER PRIMARY KEY,
    name TEXT COLLATE NOCASE NOT NULL,
    system_id INTEGER NOT NULL,
    ls_from_star INTEGER NOT NULL DEFAULT 0,
    blackmarket TEXT NOT NULL DEFAULT '?',
    max_pad_size TEXT NOT NULL DEFAULT '?',
    market TEXT NOT NULL DEFAULT '?',
    shipyard TEXT NOT NULL DEFAULT '?',
    modified TEXT NOT NULL,
    outfitting TEXT NOT NULL DEFAULT '?',
    rearm TEXT NOT NULL DEFAULT '?',
    refuel TEXT NOT NULL DEFAULT '?',
    repair TEXT NOT NULL DEFAULT '?',
    planetary TEXT NOT NULL DEFAULT '?',
    type_id INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (system_id) REFERENCES System(system_id)
);

CREATE TABLE IF NOT EXISTS RareItem (
    rare_id INTEGER PRIMARY KEY,
    station_id INTEGER NOT NULL,
    category_id INTEGER NOT NULL,
    name TEXT COLLATE NOCASE NOT NULL,
    cost INTEGER,
    max_allocation INTEGER,
    illegal TEXT NOT NULL DEFAULT '?',
    suppressed TEXT NOT NULL DEFAULT '?',
    FOREIGN KEY (station_id) REFERENCES Station(station_id),
    FOREIGN KEY (category_id) REFERENCES Category(category_id)
);

CREATE TABLE IF NOT EXISTS StationItem (
    station_id INTEGER NOT NULL,
    item_id INTEGER NOT NULL,
    demand_price INTEGER NOT NULL DEFAULT 0,
    demand_units INTEGER NOT NULL DEFAULT 0,
    demand_level INTEGER NOT NULL DEFAULT 0,
    supply_price INTEGER NOT NULL DEFAULT 0,
    supply_units INTEGER NOT NULL DEFAULT 0,
    supply_level INTEGER NOT NULL DEFAULT 0,
    modified TEXT NOT NULL,
    from_live INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (station_id, item_id),
    FOREIGN KEY (station_id) REFERENCES Station(station_id) ON DELETE CASCADE,
    FOREIGN KEY (item_id) REFERENCES Item(item_id)
);

CREATE TABLE IF NOT EXISTS ShipVendor (
    ship_id INTEGER NOT NULL,
    station_id INTEGER NOT NULL,
    modified TEXT NOT NULL,
    PRIMARY KEY (ship_id, station_id),
    FOREIGN KEY (ship_id) REFERENCES Ship(ship_id),
    FOREIGN KEY (station_id) REFERENCES Station(station_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS UpgradeVendor (
    upgrade_id INTEGER NOT NULL,
    station_id INTEGER NOT NULL,
    modified TEXT NOT NULL,
    PRIMARY KEY (upgrade_id, station_id),
    FOREIGN KEY (upgrade_id) REFERENCES Upgrade(upgrade_id),
    FOREIGN KEY (station_id) REFERENCES Station(station_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_station_system ON Station(system_id);
CREATE INDEX IF NOT EXISTS idx_stationitem_item ON StationItem(item_id);
CREATE INDEX IF NOT EXISTS idx_item_category ON Item(category_id);
`
