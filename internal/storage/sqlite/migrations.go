package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist; every statement is
// IF NOT EXISTS so a partially corrupted database is lazily repaired.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    full_name TEXT,
    username TEXT UNIQUE,
    password TEXT,
    contact TEXT,
    address TEXT,
    parent_contact TEXT,
    is_admin INTEGER DEFAULT 0,
    status TEXT
);

CREATE TABLE IF NOT EXISTS members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE,
    role TEXT,
    contact TEXT,
    address TEXT,
    parent_contact TEXT
);

CREATE TABLE IF NOT EXISTS expenses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    remote_id TEXT,
    sync_state INTEGER DEFAULT 1,
    title TEXT,
    amount REAL,
    category TEXT,
    paid_by TEXT,
    expense_date TEXT
);

CREATE TABLE IF NOT EXISTS meals_daily (
    member_name TEXT NOT NULL,
    meal_date TEXT NOT NULL,
    breakfast INTEGER DEFAULT 0,
    lunch INTEGER DEFAULT 0,
    dinner INTEGER DEFAULT 0,
    sync_state INTEGER DEFAULT 1,
    last_changed_type TEXT,
    last_changed_val INTEGER DEFAULT 0,
    PRIMARY KEY (member_name, meal_date)
);

CREATE TABLE IF NOT EXISTS meal_prices (
    effective_date TEXT PRIMARY KEY,
    breakfast_price REAL DEFAULT 50.0,
    lunch_price REAL DEFAULT 150.0,
    dinner_price REAL DEFAULT 150.0
);

CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT
);

CREATE INDEX IF NOT EXISTS idx_expenses_remote_id ON expenses(remote_id);
CREATE INDEX IF NOT EXISTS idx_expenses_sync_state ON expenses(sync_state);
CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(expense_date);
CREATE INDEX IF NOT EXISTS idx_meals_sync_state ON meals_daily(sync_state);
`

// seedPrices inserts the default price row the app ships with so the
// temporal join always resolves, even before any admin set prices.
const seedPrices = `
INSERT INTO meal_prices (effective_date, breakfast_price, lunch_price, dinner_price)
VALUES ('2024-01-01', 50.0, 150.0, 150.0)
ON CONFLICT(effective_date) DO NOTHING;
`

// runMigrations executes the schema setup and seeds the default prices.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(seedPrices)
	return err
}
