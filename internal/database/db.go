package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_consumption (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		consumption_date TEXT NOT NULL,
		consumption_kwh REAL NOT NULL,
		location TEXT,
		month TEXT,
		year INTEGER,
		published INTEGER DEFAULT 0,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(consumption_date, location)
	);
	CREATE TABLE IF NOT EXISTS meter_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reading_date TEXT NOT NULL,
		meter_value REAL NOT NULL,
		unit TEXT DEFAULT 'kWh',
		location TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(reading_date, location)
	);
	CREATE TABLE IF NOT EXISTS consumption_summary (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month TEXT NOT NULL,
		year INTEGER NOT NULL,
		total_consumption REAL,
		average_daily REAL,
		days_count INTEGER,
		location TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(month, year, location)
	);
	CREATE TABLE IF NOT EXISTS scraping_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month TEXT NOT NULL,
		year INTEGER NOT NULL,
		location TEXT,
		scrape_date TEXT DEFAULT CURRENT_TIMESTAMP,
		records_count INTEGER,
		UNIQUE(month, year, location)
	);
	CREATE INDEX IF NOT EXISTS idx_daily_consumption_date ON daily_consumption(consumption_date);
	CREATE INDEX IF NOT EXISTS idx_daily_consumption_month_year ON daily_consumption(month, year);
	CREATE INDEX IF NOT EXISTS idx_daily_consumption_published ON daily_consumption(published);
	`

	_, err := db.conn.Exec(schema)
	if err != nil {
		return err
	}

	// Add columns to existing tables (migration)
	// These will fail silently if columns already exist
	db.conn.Exec(`ALTER TABLE daily_consumption ADD COLUMN published INTEGER DEFAULT 0`)

	return nil
}
