package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Config struct {
	Path string
}

func NewDB(config Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	// WAL keeps long reads from blocking appends and vice versa.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=MEMORY;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("error applying %q: %v", pragma, err)
		}
	}

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS flows (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		ts REAL NOT NULL,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		host TEXT,
		path TEXT,
		status INTEGER,
		duration REAL,
		req_headers_json TEXT,
		resp_headers_json TEXT,
		req_size INTEGER NOT NULL DEFAULT 0,
		resp_size INTEGER NOT NULL DEFAULT 0,
		req_body_b64 TEXT,
		req_preview TEXT,
		resp_preview TEXT,
		resp_body_b64 TEXT,
		resp_body_text TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_flows_ts ON flows(ts DESC);
	CREATE INDEX IF NOT EXISTS idx_flows_host ON flows(host);
	CREATE INDEX IF NOT EXISTS idx_flows_status ON flows(status);
	CREATE INDEX IF NOT EXISTS idx_flows_method ON flows(method);

	CREATE TABLE IF NOT EXISTS scope (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		include_json TEXT NOT NULL,
		exclude_json TEXT NOT NULL,
		drop_out_of_scope INTEGER NOT NULL DEFAULT 0
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("error creating schema: %v", err)
	}
	return nil
}
