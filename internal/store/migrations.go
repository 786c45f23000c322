package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row, expires_at is RFC 3339 text)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Activity registry (Strava summaries and file imports)
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			start_date TEXT NOT NULL DEFAULT '',
			distance REAL NOT NULL,
			elapsed_time REAL NOT NULL,
			moving_time REAL,
			average_heartrate INTEGER,
			max_heartrate INTEGER,
			calories INTEGER,
			elevation_gain INTEGER,
			elevation_loss INTEGER,
			lap_source TEXT NOT NULL DEFAULT '',
			lap_count INTEGER NOT NULL DEFAULT 0,
			exported_at TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_exported ON activities(exported_at)`,

		// Per-activity lap rows (value columns nullable, unset means the
		// source never carried the field)
		`CREATE TABLE IF NOT EXISTS laps (
			activity_id INTEGER NOT NULL,
			lap_index INTEGER NOT NULL,
			distance_meters REAL NOT NULL,
			time_seconds REAL NOT NULL,
			pace TEXT NOT NULL DEFAULT '',
			avg_heartrate INTEGER,
			max_heartrate INTEGER,
			elevation_gain INTEGER,
			elevation_loss INTEGER,
			calories INTEGER,
			moving_time_seconds REAL,
			moving_pace TEXT NOT NULL DEFAULT '',
			best_pace TEXT NOT NULL DEFAULT '',
			avg_power INTEGER,
			max_power INTEGER,
			avg_cadence INTEGER,
			max_cadence INTEGER,
			avg_temperature INTEGER,
			PRIMARY KEY (activity_id, lap_index),
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_laps_activity ON laps(activity_id)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
