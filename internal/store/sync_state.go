package store

import (
	"database/sql"
	"errors"
	"time"
)

// GetSyncState returns the stored value for key, or "" when the key was
// never written
func (db *DB) GetSyncState(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSyncState writes value under key, replacing any previous value
func (db *DB) SetSyncState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetSyncTime reads key as an RFC 3339 timestamp. A missing key or an
// unparseable value reads as the zero time
func (db *DB) GetSyncTime(key string) (time.Time, error) {
	value, err := db.GetSyncState(key)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

// SetSyncTime stores t under key in RFC 3339 form
func (db *DB) SetSyncTime(key string, t time.Time) error {
	return db.SetSyncState(key, t.Format(time.RFC3339))
}
