package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

// UpsertActivity inserts or updates a registry row.
// Export state (lap_source, lap_count, exported_at) is owned by
// MarkExported and survives re-syncs untouched.
func (db *DB) UpsertActivity(a *Activity) error {
	_, err := db.Exec(`
		INSERT INTO activities (
			id, name, source, start_date, distance, elapsed_time, moving_time,
			average_heartrate, max_heartrate, calories,
			elevation_gain, elevation_loss, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			start_date = excluded.start_date,
			distance = excluded.distance,
			elapsed_time = excluded.elapsed_time,
			moving_time = excluded.moving_time,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			calories = excluded.calories,
			elevation_gain = excluded.elevation_gain,
			elevation_loss = excluded.elevation_loss,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.Name, a.Source, timeToColumn(a.StartDate),
		a.Distance, a.ElapsedTime, a.MovingTime,
		a.AverageHeartrate, a.MaxHeartrate, a.Calories,
		a.ElevationGain, a.ElevationLoss,
	)
	return err
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id int64) (*Activity, error) {
	row := db.QueryRow(`
		SELECT id, name, source, start_date, distance, elapsed_time, moving_time,
			average_heartrate, max_heartrate, calories, elevation_gain, elevation_loss,
			lap_source, lap_count, exported_at
		FROM activities
		WHERE id = ?
	`, id)

	return scanActivity(row)
}

// ListActivities returns activities ordered by start date descending.
// File imports without a timestamp sort last, newest ID first.
func (db *DB) ListActivities(limit, offset int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, name, source, start_date, distance, elapsed_time, moving_time,
			average_heartrate, max_heartrate, calories, elevation_gain, elevation_loss,
			lap_source, lap_count, exported_at
		FROM activities
		ORDER BY start_date DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// GetActivitiesNeedingExport returns activities without a written report
func (db *DB) GetActivitiesNeedingExport(limit int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, name, source, start_date, distance, elapsed_time, moving_time,
			average_heartrate, max_heartrate, calories, elevation_gain, elevation_loss,
			lap_source, lap_count, exported_at
		FROM activities
		WHERE exported_at IS NULL
		ORDER BY start_date DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// MarkExported records how the activity's laps were resolved and stamps
// the export time
func (db *DB) MarkExported(id int64, lapSource string, lapCount int) error {
	result, err := db.Exec(`
		UPDATE activities
		SET lap_source = ?, lap_count = ?, exported_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, lapSource, lapCount, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// CountActivities returns the total number of activities
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// scanActivity scans a single activity from a row
func scanActivity(row *sql.Row) (*Activity, error) {
	var a Activity
	var startDate string
	var exportedAt sql.NullString

	err := row.Scan(
		&a.ID, &a.Name, &a.Source, &startDate, &a.Distance, &a.ElapsedTime, &a.MovingTime,
		&a.AverageHeartrate, &a.MaxHeartrate, &a.Calories, &a.ElevationGain, &a.ElevationLoss,
		&a.LapSource, &a.LapCount, &exportedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := fillActivityTimes(&a, startDate, exportedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// scanActivities scans multiple activities from rows
func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity

	for rows.Next() {
		var a Activity
		var startDate string
		var exportedAt sql.NullString

		err := rows.Scan(
			&a.ID, &a.Name, &a.Source, &startDate, &a.Distance, &a.ElapsedTime, &a.MovingTime,
			&a.AverageHeartrate, &a.MaxHeartrate, &a.Calories, &a.ElevationGain, &a.ElevationLoss,
			&a.LapSource, &a.LapCount, &exportedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := fillActivityTimes(&a, startDate, exportedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

func fillActivityTimes(a *Activity, startDate string, exportedAt sql.NullString) error {
	if startDate != "" {
		t, err := time.Parse(time.RFC3339, startDate)
		if err != nil {
			return fmt.Errorf("parsing start_date %q: %w", startDate, err)
		}
		a.StartDate = t
	}
	if exportedAt.Valid && exportedAt.String != "" {
		t, err := parseTimestampColumn(exportedAt.String)
		if err != nil {
			return fmt.Errorf("parsing exported_at %q: %w", exportedAt.String, err)
		}
		a.ExportedAt = &t
	}
	return nil
}

// timeToColumn serializes a timestamp, keeping zero times as empty text
func timeToColumn(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// parseTimestampColumn accepts both RFC3339 and SQLite's
// CURRENT_TIMESTAMP format ("2006-01-02 15:04:05")
func parseTimestampColumn(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
