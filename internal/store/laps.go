package store

import (
	"fmt"
)

// SaveLaps saves the lap rows for an activity
// It replaces any existing laps for the activity
func (db *DB) SaveLaps(activityID int64, laps []Lap) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete existing laps for this activity
	if _, err := tx.Exec("DELETE FROM laps WHERE activity_id = ?", activityID); err != nil {
		return fmt.Errorf("deleting existing laps: %w", err)
	}

	// Prepare insert statement
	stmt, err := tx.Prepare(`
		INSERT INTO laps (
			activity_id, lap_index, distance_meters, time_seconds, pace,
			avg_heartrate, max_heartrate, elevation_gain, elevation_loss, calories,
			moving_time_seconds, moving_pace, best_pace,
			avg_power, max_power, avg_cadence, max_cadence, avg_temperature
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	// Insert all laps
	for _, l := range laps {
		_, err := stmt.Exec(
			activityID, l.LapIndex, l.DistanceMeters, l.TimeSeconds, l.Pace,
			l.AvgHeartrate, l.MaxHeartrate, l.ElevationGain, l.ElevationLoss, l.Calories,
			l.MovingTimeSeconds, l.MovingPace, l.BestPace,
			l.AvgPower, l.MaxPower, l.AvgCadence, l.MaxCadence, l.AvgTemperature,
		)
		if err != nil {
			return fmt.Errorf("inserting lap: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetLaps retrieves all laps for an activity ordered by lap index
func (db *DB) GetLaps(activityID int64) ([]Lap, error) {
	rows, err := db.Query(`
		SELECT activity_id, lap_index, distance_meters, time_seconds, pace,
			avg_heartrate, max_heartrate, elevation_gain, elevation_loss, calories,
			moving_time_seconds, moving_pace, best_pace,
			avg_power, max_power, avg_cadence, max_cadence, avg_temperature
		FROM laps
		WHERE activity_id = ?
		ORDER BY lap_index
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var laps []Lap
	for rows.Next() {
		var l Lap
		err := rows.Scan(
			&l.ActivityID, &l.LapIndex, &l.DistanceMeters, &l.TimeSeconds, &l.Pace,
			&l.AvgHeartrate, &l.MaxHeartrate, &l.ElevationGain, &l.ElevationLoss, &l.Calories,
			&l.MovingTimeSeconds, &l.MovingPace, &l.BestPace,
			&l.AvgPower, &l.MaxPower, &l.AvgCadence, &l.MaxCadence, &l.AvgTemperature,
		)
		if err != nil {
			return nil, err
		}
		laps = append(laps, l)
	}

	return laps, rows.Err()
}
