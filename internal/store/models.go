package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Activity sources recorded in the registry
const (
	SourceStrava = "strava"
	SourceTCX    = "tcx"
	SourceFIT    = "fit"
)

// Activity represents one registry row: where the activity came from,
// its whole-activity totals, and its export state
type Activity struct {
	ID               int64      `db:"id"`
	Name             string     `db:"name"`
	Source           string     `db:"source"`            // "strava", "tcx" or "fit"
	StartDate        time.Time  `db:"start_date"`        // zero when the source has no timestamp
	Distance         float64    `db:"distance"`          // meters
	ElapsedTime      float64    `db:"elapsed_time"`      // seconds
	MovingTime       *float64   `db:"moving_time"`       // seconds, nullable
	AverageHeartrate *int       `db:"average_heartrate"` // nullable
	MaxHeartrate     *int       `db:"max_heartrate"`     // nullable
	Calories         *int       `db:"calories"`          // nullable
	ElevationGain    *int       `db:"elevation_gain"`    // nullable
	ElevationLoss    *int       `db:"elevation_loss"`    // nullable
	LapSource        string     `db:"lap_source"`        // how laps were resolved, "" until resolved
	LapCount         int        `db:"lap_count"`
	ExportedAt       *time.Time `db:"exported_at"` // nil until a report was written
}

// Lap represents a single stored lap row for an activity
type Lap struct {
	ActivityID        int64    `db:"activity_id"`
	LapIndex          int      `db:"lap_index"`
	DistanceMeters    float64  `db:"distance_meters"`
	TimeSeconds       float64  `db:"time_seconds"`
	Pace              string   `db:"pace"`
	AvgHeartrate      *int     `db:"avg_heartrate"`  // bpm
	MaxHeartrate      *int     `db:"max_heartrate"`  // bpm
	ElevationGain     *int     `db:"elevation_gain"` // meters
	ElevationLoss     *int     `db:"elevation_loss"` // meters
	Calories          *int     `db:"calories"`
	MovingTimeSeconds *float64 `db:"moving_time_seconds"`
	MovingPace        string   `db:"moving_pace"`
	BestPace          string   `db:"best_pace"`
	AvgPower          *int     `db:"avg_power"`       // watts
	MaxPower          *int     `db:"max_power"`       // watts
	AvgCadence        *int     `db:"avg_cadence"`     // steps per minute
	MaxCadence        *int     `db:"max_cadence"`     // steps per minute
	AvgTemperature    *int     `db:"avg_temperature"` // celsius
}
