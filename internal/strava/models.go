package strava

import "time"

// Activity represents a Strava activity from the API
type Activity struct {
	ID                 int64     `json:"id"`
	Athlete            Athlete   `json:"athlete"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Timezone           string    `json:"timezone"`
	Distance           float64   `json:"distance"`            // meters
	MovingTime         int       `json:"moving_time"`         // seconds
	ElapsedTime        int       `json:"elapsed_time"`        // seconds
	TotalElevationGain float64   `json:"total_elevation_gain"` // meters
	AverageSpeed       float64   `json:"average_speed"`       // m/s
	MaxSpeed           float64   `json:"max_speed"`           // m/s
	AverageHeartrate   float64   `json:"average_heartrate"`   // bpm
	MaxHeartrate       float64   `json:"max_heartrate"`       // bpm
	AverageCadence     float64   `json:"average_cadence"`     // rpm or spm
	Calories           float64   `json:"calories"`            // detailed responses only
	HasHeartrate       bool      `json:"has_heartrate"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Lap represents a single lap from the activity laps endpoint
type Lap struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	LapIndex           int     `json:"lap_index"`
	Distance           float64 `json:"distance"`     // meters
	ElapsedTime        int     `json:"elapsed_time"` // seconds
	MovingTime         int     `json:"moving_time"`  // seconds
	StartIndex         int     `json:"start_index"`
	EndIndex           int     `json:"end_index"`
	TotalElevationGain float64 `json:"total_elevation_gain"` // meters
	AverageSpeed       float64 `json:"average_speed"`        // m/s
	MaxSpeed           float64 `json:"max_speed"`            // m/s
	AverageHeartrate   float64 `json:"average_heartrate"`    // bpm
	MaxHeartrate       float64 `json:"max_heartrate"`        // bpm
	AverageCadence     float64 `json:"average_cadence"`      // rpm
	AverageWatts       float64 `json:"average_watts"`
}

// Streams represents activity stream data from the API
// Strava returns streams keyed by type when key_by_type=true
type Streams struct {
	Time      *StreamData[int]     `json:"time"`
	Distance  *StreamData[float64] `json:"distance"`
	Altitude  *StreamData[float64] `json:"altitude"`
	Heartrate *StreamData[int]     `json:"heartrate"`
	Cadence   *StreamData[int]     `json:"cadence"`
	Watts     *StreamData[float64] `json:"watts"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the length of the stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// HasDistance returns true if distance data exists
func (s *Streams) HasDistance() bool {
	return s != nil && s.Distance != nil && len(s.Distance.Data) > 0
}

// HasHeartrate returns true if heartrate data exists
func (s *Streams) HasHeartrate() bool {
	return s != nil && s.Heartrate != nil && len(s.Heartrate.Data) > 0
}
