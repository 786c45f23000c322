package analysis

// Lap holds the metrics for one lap of an activity. Distance, time, and
// pace are always meaningful; everything else is optional and nil when the
// source carried no usable value. A present zero is a real reading.
type Lap struct {
	DistanceMeters float64
	TimeSeconds    float64

	// Pace is the rendered min/km pace ("M:SS"). Extractors that already
	// know the pace set it; when empty the report derives it from
	// DistanceMeters and TimeSeconds.
	Pace string

	AvgHeartrate  *int
	MaxHeartrate  *int
	ElevationGain *int
	ElevationLoss *int
	Calories      *int

	// Pass-through metrics. Only sources that measure them (FIT laps,
	// Strava lap summaries) ever set these; derived laps leave them nil.
	GradeAdjustedPace      string
	BestPace               string
	MovingPace             string
	MovingTimeSeconds      *float64
	AvgPower               *int
	MaxPower               *int
	AvgPowerPerKg          *float64
	MaxPowerPerKg          *float64
	AvgCadence             *int
	MaxCadence             *int
	AvgGroundContactTime   *int
	GCTBalance             string
	AvgStrideLength        *float64
	AvgVerticalOscillation *float64
	AvgVerticalRatio       *float64
	AvgTemperature         *int
	PaceLoss               *float64
	PaceLossPercent        *float64
}

// Summary holds whole-activity totals for the report's closing row. It
// carries the same optional field shapes as Lap so session-level readings
// from sources that have them survive to the report.
type Summary struct {
	TotalTimeSeconds float64
	TotalDistanceKm  float64

	TotalCalories *int
	AvgHeartrate  *int
	MaxHeartrate  *int
	ElevationGain *int
	ElevationLoss *int

	GradeAdjustedPace      string
	BestPace               string
	MovingPace             string
	MovingTimeSeconds      *float64
	AvgPower               *int
	MaxPower               *int
	AvgPowerPerKg          *float64
	MaxPowerPerKg          *float64
	AvgCadence             *int
	MaxCadence             *int
	AvgGroundContactTime   *int
	GCTBalance             string
	AvgStrideLength        *float64
	AvgVerticalOscillation *float64
	AvgVerticalRatio       *float64
	AvgTemperature         *int
}

// SampleSeries is the normalized form of per-sample telemetry: parallel
// channels indexed by sample. Distance and Time hold cumulative values.
// Distance may start at a nonzero offset; windowed math only ever looks
// at differences. Heartrate and Altitude may be absent (nil) or shorter
// than Distance, in which case windows simply see fewer samples.
type SampleSeries struct {
	Distance  []float64
	Time      []float64
	Heartrate []int
	Altitude  []float64
}

// SampleWindow is a contiguous cut of a SampleSeries covering one lap.
type SampleWindow struct {
	Distance  []float64
	Time      []float64
	Heartrate []int
	Altitude  []float64
}

// Window cuts the inclusive index range [lo, hi] from every channel the
// series carries. Channels shorter than the range contribute what they
// have.
func (s SampleSeries) Window(lo, hi int) SampleWindow {
	return SampleWindow{
		Distance:  cut(s.Distance, lo, hi),
		Time:      cut(s.Time, lo, hi),
		Heartrate: cut(s.Heartrate, lo, hi),
		Altitude:  cut(s.Altitude, lo, hi),
	}
}

func cut[T any](channel []T, lo, hi int) []T {
	if lo >= len(channel) {
		return nil
	}
	if hi >= len(channel) {
		hi = len(channel) - 1
	}
	return channel[lo : hi+1]
}
