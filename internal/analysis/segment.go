package analysis

// DefaultLapMeters is the split length used when no override is configured.
const DefaultLapMeters = 1000.0

// SegmentStreams partitions a continuous sample series into fixed-distance
// laps. A lap closes at the first sample whose cumulative distance is at
// least lapMeters past the lap's starting distance; the window handed to
// the calculator runs from the lap's first sample through that closing
// sample, and the next lap starts at the following one. Whatever remains
// after the last full split always becomes a final partial lap, however
// short. A series with no distance channel yields no laps; the caller
// decides whether activity-level totals can stand in.
func SegmentStreams(series SampleSeries, lapMeters float64) []Lap {
	if len(series.Distance) == 0 {
		return nil
	}
	if lapMeters <= 0 {
		lapMeters = DefaultLapMeters
	}

	var laps []Lap
	lapStart := 0
	startDistance := 0.0

	for i, d := range series.Distance {
		if d-startDistance >= lapMeters {
			if lap, ok := LapFromWindow(series.Window(lapStart, i)); ok {
				laps = append(laps, lap)
			}
			startDistance = d
			lapStart = i + 1
		}
	}

	if lapStart < len(series.Distance) {
		if lap, ok := LapFromWindow(series.Window(lapStart, len(series.Distance)-1)); ok {
			laps = append(laps, lap)
		}
	}

	return laps
}
