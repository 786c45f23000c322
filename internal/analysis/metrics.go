package analysis

import "math"

// LapFromWindow computes one lap's aggregate metrics from a contiguous
// sample window. Distance and time are the difference between the
// window's last and first cumulative values, so a one-sample window
// yields zeros rather than an error. ok is false when the window has no
// distance or time samples at all; such a window carries no lap.
func LapFromWindow(w SampleWindow) (Lap, bool) {
	if len(w.Distance) == 0 || len(w.Time) == 0 {
		return Lap{}, false
	}

	lap := Lap{
		DistanceMeters: w.Distance[len(w.Distance)-1] - w.Distance[0],
		TimeSeconds:    w.Time[len(w.Time)-1] - w.Time[0],
	}

	var hrSum, hrCount, hrMax int
	for _, hr := range w.Heartrate {
		// Zero means the strap wasn't reading, not a resting athlete
		if hr <= 0 {
			continue
		}
		hrSum += hr
		hrCount++
		if hr > hrMax {
			hrMax = hr
		}
	}
	if hrCount > 0 {
		avg := int(math.Round(float64(hrSum) / float64(hrCount)))
		lap.AvgHeartrate = &avg
		maxHR := hrMax
		lap.MaxHeartrate = &maxHR
	}

	if gain, loss, ok := ElevationFromAltitudes(w.Altitude); ok {
		lap.ElevationGain = &gain
		lap.ElevationLoss = &loss
	}

	return lap, true
}

// ElevationFromAltitudes accumulates signed deltas between consecutive
// altitude samples: climbs sum into gain, descents (as positive values)
// into loss, both truncated to whole meters. Fewer than two samples
// cannot show any change, so ok is false and the fields stay unknown.
func ElevationFromAltitudes(altitudes []float64) (gain, loss int, ok bool) {
	if len(altitudes) < 2 {
		return 0, 0, false
	}

	var up, down float64
	for i := 1; i < len(altitudes); i++ {
		diff := altitudes[i] - altitudes[i-1]
		if diff > 0 {
			up += diff
		} else {
			down += -diff
		}
	}

	return int(up), int(down), true
}
