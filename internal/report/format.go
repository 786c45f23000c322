package report

import (
	"fmt"
	"math"
)

// FormatTime renders elapsed seconds as "M:SS.d" with the tenths digit
// truncated, never rounded, so a lap of 269.64s reads "4:29.6". Zero or
// negative input renders the zero sentinel.
func FormatTime(seconds float64) string {
	if seconds <= 0 {
		return "0:00.0"
	}
	minutes := int(seconds / 60)
	secs := int(math.Mod(seconds, 60))
	tenths := int(math.Mod(seconds, 1) * 10)
	return fmt.Sprintf("%d:%02d.%d", minutes, secs, tenths)
}

// FormatPace renders a speed as a min/km pace string "M:SS". Zero or
// negative speed renders the zero sentinel.
func FormatPace(metersPerSecond float64) string {
	if metersPerSecond <= 0 {
		return "0:00"
	}
	secondsPerKm := 1000 / metersPerSecond
	minutes := int(secondsPerKm / 60)
	secs := int(math.Mod(secondsPerKm, 60))
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// PaceFromDistanceTime renders the pace implied by a distance covered in
// a duration. Either value being non-positive renders the zero sentinel
// rather than dividing by a degenerate denominator.
func PaceFromDistanceTime(distanceMeters, timeSeconds float64) string {
	if distanceMeters <= 0 || timeSeconds <= 0 {
		return "0:00"
	}
	return FormatPace(distanceMeters / timeSeconds)
}
