package fitfile

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"runsplits/internal/analysis"
	"runsplits/internal/report"
)

// RunCadenceMultiplier converts the single-leg strides per minute that
// FIT running laps report into steps per minute.
const RunCadenceMultiplier = 2

// ParseFile decodes a FIT activity file from disk into laps and a
// whole-activity summary.
func ParseFile(path string) ([]analysis.Lap, analysis.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, analysis.Summary{}, fmt.Errorf("opening FIT file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a FIT activity into one Lap per lap message plus a
// Summary built from lap aggregation and overridden by session-level
// readings where the device recorded them. Files that decode but carry
// no lap messages yield an empty lap list; only undecodable input or a
// non-activity file is an error.
func Parse(r io.Reader) ([]analysis.Lap, analysis.Summary, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, analysis.Summary{}, fmt.Errorf("decoding FIT: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, analysis.Summary{}, fmt.Errorf("reading FIT activity: %w", err)
	}

	records := make([]*fit.RecordMsg, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec != nil {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	var laps []analysis.Lap
	for _, msg := range activity.Laps {
		if msg == nil {
			continue
		}
		laps = append(laps, convertLap(msg, records))
	}

	return laps, buildSummary(activity, laps), nil
}

func convertLap(msg *fit.LapMsg, records []*fit.RecordMsg) analysis.Lap {
	lap := analysis.Lap{}

	elapsed := positive(msg.GetTotalElapsedTimeScaled())
	timer := positive(msg.GetTotalTimerTimeScaled())
	lap.TimeSeconds = elapsed
	if lap.TimeSeconds == 0 {
		lap.TimeSeconds = timer
	}
	if timer > 0 {
		moving := timer
		lap.MovingTimeSeconds = &moving
	}

	lap.DistanceMeters = positive(msg.GetTotalDistanceScaled())
	if lap.DistanceMeters > 0 && lap.TimeSeconds > 0 {
		lap.Pace = report.PaceFromDistanceTime(lap.DistanceMeters, lap.TimeSeconds)
	}
	if lap.DistanceMeters > 0 && timer > 0 {
		lap.MovingPace = report.PaceFromDistanceTime(lap.DistanceMeters, timer)
	}
	if speed := maxSpeed(msg.GetEnhancedMaxSpeedScaled(), msg.GetMaxSpeedScaled()); speed > 0 {
		lap.BestPace = report.FormatPace(speed)
	}

	if v, ok := validUint8(msg.AvgHeartRate); ok && v > 0 {
		lap.AvgHeartrate = &v
	}
	if v, ok := validUint8(msg.MaxHeartRate); ok && v > 0 {
		lap.MaxHeartrate = &v
	}
	if v, ok := validUint16(msg.TotalCalories); ok {
		lap.Calories = &v
	}
	if v, ok := validUint16(msg.AvgPower); ok && v > 0 {
		lap.AvgPower = &v
	}
	if v, ok := validUint16(msg.MaxPower); ok && v > 0 {
		lap.MaxPower = &v
	}
	if v, ok := cadenceSteps(msg.GetAvgCadence()); ok && v > 0 {
		steps := v * RunCadenceMultiplier
		lap.AvgCadence = &steps
	}
	if v, ok := cadenceSteps(msg.GetMaxCadence()); ok && v > 0 {
		steps := v * RunCadenceMultiplier
		lap.MaxCadence = &steps
	}
	if v, ok := validInt8(msg.AvgTemperature); ok {
		lap.AvgTemperature = &v
	}

	gain, haveGain := validUint16(msg.TotalAscent)
	loss, haveLoss := validUint16(msg.TotalDescent)
	switch {
	case haveGain || haveLoss:
		if haveGain {
			lap.ElevationGain = &gain
		}
		if haveLoss {
			lap.ElevationLoss = &loss
		}
	default:
		// No ascent/descent from the device; derive it from the altitude
		// samples recorded during this lap's time window.
		if g, l, ok := analysis.ElevationFromAltitudes(lapAltitudes(msg, records)); ok {
			lap.ElevationGain = &g
			lap.ElevationLoss = &l
		}
	}

	return lap
}

// lapAltitudes collects the altitude samples recorded between a lap's
// start and its elapsed-time end. Records are assumed sorted.
func lapAltitudes(msg *fit.LapMsg, records []*fit.RecordMsg) []float64 {
	start := msg.StartTime
	if start.IsZero() || fit.IsBaseTime(start) {
		return nil
	}
	elapsed := positive(msg.GetTotalElapsedTimeScaled())
	if elapsed == 0 {
		return nil
	}
	end := start.Add(time.Duration(elapsed * float64(time.Second)))

	var altitudes []float64
	for _, rec := range records {
		if rec.Timestamp.Before(start) {
			continue
		}
		if rec.Timestamp.After(end) {
			break
		}
		if alt, ok := recordAltitude(rec); ok {
			altitudes = append(altitudes, alt)
		}
	}
	return altitudes
}

func recordAltitude(rec *fit.RecordMsg) (float64, bool) {
	if alt := rec.GetEnhancedAltitudeScaled(); isFinite(alt) {
		return alt, true
	}
	if alt := rec.GetAltitudeScaled(); isFinite(alt) {
		return alt, true
	}
	return 0, false
}

func buildSummary(activity *fit.ActivityFile, laps []analysis.Lap) analysis.Summary {
	var summary analysis.Summary

	// Lap aggregation first; session readings override below when present.
	var (
		hrAvgSum, hrAvgCount, hrMax int
		calories, gain, loss        int
		haveCalories, haveElevation bool
	)
	for _, lap := range laps {
		summary.TotalTimeSeconds += lap.TimeSeconds
		summary.TotalDistanceKm += lap.DistanceMeters / 1000
		if lap.AvgHeartrate != nil {
			hrAvgSum += *lap.AvgHeartrate
			hrAvgCount++
		}
		if lap.MaxHeartrate != nil && *lap.MaxHeartrate > hrMax {
			hrMax = *lap.MaxHeartrate
		}
		if lap.Calories != nil {
			calories += *lap.Calories
			haveCalories = true
		}
		if lap.ElevationGain != nil {
			gain += *lap.ElevationGain
			haveElevation = true
		}
		if lap.ElevationLoss != nil {
			loss += *lap.ElevationLoss
			haveElevation = true
		}
	}
	if hrAvgCount > 0 {
		avg := int(float64(hrAvgSum) / float64(hrAvgCount))
		summary.AvgHeartrate = &avg
	}
	if hrMax > 0 {
		maxHR := hrMax
		summary.MaxHeartrate = &maxHR
	}
	if haveCalories {
		total := calories
		summary.TotalCalories = &total
	}
	if haveElevation {
		g, l := gain, loss
		summary.ElevationGain = &g
		summary.ElevationLoss = &l
	}

	if len(activity.Sessions) == 0 {
		return summary
	}
	session := activity.Sessions[0]

	if v := positive(session.GetTotalElapsedTimeScaled()); v > 0 {
		summary.TotalTimeSeconds = v
	}
	if v := positive(session.GetTotalDistanceScaled()); v > 0 {
		summary.TotalDistanceKm = v / 1000
	}
	if v := positive(session.GetTotalMovingTimeScaled()); v > 0 {
		moving := v
		summary.MovingTimeSeconds = &moving
		if summary.TotalDistanceKm > 0 {
			summary.MovingPace = report.PaceFromDistanceTime(summary.TotalDistanceKm*1000, moving)
		}
	}
	if v, ok := validUint8(session.AvgHeartRate); ok && v > 0 {
		summary.AvgHeartrate = &v
	}
	if v, ok := validUint8(session.MaxHeartRate); ok && v > 0 {
		summary.MaxHeartrate = &v
	}
	if v, ok := validUint16(session.TotalCalories); ok && v > 0 {
		summary.TotalCalories = &v
	}
	if v, ok := validUint16(session.TotalAscent); ok {
		summary.ElevationGain = &v
	}
	if v, ok := validUint16(session.TotalDescent); ok {
		summary.ElevationLoss = &v
	}
	if v, ok := validUint16(session.AvgPower); ok && v > 0 {
		summary.AvgPower = &v
	}
	if v, ok := validUint16(session.MaxPower); ok && v > 0 {
		summary.MaxPower = &v
	}
	if v, ok := cadenceSteps(session.GetAvgCadence()); ok && v > 0 {
		steps := v * RunCadenceMultiplier
		summary.AvgCadence = &steps
	}
	if v, ok := cadenceSteps(session.GetMaxCadence()); ok && v > 0 {
		steps := v * RunCadenceMultiplier
		summary.MaxCadence = &steps
	}
	if v, ok := validInt8(session.AvgTemperature); ok {
		summary.AvgTemperature = &v
	}
	if speed := maxSpeed(session.GetEnhancedMaxSpeedScaled(), session.GetMaxSpeedScaled()); speed > 0 {
		summary.BestPace = report.FormatPace(speed)
	}

	return summary
}

func maxSpeed(enhanced, plain float64) float64 {
	if v := positive(enhanced); v > 0 {
		return v
	}
	return positive(plain)
}

// The FIT profile marks unset numeric fields with the type's maximum
// value; scaled getters surface them as NaN instead.

func validUint8(v uint8) (int, bool) {
	if v == math.MaxUint8 {
		return 0, false
	}
	return int(v), true
}

func validUint16(v uint16) (int, bool) {
	if v == math.MaxUint16 {
		return 0, false
	}
	return int(v), true
}

func validInt8(v int8) (int, bool) {
	if v == math.MaxInt8 {
		return 0, false
	}
	return int(v), true
}

func cadenceSteps(v any) (int, bool) {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0, false
		}
		return int(x), true
	case uint16:
		if x == math.MaxUint16 {
			return 0, false
		}
		return int(x), true
	case int:
		return x, true
	case float64:
		if !isFinite(x) {
			return 0, false
		}
		return int(x), true
	}
	return 0, false
}

func positive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
