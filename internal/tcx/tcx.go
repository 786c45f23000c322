package tcx

import (
	"encoding/xml"
	"fmt"
	"os"

	"runsplits/internal/analysis"
	"runsplits/internal/report"
)

// Garmin TrainingCenterDatabase v2. Go's xml decoder matches local
// element names, so the default namespace needs no special handling.
type trainingCenterDatabase struct {
	Activities activityList `xml:"Activities"`
}

type activityList struct {
	Activities []activity `xml:"Activity"`
}

type activity struct {
	Sport string       `xml:"Sport,attr"`
	Laps  []lapElement `xml:"Lap"`
}

// Pointer fields distinguish an absent element from a present zero.
type lapElement struct {
	TotalTimeSeconds *float64        `xml:"TotalTimeSeconds"`
	DistanceMeters   *float64        `xml:"DistanceMeters"`
	Calories         *int            `xml:"Calories"`
	AverageHeartRate *heartRateValue `xml:"AverageHeartRateBpm"`
	MaximumHeartRate *heartRateValue `xml:"MaximumHeartRateBpm"`
	Tracks           []track         `xml:"Track"`
}

type heartRateValue struct {
	Value int `xml:"Value"`
}

type track struct {
	Trackpoints []trackpoint `xml:"Trackpoint"`
}

type trackpoint struct {
	AltitudeMeters *float64 `xml:"AltitudeMeters"`
}

// ParseFile reads a TCX document from disk and extracts its laps.
func ParseFile(path string) ([]analysis.Lap, analysis.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, analysis.Summary{}, fmt.Errorf("reading TCX file: %w", err)
	}
	return Parse(data)
}

// Parse extracts one lap per Lap element plus a whole-activity summary.
// Laps missing distance or time parse as zeros rather than failing; only
// a structurally malformed document is an error. A document with no Lap
// elements yields an empty lap list, not an error.
func Parse(data []byte) ([]analysis.Lap, analysis.Summary, error) {
	var db trainingCenterDatabase
	if err := xml.Unmarshal(data, &db); err != nil {
		return nil, analysis.Summary{}, fmt.Errorf("parsing TCX: %w", err)
	}

	var laps []analysis.Lap
	var summary analysis.Summary

	var (
		hrAvgSum, hrAvgCount, hrMax int
		caloriesSum                 int
		haveCalories                bool
		gainSum, lossSum            int
		haveElevation               bool
	)

	for _, act := range db.Activities.Activities {
		for _, el := range act.Laps {
			lap := analysis.Lap{}

			if el.DistanceMeters != nil {
				lap.DistanceMeters = *el.DistanceMeters
			}
			if el.TotalTimeSeconds != nil {
				lap.TimeSeconds = *el.TotalTimeSeconds
			}
			summary.TotalDistanceKm += lap.DistanceMeters / 1000
			summary.TotalTimeSeconds += lap.TimeSeconds

			if el.Calories != nil {
				calories := *el.Calories
				lap.Calories = &calories
				caloriesSum += calories
				haveCalories = true
			}

			if el.AverageHeartRate != nil && el.AverageHeartRate.Value > 0 {
				avg := el.AverageHeartRate.Value
				lap.AvgHeartrate = &avg
				hrAvgSum += avg
				hrAvgCount++
			}
			if el.MaximumHeartRate != nil && el.MaximumHeartRate.Value > 0 {
				maxHR := el.MaximumHeartRate.Value
				lap.MaxHeartrate = &maxHR
				if maxHR > hrMax {
					hrMax = maxHR
				}
			}

			if lap.DistanceMeters > 0 && lap.TimeSeconds > 0 {
				lap.Pace = report.PaceFromDistanceTime(lap.DistanceMeters, lap.TimeSeconds)
			}

			var altitudes []float64
			for _, tr := range el.Tracks {
				for _, tp := range tr.Trackpoints {
					if tp.AltitudeMeters != nil {
						altitudes = append(altitudes, *tp.AltitudeMeters)
					}
				}
			}
			if gain, loss, ok := analysis.ElevationFromAltitudes(altitudes); ok {
				g, l := gain, loss
				lap.ElevationGain = &g
				lap.ElevationLoss = &l
				gainSum += gain
				lossSum += loss
				haveElevation = true
			}

			laps = append(laps, lap)
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
		total := caloriesSum
		summary.TotalCalories = &total
	}
	if haveElevation {
		gain, loss := gainSum, lossSum
		summary.ElevationGain = &gain
		summary.ElevationLoss = &loss
	}

	return laps, summary, nil
}
