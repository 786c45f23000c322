package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"runsplits/internal/analysis"
	"runsplits/internal/report"
	"runsplits/internal/store"
	"runsplits/internal/strava"
)

// API is the slice of the Strava client the services consume.
// *strava.Client satisfies it.
type API interface {
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	GetActivityLaps(ctx context.Context, activityID int64) ([]strava.Lap, error)
	GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// LapSource identifies which telemetry tier produced an activity's laps
type LapSource int

const (
	SourceNone LapSource = iota
	SourceLaps
	SourceStreams
	SourceActivity
	SourceFile
)

func (s LapSource) String() string {
	switch s {
	case SourceLaps:
		return "laps"
	case SourceStreams:
		return "streams"
	case SourceActivity:
		return "activity"
	case SourceFile:
		return "file"
	default:
		return "none"
	}
}

// ExportService turns one activity's telemetry into a CSV report on disk
type ExportService struct {
	api       API
	store     *store.DB
	outputDir string
	lapMeters float64
}

// NewExportService creates an export service writing reports to outputDir,
// splitting stream-derived laps every lapMeters. api may be nil when only
// file imports are used.
func NewExportService(api API, db *store.DB, outputDir string, lapMeters float64) *ExportService {
	if lapMeters <= 0 {
		lapMeters = analysis.DefaultLapMeters
	}
	return &ExportService{
		api:       api,
		store:     db,
		outputDir: outputDir,
		lapMeters: lapMeters,
	}
}

// ExportActivity fetches, resolves and exports a single Strava activity.
// SourceNone with a nil error means no tier had lap data; nothing is
// written and the activity stays pending.
func (e *ExportService) ExportActivity(ctx context.Context, activityID int64) (LapSource, error) {
	activity, err := e.api.GetActivity(ctx, activityID)
	if err != nil {
		return SourceNone, fmt.Errorf("fetching activity: %w", err)
	}

	laps, source := e.ResolveLaps(ctx, activity)
	if source == SourceNone {
		log.Printf("Warning: no lap data from any source for activity %d, skipping", activityID)
		return SourceNone, nil
	}

	// The detailed response carries fields the listing omits (calories),
	// so refresh the registry row before stamping the export
	if err := e.store.UpsertActivity(registryFromActivity(activity)); err != nil {
		return source, fmt.Errorf("storing activity: %w", err)
	}

	if err := e.finish(activityID, laps, summaryFromActivity(activity), source); err != nil {
		return source, err
	}

	return source, nil
}

// ResolveLaps picks the richest telemetry tier the API has for the
// activity: recorded laps, then streams split into fixed-distance laps,
// then a single lap from whole-activity totals. A failed or empty tier
// demotes to the next one.
func (e *ExportService) ResolveLaps(ctx context.Context, activity *strava.Activity) ([]analysis.Lap, LapSource) {
	apiLaps, err := e.api.GetActivityLaps(ctx, activity.ID)
	if err != nil {
		log.Printf("Warning: no lap data for activity %d, trying streams: %v", activity.ID, err)
	} else if len(apiLaps) > 0 {
		return convertAPILaps(apiLaps), SourceLaps
	}

	streams, err := e.api.GetActivityStreams(ctx, activity.ID)
	if err != nil {
		log.Printf("Warning: failed to get streams for activity %d: %v", activity.ID, err)
	} else {
		laps := analysis.SegmentStreams(sampleSeries(streams), e.lapMeters)
		if len(laps) > 0 {
			return laps, SourceStreams
		}
	}

	if lap, ok := wholeActivityLap(activity); ok {
		return []analysis.Lap{lap}, SourceActivity
	}

	return nil, SourceNone
}

// finish persists resolved laps, writes the report and stamps the export.
// The report is written in a single call so a failure never leaves a
// partial file behind.
func (e *ExportService) finish(activityID int64, laps []analysis.Lap, summary analysis.Summary, source LapSource) error {
	if err := e.store.SaveLaps(activityID, storeLaps(activityID, laps)); err != nil {
		return fmt.Errorf("saving laps: %w", err)
	}

	content := report.Generate(laps, summary)
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(e.outputDir, report.Filename(activityID))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if err := e.store.MarkExported(activityID, source.String(), len(laps)); err != nil {
		return fmt.Errorf("marking exported: %w", err)
	}

	return nil
}

// convertAPILaps maps laps-endpoint rows onto report laps. Strava sends
// zero for metrics the device never recorded; those become unset.
func convertAPILaps(apiLaps []strava.Lap) []analysis.Lap {
	laps := make([]analysis.Lap, 0, len(apiLaps))
	for _, al := range apiLaps {
		lap := analysis.Lap{
			DistanceMeters: al.Distance,
			TimeSeconds:    float64(al.ElapsedTime),
		}
		if al.Distance > 0 && al.ElapsedTime > 0 {
			lap.Pace = report.PaceFromDistanceTime(al.Distance, float64(al.ElapsedTime))
		}
		if al.MovingTime > 0 {
			mt := float64(al.MovingTime)
			lap.MovingTimeSeconds = &mt
		}
		if al.AverageHeartrate > 0 {
			hr := int(al.AverageHeartrate)
			lap.AvgHeartrate = &hr
		}
		if al.MaxHeartrate > 0 {
			hr := int(al.MaxHeartrate)
			lap.MaxHeartrate = &hr
		}
		if al.TotalElevationGain > 0 {
			gain := int(al.TotalElevationGain)
			lap.ElevationGain = &gain
		}
		if al.AverageCadence > 0 {
			cad := int(al.AverageCadence * StravaCadenceMultiplier)
			lap.AvgCadence = &cad
		}
		if al.AverageWatts > 0 {
			watts := int(al.AverageWatts)
			lap.AvgPower = &watts
		}
		laps = append(laps, lap)
	}
	return laps
}

// sampleSeries adapts API streams to the segmenter's channel form
func sampleSeries(s *strava.Streams) analysis.SampleSeries {
	var series analysis.SampleSeries
	if s == nil {
		return series
	}
	if s.Distance != nil {
		series.Distance = s.Distance.Data
	}
	if s.Time != nil {
		series.Time = make([]float64, len(s.Time.Data))
		for i, v := range s.Time.Data {
			series.Time[i] = float64(v)
		}
	}
	if s.Heartrate != nil {
		series.Heartrate = s.Heartrate.Data
	}
	if s.Altitude != nil {
		series.Altitude = s.Altitude.Data
	}
	return series
}

// wholeActivityLap builds the last-resort single lap from activity
// totals. It needs both a distance and an elapsed time to mean anything.
func wholeActivityLap(a *strava.Activity) (analysis.Lap, bool) {
	if a.Distance <= 0 || a.ElapsedTime <= 0 {
		return analysis.Lap{}, false
	}

	lap := analysis.Lap{
		DistanceMeters: a.Distance,
		TimeSeconds:    float64(a.ElapsedTime),
		Pace:           report.PaceFromDistanceTime(a.Distance, float64(a.ElapsedTime)),
	}
	if a.MovingTime > 0 {
		mt := float64(a.MovingTime)
		lap.MovingTimeSeconds = &mt
	}
	if a.AverageHeartrate > 0 {
		hr := int(a.AverageHeartrate)
		lap.AvgHeartrate = &hr
	}
	if a.MaxHeartrate > 0 {
		hr := int(a.MaxHeartrate)
		lap.MaxHeartrate = &hr
	}
	if a.TotalElevationGain > 0 {
		gain := int(a.TotalElevationGain)
		lap.ElevationGain = &gain
	}
	if a.Calories > 0 {
		cal := int(a.Calories)
		lap.Calories = &cal
	}
	return lap, true
}

// summaryFromActivity builds the closing row from activity totals; every
// Strava tier uses it because the API reports totals on the activity
// itself. Strava never reports elevation loss.
func summaryFromActivity(a *strava.Activity) analysis.Summary {
	s := analysis.Summary{
		TotalTimeSeconds: float64(a.ElapsedTime),
		TotalDistanceKm:  a.Distance / 1000.0,
	}
	if a.Calories > 0 {
		cal := int(a.Calories)
		s.TotalCalories = &cal
	}
	if a.AverageHeartrate > 0 {
		hr := int(a.AverageHeartrate)
		s.AvgHeartrate = &hr
	}
	if a.MaxHeartrate > 0 {
		hr := int(a.MaxHeartrate)
		s.MaxHeartrate = &hr
	}
	if a.TotalElevationGain > 0 {
		gain := int(a.TotalElevationGain)
		s.ElevationGain = &gain
	}
	return s
}

// registryFromActivity maps an API activity onto its registry row
func registryFromActivity(a *strava.Activity) *store.Activity {
	row := &store.Activity{
		ID:          a.ID,
		Name:        a.Name,
		Source:      store.SourceStrava,
		StartDate:   a.StartDate,
		Distance:    a.Distance,
		ElapsedTime: float64(a.ElapsedTime),
	}
	if a.MovingTime > 0 {
		mt := float64(a.MovingTime)
		row.MovingTime = &mt
	}
	if a.AverageHeartrate > 0 {
		hr := int(a.AverageHeartrate)
		row.AverageHeartrate = &hr
	}
	if a.MaxHeartrate > 0 {
		hr := int(a.MaxHeartrate)
		row.MaxHeartrate = &hr
	}
	if a.Calories > 0 {
		cal := int(a.Calories)
		row.Calories = &cal
	}
	if a.TotalElevationGain > 0 {
		gain := int(a.TotalElevationGain)
		row.ElevationGain = &gain
	}
	return row
}

// registryFromSummary maps an extracted file summary onto a registry row
func registryFromSummary(id int64, name, source string, s analysis.Summary) *store.Activity {
	return &store.Activity{
		ID:               id,
		Name:             name,
		Source:           source,
		Distance:         s.TotalDistanceKm * 1000,
		ElapsedTime:      s.TotalTimeSeconds,
		MovingTime:       s.MovingTimeSeconds,
		AverageHeartrate: s.AvgHeartrate,
		MaxHeartrate:     s.MaxHeartrate,
		Calories:         s.TotalCalories,
		ElevationGain:    s.ElevationGain,
		ElevationLoss:    s.ElevationLoss,
	}
}

// storeLaps flattens resolved laps into registry rows. Laps whose source
// never stated a pace get the same derived pace the report renders, so
// the TUI reads rows without recomputing.
func storeLaps(activityID int64, laps []analysis.Lap) []store.Lap {
	rows := make([]store.Lap, len(laps))
	for i, lap := range laps {
		pace := lap.Pace
		if pace == "" {
			pace = report.PaceFromDistanceTime(lap.DistanceMeters, lap.TimeSeconds)
		}
		rows[i] = store.Lap{
			ActivityID:        activityID,
			LapIndex:          i,
			DistanceMeters:    lap.DistanceMeters,
			TimeSeconds:       lap.TimeSeconds,
			Pace:              pace,
			AvgHeartrate:      lap.AvgHeartrate,
			MaxHeartrate:      lap.MaxHeartrate,
			ElevationGain:     lap.ElevationGain,
			ElevationLoss:     lap.ElevationLoss,
			Calories:          lap.Calories,
			MovingTimeSeconds: lap.MovingTimeSeconds,
			MovingPace:        lap.MovingPace,
			BestPace:          lap.BestPace,
			AvgPower:          lap.AvgPower,
			MaxPower:          lap.MaxPower,
			AvgCadence:        lap.AvgCadence,
			MaxCadence:        lap.MaxCadence,
			AvgTemperature:    lap.AvgTemperature,
		}
	}
	return rows
}
