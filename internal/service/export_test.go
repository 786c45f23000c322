package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"runsplits/internal/store"
	"runsplits/internal/strava"
)

// fakeAPI serves canned Strava responses for service tests
type fakeAPI struct {
	pages          [][]strava.Activity
	pagesRequested []int
	pagesErr       error
	activity       *strava.Activity
	activityErr    error
	laps           []strava.Lap
	lapsErr        error
	streams        *strava.Streams
	streamsErr     error
}

func (f *fakeAPI) GetActivities(_ context.Context, _ time.Time, page, _ int) ([]strava.Activity, error) {
	f.pagesRequested = append(f.pagesRequested, page)
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	if page > len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}

func (f *fakeAPI) GetActivity(_ context.Context, _ int64) (*strava.Activity, error) {
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	return f.activity, nil
}

func (f *fakeAPI) GetActivityLaps(_ context.Context, _ int64) ([]strava.Lap, error) {
	if f.lapsErr != nil {
		return nil, f.lapsErr
	}
	return f.laps, nil
}

func (f *fakeAPI) GetActivityStreams(_ context.Context, _ int64) (*strava.Streams, error) {
	if f.streamsErr != nil {
		return nil, f.streamsErr
	}
	return f.streams, nil
}

func (f *fakeAPI) RateLimitStatus() (int, int) {
	return 95, 980
}

// openTestDB creates an in-memory database with migrations applied
func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testActivity() *strava.Activity {
	return &strava.Activity{
		ID:                 123,
		Name:               "Morning Run",
		Type:               "Run",
		StartDate:          time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC),
		Distance:           10000,
		MovingTime:         3100,
		ElapsedTime:        3200,
		TotalElevationGain: 85.5,
		AverageHeartrate:   152.4,
		MaxHeartrate:       171.8,
		Calories:           650.2,
	}
}

func testAPILaps() []strava.Lap {
	return []strava.Lap{
		{LapIndex: 1, Distance: 5000, ElapsedTime: 1600, MovingTime: 1550, AverageHeartrate: 150.6, MaxHeartrate: 166.2, TotalElevationGain: 42.5, AverageCadence: 88.5, AverageWatts: 270.4},
		{LapIndex: 2, Distance: 5000, ElapsedTime: 1600, MovingTime: 1550, AverageHeartrate: 154.2, MaxHeartrate: 171.8, TotalElevationGain: 43},
	}
}

// Six samples splitting at 1000m into a 1200m lap and a 500m lap, both
// at exactly 3.125 m/s.
func testStreams() *strava.Streams {
	return &strava.Streams{
		Time:      &strava.StreamData[int]{Data: []int{0, 128, 256, 384, 544, 704}},
		Distance:  &strava.StreamData[float64]{Data: []float64{0, 400, 800, 1200, 1700, 2200}},
		Heartrate: &strava.StreamData[int]{Data: []int{140, 150, 160, 150, 160, 170}},
	}
}

func TestResolveLaps(t *testing.T) {
	activity := testActivity()

	t.Run("prefers recorded laps", func(t *testing.T) {
		api := &fakeAPI{laps: testAPILaps(), streams: testStreams()}
		svc := NewExportService(api, nil, "", 1000)

		laps, source := svc.ResolveLaps(context.Background(), activity)
		if source != SourceLaps {
			t.Fatalf("expected SourceLaps, got %v", source)
		}
		if len(laps) != 2 {
			t.Fatalf("expected 2 laps, got %d", len(laps))
		}
		if laps[0].DistanceMeters != 5000 {
			t.Errorf("expected distance 5000, got %v", laps[0].DistanceMeters)
		}
		if laps[0].Pace != "5:20" {
			t.Errorf("expected pace 5:20, got %q", laps[0].Pace)
		}
	})

	t.Run("laps failure falls back to streams", func(t *testing.T) {
		api := &fakeAPI{lapsErr: errors.New("boom"), streams: testStreams()}
		svc := NewExportService(api, nil, "", 1000)

		laps, source := svc.ResolveLaps(context.Background(), activity)
		if source != SourceStreams {
			t.Fatalf("expected SourceStreams, got %v", source)
		}
		if len(laps) != 2 {
			t.Fatalf("expected 2 laps, got %d", len(laps))
		}
		if laps[0].DistanceMeters != 1200 || laps[0].TimeSeconds != 384 {
			t.Errorf("expected lap 1200m/384s, got %v/%v", laps[0].DistanceMeters, laps[0].TimeSeconds)
		}
		if laps[0].AvgHeartrate == nil || *laps[0].AvgHeartrate != 150 {
			t.Errorf("expected avg HR 150, got %v", laps[0].AvgHeartrate)
		}
		if laps[1].DistanceMeters != 500 || laps[1].TimeSeconds != 160 {
			t.Errorf("expected lap 500m/160s, got %v/%v", laps[1].DistanceMeters, laps[1].TimeSeconds)
		}
		if laps[1].MaxHeartrate == nil || *laps[1].MaxHeartrate != 170 {
			t.Errorf("expected max HR 170, got %v", laps[1].MaxHeartrate)
		}
	})

	t.Run("empty laps fall back to streams", func(t *testing.T) {
		api := &fakeAPI{streams: testStreams()}
		svc := NewExportService(api, nil, "", 1000)

		_, source := svc.ResolveLaps(context.Background(), activity)
		if source != SourceStreams {
			t.Fatalf("expected SourceStreams, got %v", source)
		}
	})

	t.Run("stream failure falls back to activity totals", func(t *testing.T) {
		api := &fakeAPI{lapsErr: errors.New("boom"), streamsErr: errors.New("boom")}
		svc := NewExportService(api, nil, "", 1000)

		laps, source := svc.ResolveLaps(context.Background(), activity)
		if source != SourceActivity {
			t.Fatalf("expected SourceActivity, got %v", source)
		}
		if len(laps) != 1 {
			t.Fatalf("expected 1 lap, got %d", len(laps))
		}
		if laps[0].DistanceMeters != 10000 || laps[0].TimeSeconds != 3200 {
			t.Errorf("expected lap 10000m/3200s, got %v/%v", laps[0].DistanceMeters, laps[0].TimeSeconds)
		}
		if laps[0].Pace != "5:20" {
			t.Errorf("expected pace 5:20, got %q", laps[0].Pace)
		}
		if laps[0].Calories == nil || *laps[0].Calories != 650 {
			t.Errorf("expected calories 650, got %v", laps[0].Calories)
		}
	})

	t.Run("no data anywhere", func(t *testing.T) {
		api := &fakeAPI{lapsErr: errors.New("boom"), streamsErr: errors.New("boom")}
		svc := NewExportService(api, nil, "", 1000)

		laps, source := svc.ResolveLaps(context.Background(), &strava.Activity{ID: 999})
		if source != SourceNone {
			t.Fatalf("expected SourceNone, got %v", source)
		}
		if laps != nil {
			t.Errorf("expected no laps, got %d", len(laps))
		}
	})
}

func TestConvertAPILaps(t *testing.T) {
	t.Run("maps recorded metrics", func(t *testing.T) {
		laps := convertAPILaps(testAPILaps())

		if len(laps) != 2 {
			t.Fatalf("expected 2 laps, got %d", len(laps))
		}
		lap := laps[0]
		if lap.AvgHeartrate == nil || *lap.AvgHeartrate != 150 {
			t.Errorf("expected avg HR truncated to 150, got %v", lap.AvgHeartrate)
		}
		if lap.MaxHeartrate == nil || *lap.MaxHeartrate != 166 {
			t.Errorf("expected max HR 166, got %v", lap.MaxHeartrate)
		}
		if lap.ElevationGain == nil || *lap.ElevationGain != 42 {
			t.Errorf("expected elevation gain 42, got %v", lap.ElevationGain)
		}
		if lap.AvgCadence == nil || *lap.AvgCadence != 177 {
			t.Errorf("expected doubled cadence 177, got %v", lap.AvgCadence)
		}
		if lap.AvgPower == nil || *lap.AvgPower != 270 {
			t.Errorf("expected avg power 270, got %v", lap.AvgPower)
		}
		if lap.MovingTimeSeconds == nil || *lap.MovingTimeSeconds != 1550 {
			t.Errorf("expected moving time 1550, got %v", lap.MovingTimeSeconds)
		}
	})

	t.Run("zero metrics stay unset", func(t *testing.T) {
		laps := convertAPILaps([]strava.Lap{{Distance: 1000, ElapsedTime: 320}})

		lap := laps[0]
		if lap.AvgHeartrate != nil {
			t.Errorf("expected nil avg HR, got %v", *lap.AvgHeartrate)
		}
		if lap.ElevationGain != nil {
			t.Errorf("expected nil elevation gain, got %v", *lap.ElevationGain)
		}
		if lap.AvgCadence != nil {
			t.Errorf("expected nil cadence, got %v", *lap.AvgCadence)
		}
		if lap.MovingTimeSeconds != nil {
			t.Errorf("expected nil moving time, got %v", *lap.MovingTimeSeconds)
		}
		if lap.Pace != "5:20" {
			t.Errorf("expected pace 5:20, got %q", lap.Pace)
		}
	})

	t.Run("no pace without distance", func(t *testing.T) {
		laps := convertAPILaps([]strava.Lap{{ElapsedTime: 300}})

		if laps[0].Pace != "" {
			t.Errorf("expected empty pace, got %q", laps[0].Pace)
		}
	})
}

func TestWholeActivityLap(t *testing.T) {
	t.Run("builds lap from totals", func(t *testing.T) {
		lap, ok := wholeActivityLap(testActivity())
		if !ok {
			t.Fatal("expected a lap from complete totals")
		}
		if lap.DistanceMeters != 10000 {
			t.Errorf("expected distance 10000, got %v", lap.DistanceMeters)
		}
		if lap.MovingTimeSeconds == nil || *lap.MovingTimeSeconds != 3100 {
			t.Errorf("expected moving time 3100, got %v", lap.MovingTimeSeconds)
		}
		if lap.ElevationGain == nil || *lap.ElevationGain != 85 {
			t.Errorf("expected elevation gain 85, got %v", lap.ElevationGain)
		}
	})

	t.Run("needs distance and time", func(t *testing.T) {
		if _, ok := wholeActivityLap(&strava.Activity{ElapsedTime: 300}); ok {
			t.Error("expected no lap without distance")
		}
		if _, ok := wholeActivityLap(&strava.Activity{Distance: 5000}); ok {
			t.Error("expected no lap without elapsed time")
		}
	})
}

func TestSummaryFromActivity(t *testing.T) {
	s := summaryFromActivity(testActivity())

	if s.TotalTimeSeconds != 3200 {
		t.Errorf("expected total time 3200, got %v", s.TotalTimeSeconds)
	}
	if s.TotalDistanceKm != 10 {
		t.Errorf("expected total distance 10km, got %v", s.TotalDistanceKm)
	}
	if s.TotalCalories == nil || *s.TotalCalories != 650 {
		t.Errorf("expected calories 650, got %v", s.TotalCalories)
	}
	if s.AvgHeartrate == nil || *s.AvgHeartrate != 152 {
		t.Errorf("expected avg HR 152, got %v", s.AvgHeartrate)
	}
	if s.ElevationLoss != nil {
		t.Errorf("expected nil elevation loss, got %v", *s.ElevationLoss)
	}

	empty := summaryFromActivity(&strava.Activity{})
	if empty.AvgHeartrate != nil || empty.TotalCalories != nil || empty.ElevationGain != nil {
		t.Error("expected zero totals to stay unset")
	}
}

func TestExportActivity(t *testing.T) {
	api := &fakeAPI{activity: testActivity(), laps: testAPILaps()}
	db := openTestDB(t)
	dir := t.TempDir()
	svc := NewExportService(api, db, dir, 1000)

	source, err := svc.ExportActivity(context.Background(), 123)
	if err != nil {
		t.Fatalf("ExportActivity failed: %v", err)
	}
	if source != SourceLaps {
		t.Fatalf("expected SourceLaps, got %v", source)
	}

	t.Run("writes the report file", func(t *testing.T) {
		content, err := os.ReadFile(filepath.Join(dir, "activity_123.csv"))
		if err != nil {
			t.Fatalf("reading report: %v", err)
		}

		bom := []byte{0xEF, 0xBB, 0xBF}
		if !bytes.HasPrefix(content, bom) {
			t.Fatal("expected report to start with a UTF-8 BOM")
		}

		records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, bom))).ReadAll()
		if err != nil {
			t.Fatalf("parsing report: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header + 2 laps + summary, got %d rows", len(records))
		}
		if len(records[0]) != 28 {
			t.Fatalf("expected 28 columns, got %d", len(records[0]))
		}

		lap := records[1]
		if lap[0] != "1" || lap[1] != "26:40.0" || lap[3] != "5.00" || lap[4] != "5:20" {
			t.Errorf("unexpected lap row start: %v", lap[:5])
		}
		if lap[6] != "150" {
			t.Errorf("expected avg HR cell 150, got %q", lap[6])
		}
		if lap[24] != "25:50.0" {
			t.Errorf("expected moving time cell 25:50.0, got %q", lap[24])
		}

		sum := records[3]
		if sum[0] != "统计" {
			t.Errorf("expected summary label, got %q", sum[0])
		}
		if sum[1] != "53:20.0" || sum[3] != "10.00" || sum[4] != "5:20" {
			t.Errorf("unexpected summary row start: %v", sum[:5])
		}
		if sum[20] != "650" {
			t.Errorf("expected calories cell 650, got %q", sum[20])
		}
		if sum[26] != "--" || sum[27] != "--" {
			t.Errorf("expected trailing sentinels, got %q %q", sum[26], sum[27])
		}
	})

	t.Run("stamps the registry", func(t *testing.T) {
		activity, err := db.GetActivity(123)
		if err != nil {
			t.Fatalf("GetActivity failed: %v", err)
		}
		if activity.Source != store.SourceStrava {
			t.Errorf("expected source strava, got %q", activity.Source)
		}
		if activity.ExportedAt == nil {
			t.Error("expected exported_at to be set")
		}
		if activity.LapSource != "laps" {
			t.Errorf("expected lap source laps, got %q", activity.LapSource)
		}
		if activity.LapCount != 2 {
			t.Errorf("expected lap count 2, got %d", activity.LapCount)
		}
		if activity.Calories == nil || *activity.Calories != 650 {
			t.Errorf("expected calories 650, got %v", activity.Calories)
		}
	})

	t.Run("saves lap rows", func(t *testing.T) {
		laps, err := db.GetLaps(123)
		if err != nil {
			t.Fatalf("GetLaps failed: %v", err)
		}
		if len(laps) != 2 {
			t.Fatalf("expected 2 lap rows, got %d", len(laps))
		}
		if laps[0].Pace != "5:20" {
			t.Errorf("expected stored pace 5:20, got %q", laps[0].Pace)
		}
		if laps[0].AvgCadence == nil || *laps[0].AvgCadence != 177 {
			t.Errorf("expected stored cadence 177, got %v", laps[0].AvgCadence)
		}
	})
}

func TestExportActivityStreamsFallback(t *testing.T) {
	api := &fakeAPI{activity: testActivity(), streams: testStreams()}
	db := openTestDB(t)
	dir := t.TempDir()
	svc := NewExportService(api, db, dir, 1000)

	source, err := svc.ExportActivity(context.Background(), 123)
	if err != nil {
		t.Fatalf("ExportActivity failed: %v", err)
	}
	if source != SourceStreams {
		t.Fatalf("expected SourceStreams, got %v", source)
	}

	activity, err := db.GetActivity(123)
	if err != nil {
		t.Fatalf("GetActivity failed: %v", err)
	}
	if activity.LapSource != "streams" {
		t.Errorf("expected lap source streams, got %q", activity.LapSource)
	}

	laps, err := db.GetLaps(123)
	if err != nil {
		t.Fatalf("GetLaps failed: %v", err)
	}
	if len(laps) != 2 {
		t.Fatalf("expected 2 lap rows, got %d", len(laps))
	}
	// Derived laps get their pace filled in at save time
	if laps[0].Pace != "5:20" || laps[1].Pace != "5:20" {
		t.Errorf("expected derived paces 5:20, got %q and %q", laps[0].Pace, laps[1].Pace)
	}
}

func TestExportActivityNoData(t *testing.T) {
	api := &fakeAPI{
		activity:   &strava.Activity{ID: 999, Type: "Run"},
		lapsErr:    errors.New("boom"),
		streamsErr: errors.New("boom"),
	}
	db := openTestDB(t)
	dir := t.TempDir()
	svc := NewExportService(api, db, dir, 1000)

	source, err := svc.ExportActivity(context.Background(), 999)
	if err != nil {
		t.Fatalf("expected skip without error, got %v", err)
	}
	if source != SourceNone {
		t.Fatalf("expected SourceNone, got %v", source)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no report files, got %d", len(entries))
	}

	if _, err := db.GetActivity(999); !errors.Is(err, store.ErrActivityNotFound) {
		t.Errorf("expected activity to stay unregistered, got %v", err)
	}
}

func TestExportActivityFetchError(t *testing.T) {
	api := &fakeAPI{activityErr: errors.New("rate limited")}
	svc := NewExportService(api, openTestDB(t), t.TempDir(), 1000)

	_, err := svc.ExportActivity(context.Background(), 123)
	if err == nil {
		t.Fatal("expected error when the activity fetch fails")
	}
}
