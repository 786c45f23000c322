package tcx

import (
	"strings"
	"testing"
)

const twoLapDocument = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
  <Activities>
    <Activity Sport="Running">
      <Id>2024-03-10T08:00:00Z</Id>
      <Lap StartTime="2024-03-10T08:00:00Z">
        <TotalTimeSeconds>302.5</TotalTimeSeconds>
        <DistanceMeters>1000.0</DistanceMeters>
        <Calories>55</Calories>
        <AverageHeartRateBpm><Value>150</Value></AverageHeartRateBpm>
        <MaximumHeartRateBpm><Value>165</Value></MaximumHeartRateBpm>
        <Track>
          <Trackpoint><AltitudeMeters>100</AltitudeMeters></Trackpoint>
          <Trackpoint><AltitudeMeters>105</AltitudeMeters></Trackpoint>
          <Trackpoint><AltitudeMeters>102</AltitudeMeters></Trackpoint>
          <Trackpoint><AltitudeMeters>110</AltitudeMeters></Trackpoint>
        </Track>
      </Lap>
      <Lap StartTime="2024-03-10T08:05:03Z">
        <TotalTimeSeconds>180.25</TotalTimeSeconds>
        <DistanceMeters>500</DistanceMeters>
        <Track>
          <Trackpoint><AltitudeMeters>110</AltitudeMeters></Trackpoint>
        </Track>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

func checkInt(t *testing.T, name string, got *int, want int) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %d", name, want)
	}
	if *got != want {
		t.Errorf("%s = %d, want %d", name, *got, want)
	}
}

func TestParse(t *testing.T) {
	laps, summary, err := Parse([]byte(twoLapDocument))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(laps) != 2 {
		t.Fatalf("len(laps) = %d, want 2", len(laps))
	}

	lap1 := laps[0]
	if lap1.DistanceMeters != 1000 {
		t.Errorf("lap1.DistanceMeters = %v, want 1000", lap1.DistanceMeters)
	}
	if lap1.TimeSeconds != 302.5 {
		t.Errorf("lap1.TimeSeconds = %v, want 302.5", lap1.TimeSeconds)
	}
	if lap1.Pace != "5:02" {
		t.Errorf("lap1.Pace = %q, want 5:02", lap1.Pace)
	}
	checkInt(t, "lap1.Calories", lap1.Calories, 55)
	checkInt(t, "lap1.AvgHeartrate", lap1.AvgHeartrate, 150)
	checkInt(t, "lap1.MaxHeartrate", lap1.MaxHeartrate, 165)
	checkInt(t, "lap1.ElevationGain", lap1.ElevationGain, 13)
	checkInt(t, "lap1.ElevationLoss", lap1.ElevationLoss, 3)

	lap2 := laps[1]
	if lap2.DistanceMeters != 500 {
		t.Errorf("lap2.DistanceMeters = %v, want 500", lap2.DistanceMeters)
	}
	if lap2.Calories != nil {
		t.Errorf("lap2.Calories = %v, want nil", *lap2.Calories)
	}
	if lap2.AvgHeartrate != nil {
		t.Errorf("lap2.AvgHeartrate = %v, want nil", *lap2.AvgHeartrate)
	}
	// a single altitude sample cannot show elevation change
	if lap2.ElevationGain != nil {
		t.Errorf("lap2.ElevationGain = %v, want nil", *lap2.ElevationGain)
	}

	if summary.TotalTimeSeconds != 482.75 {
		t.Errorf("summary.TotalTimeSeconds = %v, want 482.75", summary.TotalTimeSeconds)
	}
	if summary.TotalDistanceKm != 1.5 {
		t.Errorf("summary.TotalDistanceKm = %v, want 1.5", summary.TotalDistanceKm)
	}
	checkInt(t, "summary.TotalCalories", summary.TotalCalories, 55)
	checkInt(t, "summary.AvgHeartrate", summary.AvgHeartrate, 150)
	checkInt(t, "summary.MaxHeartrate", summary.MaxHeartrate, 165)
	checkInt(t, "summary.ElevationGain", summary.ElevationGain, 13)
	checkInt(t, "summary.ElevationLoss", summary.ElevationLoss, 3)
}

func TestParseHeartRateAggregation(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
  <Activities>
    <Activity Sport="Running">
      <Lap>
        <TotalTimeSeconds>300</TotalTimeSeconds>
        <DistanceMeters>1000</DistanceMeters>
        <AverageHeartRateBpm><Value>150</Value></AverageHeartRateBpm>
        <MaximumHeartRateBpm><Value>165</Value></MaximumHeartRateBpm>
      </Lap>
      <Lap>
        <TotalTimeSeconds>310</TotalTimeSeconds>
        <DistanceMeters>1000</DistanceMeters>
        <AverageHeartRateBpm><Value>155</Value></AverageHeartRateBpm>
        <MaximumHeartRateBpm><Value>172</Value></MaximumHeartRateBpm>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

	_, summary, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	// mean of 150 and 155 truncates to 152
	checkInt(t, "summary.AvgHeartrate", summary.AvgHeartrate, 152)
	// max of the per-lap maxima, not of the averages
	checkInt(t, "summary.MaxHeartrate", summary.MaxHeartrate, 172)
}

func TestParseTolerantDefaults(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
  <Activities>
    <Activity Sport="Running">
      <Lap StartTime="2024-03-10T08:00:00Z"></Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

	laps, summary, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(laps) != 1 {
		t.Fatalf("len(laps) = %d, want 1", len(laps))
	}
	if laps[0].DistanceMeters != 0 || laps[0].TimeSeconds != 0 {
		t.Errorf("empty lap = %v/%v, want zeros", laps[0].DistanceMeters, laps[0].TimeSeconds)
	}
	if laps[0].Pace != "" {
		t.Errorf("empty lap pace = %q, want unset", laps[0].Pace)
	}
	if summary.AvgHeartrate != nil || summary.TotalCalories != nil {
		t.Error("summary optional fields should stay unset")
	}
}

func TestParseNoLaps(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
  <Activities></Activities>
</TrainingCenterDatabase>`

	laps, _, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(laps) != 0 {
		t.Errorf("len(laps) = %d, want 0", len(laps))
	}
}

func TestParseMalformed(t *testing.T) {
	_, _, err := Parse([]byte("<TrainingCenterDatabase><Activities>"))
	if err == nil {
		t.Fatal("expected error for truncated document")
	}
	if !strings.Contains(err.Error(), "parsing TCX") {
		t.Errorf("error = %v, want parse context", err)
	}
}
