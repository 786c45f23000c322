package analysis

import "testing"

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

func checkIntField(t *testing.T, name string, got, want *int) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Errorf("%s = %v, want nil", name, *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("%s = nil, want %v", name, *want)
	}
	if *got != *want {
		t.Errorf("%s = %v, want %v", name, *got, *want)
	}
}

func TestLapFromWindow(t *testing.T) {
	tests := []struct {
		name    string
		window  SampleWindow
		wantOK  bool
		checkFn func(t *testing.T, lap Lap)
	}{
		{
			name:   "empty window produces no lap",
			window: SampleWindow{},
			wantOK: false,
		},
		{
			name: "missing time channel produces no lap",
			window: SampleWindow{
				Distance: []float64{0, 100},
			},
			wantOK: false,
		},
		{
			name: "single sample yields zero distance and time",
			window: SampleWindow{
				Distance: []float64{450},
				Time:     []float64{30},
			},
			wantOK: true,
			checkFn: func(t *testing.T, lap Lap) {
				if lap.DistanceMeters != 0 {
					t.Errorf("DistanceMeters = %v, want 0", lap.DistanceMeters)
				}
				if lap.TimeSeconds != 0 {
					t.Errorf("TimeSeconds = %v, want 0", lap.TimeSeconds)
				}
			},
		},
		{
			name: "distance and time are deltas from a nonzero start",
			window: SampleWindow{
				Distance: []float64{500, 900, 1510.5},
				Time:     []float64{120, 240, 373.2},
			},
			wantOK: true,
			checkFn: func(t *testing.T, lap Lap) {
				if lap.DistanceMeters != 1010.5 {
					t.Errorf("DistanceMeters = %v, want 1010.5", lap.DistanceMeters)
				}
				if lap.TimeSeconds != 253.2 {
					t.Errorf("TimeSeconds = %v, want 253.2", lap.TimeSeconds)
				}
			},
		},
		{
			name: "heart rate discards dropouts and rounds the mean",
			window: SampleWindow{
				Distance:  []float64{0, 100, 200, 300},
				Time:      []float64{0, 30, 60, 90},
				Heartrate: []int{0, 150, 153, 157},
			},
			wantOK: true,
			checkFn: func(t *testing.T, lap Lap) {
				// mean of 150,153,157 = 153.33
				checkIntField(t, "AvgHeartrate", lap.AvgHeartrate, intPtr(153))
				checkIntField(t, "MaxHeartrate", lap.MaxHeartrate, intPtr(157))
			},
		},
		{
			name: "all heart rate samples invalid leaves fields unset",
			window: SampleWindow{
				Distance:  []float64{0, 100},
				Time:      []float64{0, 30},
				Heartrate: []int{0, -1},
			},
			wantOK: true,
			checkFn: func(t *testing.T, lap Lap) {
				checkIntField(t, "AvgHeartrate", lap.AvgHeartrate, nil)
				checkIntField(t, "MaxHeartrate", lap.MaxHeartrate, nil)
			},
		},
		{
			name: "elevation accumulates signed deltas",
			window: SampleWindow{
				Distance: []float64{0, 100, 200, 300},
				Time:     []float64{0, 30, 60, 90},
				Altitude: []float64{100, 105, 102, 110},
			},
			wantOK: true,
			checkFn: func(t *testing.T, lap Lap) {
				checkIntField(t, "ElevationGain", lap.ElevationGain, intPtr(13))
				checkIntField(t, "ElevationLoss", lap.ElevationLoss, intPtr(3))
			},
		},
		{
			name: "one altitude sample leaves elevation unset",
			window: SampleWindow{
				Distance: []float64{0, 100},
				Time:     []float64{0, 30},
				Altitude: []float64{100},
			},
			wantOK: true,
			checkFn: func(t *testing.T, lap Lap) {
				checkIntField(t, "ElevationGain", lap.ElevationGain, nil)
				checkIntField(t, "ElevationLoss", lap.ElevationLoss, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lap, ok := LapFromWindow(tt.window)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, lap)
			}
		})
	}
}

func TestElevationFromAltitudes(t *testing.T) {
	tests := []struct {
		name      string
		altitudes []float64
		wantGain  int
		wantLoss  int
		wantOK    bool
	}{
		{
			name:      "climb and descent",
			altitudes: []float64{100, 105, 102, 110},
			wantGain:  13,
			wantLoss:  3,
			wantOK:    true,
		},
		{
			name:      "fractional deltas truncate",
			altitudes: []float64{100, 105.9, 104.2},
			wantGain:  5,
			wantLoss:  1,
			wantOK:    true,
		},
		{
			name:      "flat terrain is a real zero",
			altitudes: []float64{50, 50, 50},
			wantGain:  0,
			wantLoss:  0,
			wantOK:    true,
		},
		{
			name:      "single sample is unknown",
			altitudes: []float64{100},
			wantOK:    false,
		},
		{
			name:   "no samples is unknown",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gain, loss, ok := ElevationFromAltitudes(tt.altitudes)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if gain != tt.wantGain {
				t.Errorf("gain = %v, want %v", gain, tt.wantGain)
			}
			if loss != tt.wantLoss {
				t.Errorf("loss = %v, want %v", loss, tt.wantLoss)
			}
		})
	}
}
