package report

import "testing"

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{"zero", 0, "0:00.0"},
		{"negative", -12.5, "0:00.0"},
		{"under a minute", 30, "0:30.0"},
		{"truncates tenths", 269.6, "4:29.6"},
		{"never rounds tenths up", 269.64, "4:29.6"},
		{"exact half second", 302.5, "5:02.5"},
		{"quarter second truncates", 180.25, "3:00.2"},
		{"minutes do not roll into hours", 3600, "60:00.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatTime(tt.seconds)
			if result != tt.expected {
				t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, result, tt.expected)
			}
		})
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		name            string
		metersPerSecond float64
		expected        string
	}{
		{"zero", 0, "0:00"},
		{"negative", -3, "0:00"},
		{"four thirty per km", 3.7037, "4:30"},
		{"eight twenty per km", 2.0, "8:20"},
		{"three twenty per km", 5.0, "3:20"},
		{"six forty per km", 2.5, "6:40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatPace(tt.metersPerSecond)
			if result != tt.expected {
				t.Errorf("FormatPace(%v) = %q, want %q", tt.metersPerSecond, result, tt.expected)
			}
		})
	}
}

func TestPaceFromDistanceTime(t *testing.T) {
	tests := []struct {
		name           string
		distanceMeters float64
		timeSeconds    float64
		expected       string
	}{
		{"zero distance", 0, 100, "0:00"},
		{"zero time", 1000, 0, "0:00"},
		{"negative distance", -5, 100, "0:00"},
		{"negative time", 1000, -1, "0:00"},
		{"kilometer in five minutes two", 1000, 302.5, "5:02"},
		{"half kilometer", 500, 180.25, "6:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PaceFromDistanceTime(tt.distanceMeters, tt.timeSeconds)
			if result != tt.expected {
				t.Errorf("PaceFromDistanceTime(%v, %v) = %q, want %q",
					tt.distanceMeters, tt.timeSeconds, result, tt.expected)
			}
		})
	}
}
