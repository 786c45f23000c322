package service

const (
	// ActivityTypeRun is the only Strava activity type synced and exported
	ActivityTypeRun = "Run"

	// StravaPerPage is the page size for activity listing (Strava max)
	StravaPerPage = 100

	// ExportBatchSize bounds how many pending activities one sync run
	// exports; each export can cost up to three API calls
	ExportBatchSize = 50

	// StravaCadenceMultiplier converts Strava's single-leg running
	// cadence to steps per minute
	StravaCadenceMultiplier = 2
)
