package service

import "runsplits/internal/store"

// QueryService provides read-only queries for the TUI
type QueryService struct {
	store *store.DB
}

// NewQueryService creates a new query service
func NewQueryService(db *store.DB) *QueryService {
	return &QueryService{store: db}
}

// ActivityPage is one page of the activity list
type ActivityPage struct {
	Activities []store.Activity
	TotalCount int
}

// GetActivityPage returns one page of activities, newest first
func (q *QueryService) GetActivityPage(limit, offset int) (*ActivityPage, error) {
	activities, err := q.store.ListActivities(limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := q.store.CountActivities()
	if err != nil {
		return nil, err
	}

	return &ActivityPage{Activities: activities, TotalCount: total}, nil
}

// ActivityDetail pairs an activity with its stored lap rows
type ActivityDetail struct {
	Activity store.Activity
	Laps     []store.Lap
}

// GetActivityDetail returns a single activity and its laps
func (q *QueryService) GetActivityDetail(id int64) (*ActivityDetail, error) {
	activity, err := q.store.GetActivity(id)
	if err != nil {
		return nil, err
	}

	laps, err := q.store.GetLaps(id)
	if err != nil {
		return nil, err
	}

	return &ActivityDetail{Activity: *activity, Laps: laps}, nil
}
