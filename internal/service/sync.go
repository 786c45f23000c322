package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"runsplits/internal/store"
)

// lastActivitySyncKey is the sync_state key holding the incremental
// sync watermark
const lastActivitySyncKey = "last_activity_sync"

// SyncService orchestrates syncing activities from Strava and exporting
// their CSV reports
type SyncService struct {
	api    API
	store  *store.DB
	export *ExportService
}

// NewSyncService creates a new sync service
func NewSyncService(api API, db *store.DB, export *ExportService) *SyncService {
	return &SyncService{
		api:    api,
		store:  db,
		export: export,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "activities", "reports"
	Total           int
	Completed       int
	CurrentActivity string
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	ActivitiesStored  int
	ReportsExported   int
	Skipped           int
	Errors            []error
}

// SyncAll performs a full sync: activities -> reports
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	// Phase 1: Sync activity summaries
	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	// Phase 2: Export reports for activities that have none yet
	if err := s.exportReports(ctx, progress, result); err != nil {
		return result, fmt.Errorf("exporting reports: %w", err)
	}

	return result, nil
}

// syncActivities fetches all run activities from Strava and stores them
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	// Incremental sync: only fetch activities after the stored watermark
	after, _ := s.store.GetSyncTime(lastActivitySyncKey)

	if progress != nil {
		progress <- SyncProgress{Phase: "activities", Total: 0, Completed: 0}
	}

	page := 1

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		activities, err := s.api.GetActivities(ctx, after, page, StravaPerPage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}

		if len(activities) == 0 {
			break
		}

		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			if a.Type != ActivityTypeRun {
				continue
			}
			if err := s.store.UpsertActivity(registryFromActivity(&a)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.ActivitiesStored++
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:     "activities",
				Total:     result.ActivitiesFetched,
				Completed: result.ActivitiesStored,
			}
		}

		if len(activities) < StravaPerPage {
			break // Last page
		}

		page++
	}

	// Advance the watermark
	s.store.SetSyncTime(lastActivitySyncKey, time.Now())

	return nil
}

// exportReports generates CSV reports for stored activities that have none
// yet, limited to a batch per sync to respect rate limits. A skipped
// activity had no lap data anywhere; it stays pending without counting as
// a failure.
func (s *SyncService) exportReports(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	activities, err := s.store.GetActivitiesNeedingExport(ExportBatchSize)
	if err != nil {
		return fmt.Errorf("getting activities needing export: %w", err)
	}

	if len(activities) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "reports", Total: len(activities), Completed: 0}
	}

	failed := 0

	for i, activity := range activities {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:           "reports",
				Total:           len(activities),
				Completed:       i,
				CurrentActivity: activity.Name,
			}
		}

		// File imports export at import time; only Strava rows go
		// through the API pipeline
		if activity.Source != store.SourceStrava {
			continue
		}

		source, err := s.export.ExportActivity(ctx, activity.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("activity %d (%s): %w", activity.ID, activity.Name, err))
			failed++
			continue
		}
		if source == SourceNone {
			result.Skipped++
			continue
		}

		result.ReportsExported++
	}

	if progress != nil {
		progress <- SyncProgress{
			Phase:     "reports",
			Total:     len(activities),
			Completed: len(activities),
		}
	}

	log.Printf("CSV export completed: %d succeeded, %d failed", result.ReportsExported, failed)

	return nil
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.api.RateLimitStatus()
}
