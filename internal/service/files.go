package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"runsplits/internal/analysis"
	"runsplits/internal/fitfile"
	"runsplits/internal/store"
	"runsplits/internal/tcx"
)

// ImportResult contains the results of a directory import
type ImportResult struct {
	FilesFound int
	Imported   int
	Errors     []error
}

// ImportDirectory parses every lap file in dir and writes a CSV report
// for each. File names carry the activity ID, e.g. 1234567890.tcx.
func (e *ExportService) ImportDirectory(ctx context.Context, dir string) (*ImportResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading import directory: %w", err)
	}

	result := &ImportResult{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.FilesFound++

		if err := e.importFile(filepath.Join(dir, entry.Name())); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}

		result.Imported++
	}

	log.Printf("CSV export completed: %d succeeded, %d failed", result.Imported, len(result.Errors))

	return result, nil
}

// importFile runs one lap file through the export pipeline. An empty lap
// list is fine; the report still carries its header and summary row.
func (e *ExportService) importFile(path string) error {
	base := filepath.Base(path)
	ext := filepath.Ext(base)

	activityID, err := strconv.ParseInt(strings.TrimSuffix(base, ext), 10, 64)
	if err != nil {
		return fmt.Errorf("file name must be an activity ID: %w", err)
	}

	var (
		laps    []analysis.Lap
		summary analysis.Summary
		source  string
	)

	switch strings.ToLower(ext) {
	case ".tcx":
		laps, summary, err = tcx.ParseFile(path)
		source = store.SourceTCX
	case ".fit":
		laps, summary, err = fitfile.ParseFile(path)
		source = store.SourceFIT
	default:
		return fmt.Errorf("unsupported file format %q", ext)
	}
	if err != nil {
		return err
	}

	if err := e.store.UpsertActivity(registryFromSummary(activityID, base, source, summary)); err != nil {
		return fmt.Errorf("storing activity: %w", err)
	}

	return e.finish(activityID, laps, summary, SourceFile)
}
