// Package usecase orchestrates the pipeline: clean the extract, append it
// to staging, fan unprocessed rows out into per-country tables and refresh
// the current-country summary.
package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/cleaner"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/country"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/observer"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/runctx"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/storage"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// Options configures a pipeline service.
type Options struct {
	InputPath     string // Source pipe-delimited extract
	SnapshotPath  string // Cleaned hand-off file; empty disables the snapshot
	DedupeBatches bool   // Skip staging append for an already-loaded checksum
}

// Service implements the full batch pipeline over the storage repositories.
type Service struct {
	stagingRepo storage.StagingRepo
	countryRepo storage.CountryTableRepo
	currentRepo storage.CurrentCountryRepo
	batchRepo   storage.LoadBatchRepo
	directory   *country.Directory
	opts        Options
}

// NewService creates a new pipeline service
func NewService(
	stagingRepo storage.StagingRepo,
	countryRepo storage.CountryTableRepo,
	currentRepo storage.CurrentCountryRepo,
	batchRepo storage.LoadBatchRepo,
	directory *country.Directory,
	opts Options,
) *Service {
	return &Service{
		stagingRepo: stagingRepo,
		countryRepo: countryRepo,
		currentRepo: currentRepo,
		batchRepo:   batchRepo,
		directory:   directory,
		opts:        opts,
	}
}

// RunSummary describes one completed pipeline run.
type RunSummary struct {
	RunID       string            `json:"run_id"`
	SourceFile  string            `json:"source_file"`
	Checksum    string            `json:"checksum,omitempty"`
	SkippedLoad bool              `json:"skipped_load"`
	RowsCleaned int               `json:"rows_cleaned"`
	RowsDropped int               `json:"rows_dropped"`
	RowsStaged  int               `json:"rows_staged"`
	Dropped     cleaner.DropStats `json:"dropped"`
	StartedAt   time.Time         `json:"started_at"`
	Duration    time.Duration     `json:"duration"`
}

// Run executes one full pipeline pass: load the extract into staging, then
// resolve the current-country summary and fan out to the per-country
// tables. The resolver runs before the fanout on purpose: fanout marks the
// working set processed, and both consumers must see the same unprocessed
// window within one run.
func (s *Service) Run(ctx context.Context, asOf time.Time) (*RunSummary, error) {
	log := logger.FromContext(ctx)
	startTime := utils.Now()

	summary := &RunSummary{
		SourceFile: s.opts.InputPath,
		StartedAt:  startTime,
	}
	if runID, err := runctx.FromContext(ctx); err == nil {
		summary.RunID = runID
	}

	load, err := s.LoadFile(ctx)
	if err != nil {
		observer.ObserveRun(time.Since(startTime), err)
		return nil, err
	}
	summary.Checksum = load.Checksum
	summary.SkippedLoad = load.Skipped
	summary.RowsCleaned = load.RowsCleaned
	summary.RowsDropped = load.Dropped.Total()
	summary.RowsStaged = load.RowsStaged
	summary.Dropped = load.Dropped

	if err := s.ResolveCurrentCountry(ctx); err != nil {
		observer.ObserveRun(time.Since(startTime), err)
		return nil, err
	}

	if err := s.Fanout(ctx, asOf); err != nil {
		observer.ObserveRun(time.Since(startTime), err)
		return nil, err
	}

	summary.Duration = time.Since(startTime)
	observer.ObserveRun(summary.Duration, nil)

	log.Info("Pipeline run completed",
		zap.String("source_file", summary.SourceFile),
		zap.Int("rows_cleaned", summary.RowsCleaned),
		zap.Int("rows_dropped", summary.RowsDropped),
		zap.Int("rows_staged", summary.RowsStaged),
		zap.Bool("skipped_load", summary.SkippedLoad),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}
