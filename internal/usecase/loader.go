package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/apperrors"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/cleaner"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/observer"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// LoadResult describes one staging load attempt.
type LoadResult struct {
	Checksum    string
	Skipped     bool // Checksum already loaded, staging untouched
	RowsCleaned int
	RowsStaged  int
	Dropped     cleaner.DropStats
}

// LoadFile cleans the configured input extract and appends the surviving
// rows to staging. A schema mismatch aborts the whole run; individual bad
// rows are dropped and counted. When dedup is enabled, an input file whose
// checksum was already recorded is skipped without touching staging.
func (s *Service) LoadFile(ctx context.Context) (*LoadResult, error) {
	log := logger.FromContext(ctx)

	cleaned, err := cleaner.CleanFile(s.opts.InputPath)
	if err != nil {
		log.Error("Failed to clean input extract",
			zap.String("path", s.opts.InputPath),
			zap.Error(err))
		return nil, err
	}

	observer.IncRowsCleaned(len(cleaned.Records))
	observer.IncRowsDropped("missing_mandatory", cleaned.Dropped.MissingMandatory)
	observer.IncRowsDropped("field_constraint", cleaned.Dropped.FieldConstraint)
	observer.IncRowsDropped("invalid_open_date", cleaned.Dropped.InvalidOpenDate)

	log.Info("Cleaned input extract",
		zap.String("path", s.opts.InputPath),
		zap.Int("rows_kept", len(cleaned.Records)),
		zap.Int("rows_dropped", cleaned.Dropped.Total()),
		zap.Strings("countries", cleaned.Countries))

	if s.opts.SnapshotPath != "" {
		if err := cleaner.WriteSnapshot(s.opts.SnapshotPath, cleaned.Records); err != nil {
			return nil, fmt.Errorf("failed to write cleaned snapshot: %w", err)
		}
	}

	// Provision destination tables for every known country seen in this
	// batch up front, so fanout never races table creation.
	for _, code := range cleaned.Countries {
		table, ok := s.directory.TableFor(code)
		if !ok {
			continue
		}
		if err := s.countryRepo.EnsureTable(ctx, table); err != nil {
			return nil, err
		}
	}

	result := &LoadResult{
		RowsCleaned: len(cleaned.Records),
		Dropped:     cleaned.Dropped,
	}

	if s.opts.DedupeBatches {
		checksum, err := utils.FileChecksum(s.opts.InputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to checksum input file: %w", err)
		}
		result.Checksum = checksum

		prior, err := s.batchRepo.FindByChecksum(ctx, checksum)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if prior != nil {
			observer.IncBatchSkipped()
			log.Warn("Input extract already loaded, skipping staging append",
				zap.String("checksum", checksum),
				zap.String("prior_batch_id", prior.ID),
				zap.Time("prior_loaded_at", prior.CreatedAt))
			result.Skipped = true
			return result, nil
		}
	}

	if len(cleaned.Records) > 0 {
		records := make([]model.StagingRecord, 0, len(cleaned.Records))
		for _, rec := range cleaned.Records {
			records = append(records, rec.ToStaging())
		}
		if err := s.stagingRepo.AppendBatch(ctx, records); err != nil {
			return nil, err
		}
		result.RowsStaged = len(records)
	}

	if s.opts.DedupeBatches {
		batch := model.LoadBatch{
			ID:          uuid.NewString(),
			Checksum:    result.Checksum,
			SourceFile:  s.opts.InputPath,
			RowsLoaded:  result.RowsStaged,
			RowsDropped: cleaned.Dropped.Total(),
			Stats:       datatypes.JSON(utils.MustMarshalJSON(cleaned.Dropped)),
		}
		if err := s.batchRepo.Record(ctx, batch); err != nil {
			return nil, err
		}
	}

	return result, nil
}
