package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/apperrors"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/observer"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// stagingInsertBatchSize bounds the VALUES list per generated INSERT.
const stagingInsertBatchSize = 500

// AppendStagingBatch bulk-appends cleaned records as new unprocessed
// staging rows. The whole batch lands in one transaction: either every row
// is inserted or none is.
func (r *PostgresRepo) AppendStagingBatch(ctx context.Context, records []model.StagingRecord) error {
	if len(records) == 0 {
		return nil
	}

	operation := func() error {
		tx := r.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabase, tx.Error)
		}
		var txErr error
		defer func() {
			if rec := recover(); rec != nil {
				tx.Rollback()
				panic(rec)
			} else if txErr != nil {
				if rbErr := tx.Rollback().Error; rbErr != nil {
					logger.FromContext(ctx).Error("Failed to rollback staging append", zap.Error(rbErr), zap.NamedError("originalTxError", txErr))
				}
			}
		}()

		if createErr := tx.CreateInBatches(&records, stagingInsertBatchSize).Error; createErr != nil {
			txErr = checkConstraintViolation(createErr)
			return txErr
		}

		if commitErr := tx.Commit().Error; commitErr != nil {
			txErr = fmt.Errorf("%w: failed to commit staging append: %w", apperrors.ErrDatabase, commitErr)
			return txErr
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "AppendStagingBatch Commit", operation)
	observer.ObserveDbOperationDuration("append", "staging", time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to append staging batch after retries",
			zap.Int("rows", len(records)),
			zap.Error(commitErr))
		return commitErr
	}

	observer.IncStagingRowsInserted(len(records))
	logger.FromContext(ctx).Info("Appended staging batch", zap.Int("rows", len(records)))
	return nil
}

// MaxProcessedStagingID returns the processed watermark: the highest
// staging id already marked processed, or 0 when nothing has been.
func (r *PostgresRepo) MaxProcessedStagingID(ctx context.Context) (int64, error) {
	var watermark int64

	operation := func() error {
		result := r.db.WithContext(ctx).
			Raw("SELECT COALESCE(MAX(id), 0) FROM staging WHERE processed = TRUE").
			Scan(&watermark)
		if result.Error != nil {
			return fmt.Errorf("%w: failed to query processed watermark: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	err := retryableOperation(ctx, readPolicy, "MaxProcessedStagingID", operation)
	observer.ObserveDbOperationDuration("watermark", "staging", time.Since(startTime), err)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to read processed watermark", zap.Error(err))
		return 0, err
	}
	return watermark, nil
}

// FindUnprocessedStagingAfter selects the fanout working set: unprocessed
// rows above the watermark, in id order. A single query keeps the working
// set consistent with one point-in-time snapshot.
func (r *PostgresRepo) FindUnprocessedStagingAfter(ctx context.Context, watermark int64) ([]model.StagingRecord, error) {
	var records []model.StagingRecord

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("id > ? AND processed = ?", watermark, false).
			Order("id").
			Find(&records)
		if result.Error != nil {
			return fmt.Errorf("%w: failed to query unprocessed staging rows: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	err := retryableOperation(ctx, readPolicy, "FindUnprocessedStagingAfter", operation)
	observer.ObserveDbOperationDuration("select", "staging", time.Since(startTime), err)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to query unprocessed staging rows",
			zap.Int64("watermark", watermark),
			zap.Error(err))
		return nil, err
	}
	return records, nil
}

// FindResolvableStaging selects the resolver working set: unprocessed rows
// with both a country and a last consulted date, in id order.
func (r *PostgresRepo) FindResolvableStaging(ctx context.Context) ([]model.StagingRecord, error) {
	var records []model.StagingRecord

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("processed = ? AND country IS NOT NULL AND last_consulted_date IS NOT NULL", false).
			Order("id").
			Find(&records)
		if result.Error != nil {
			return fmt.Errorf("%w: failed to query resolvable staging rows: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	err := retryableOperation(ctx, readPolicy, "FindResolvableStaging", operation)
	observer.ObserveDbOperationDuration("select", "staging", time.Since(startTime), err)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to query resolvable staging rows", zap.Error(err))
		return nil, err
	}
	return records, nil
}
