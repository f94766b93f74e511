package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/apperrors"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/observer"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// FindLoadBatchByChecksum looks up a previously recorded input batch by its
// content checksum. Returns apperrors.ErrNotFound when the checksum has not
// been loaded before.
func (r *PostgresRepo) FindLoadBatchByChecksum(ctx context.Context, checksum string) (*model.LoadBatch, error) {
	var batch model.LoadBatch

	operation := func() error {
		result := r.db.WithContext(ctx).Where("checksum = ?", checksum).First(&batch)
		return result.Error
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	err := retryableOperation(ctx, readPolicy, "FindLoadBatchByChecksum", operation)
	observer.ObserveDbOperationDuration("find", "load_batches", time.Since(startTime), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: load batch with checksum %s", apperrors.ErrNotFound, checksum)
		}
		logger.FromContext(ctx).Error("Failed to find load batch", zap.String("checksum", checksum), zap.Error(err))
		return nil, fmt.Errorf("%w: find load batch: %w", apperrors.ErrDatabase, err)
	}
	return &batch, nil
}

// RecordLoadBatch persists the bookkeeping row for a completed staging
// append.
func (r *PostgresRepo) RecordLoadBatch(ctx context.Context, batch model.LoadBatch) error {
	operation := func() error {
		result := r.db.WithContext(ctx).Create(&batch)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "RecordLoadBatch Commit", operation)
	observer.ObserveDbOperationDuration("save", "load_batches", time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to record load batch",
			zap.String("checksum", batch.Checksum),
			zap.Error(commitErr))
		return commitErr
	}

	logger.FromContext(ctx).Info("Recorded load batch",
		zap.String("batch_id", batch.ID),
		zap.String("source_file", batch.SourceFile),
		zap.Int("rows_loaded", batch.RowsLoaded))
	return nil
}
