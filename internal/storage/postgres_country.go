package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/apperrors"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/observer"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// countryInsertBatchSize bounds the VALUES list per generated INSERT.
const countryInsertBatchSize = 500

// countryTableDDL is the schema of every per-country destination table.
// The table name comes from the country directory and is always derived
// from the fixed canonical-name map, never from input data.
const countryTableDDL = `
	CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		customer_id VARCHAR(18) NOT NULL,
		open_date DATE NOT NULL,
		last_consulted_date DATE,
		vaccination_id CHAR(5),
		dr_name VARCHAR(255),
		state CHAR(5),
		country CHAR(5),
		dob DATE,
		is_active CHAR(1),
		age INTEGER,
		days_since_last_consulted INTEGER
	)`

// EnsureCountryTable creates the destination table for tableName if it
// does not exist yet.
func (r *PostgresRepo) EnsureCountryTable(ctx context.Context, tableName string) error {
	ddl := fmt.Sprintf(countryTableDDL, tableName)
	if err := ensureTableExists(r.db.WithContext(ctx), tableName, ddl); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrDatabase, err)
	}
	return nil
}

// ApplyFanout inserts the buffered country records, grouped by destination
// table, and marks the whole working set processed — all in a single
// transaction. On any failure the transaction rolls back: no partial fanout
// rows are retained and no staging row is marked.
func (r *PostgresRepo) ApplyFanout(ctx context.Context, batches map[string][]model.CountryRecord, processedIDs []int64) error {
	if len(processedIDs) == 0 {
		return nil
	}

	// Deterministic table order keeps runs reproducible and tests stable.
	tables := make([]string, 0, len(batches))
	for table := range batches {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	rowCount := 0
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
					logger.FromContext(ctx).Error("Failed to rollback fanout", zap.Error(rbErr), zap.NamedError("originalTxError", txErr))
				}
			}
		}()

		rowCount = 0
		for _, table := range tables {
			rows := batches[table]
			if len(rows) == 0 {
				continue
			}
			if insertErr := tx.Table(table).CreateInBatches(&rows, countryInsertBatchSize).Error; insertErr != nil {
				txErr = checkConstraintViolation(insertErr)
				return txErr
			}
			rowCount += len(rows)
		}

		if updateErr := tx.Exec("UPDATE staging SET processed = TRUE WHERE id IN ?", processedIDs).Error; updateErr != nil {
			txErr = checkConstraintViolation(updateErr)
			return txErr
		}

		if commitErr := tx.Commit().Error; commitErr != nil {
			txErr = fmt.Errorf("%w: failed to commit fanout: %w", apperrors.ErrDatabase, commitErr)
			return txErr
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "ApplyFanout Commit", operation)
	observer.ObserveDbOperationDuration("fanout", "staging", time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to apply fanout after retries",
			zap.Int("staging_rows", len(processedIDs)),
			zap.Error(commitErr))
		return commitErr
	}

	for _, table := range tables {
		observer.IncFanoutRows(table, len(batches[table]))
	}
	logger.FromContext(ctx).Info("Applied country fanout",
		zap.Int("staging_rows", len(processedIDs)),
		zap.Int("fanout_rows", rowCount),
		zap.Int("tables", len(tables)))
	return nil
}
