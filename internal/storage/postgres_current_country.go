package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/observer"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// UpsertCurrentCountries inserts or overwrites the summary row per
// customer: ON CONFLICT (customer_id) the name, country and last consulted
// date are replaced unconditionally with the incoming values.
func (r *PostgresRepo) UpsertCurrentCountries(ctx context.Context, rows []model.CurrentCountry) error {
	if len(rows) == 0 {
		return nil
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_name",
				"country",
				"last_consulted_date",
			}),
		}).Create(&rows)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpsertCurrentCountries Commit", operation)
	observer.ObserveDbOperationDuration("upsert", "current_country", time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to upsert current country rows after retries",
			zap.Int("rows", len(rows)),
			zap.Error(commitErr))
		return commitErr
	}

	observer.IncCurrentCountryUpserts(len(rows))
	logger.FromContext(ctx).Info("Upserted current country rows", zap.Int("rows", len(rows)))
	return nil
}
