package storage

import (
	"context"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
)

// StagingRepo defines staging table operations. Staging is append-only;
// the only mutation is flipping the processed flag.
type StagingRepo interface {
	// AppendBatch bulk-inserts cleaned records as unprocessed staging rows
	// in a single transaction.
	AppendBatch(ctx context.Context, records []model.StagingRecord) error
	// MaxProcessedID returns the watermark: the highest id already marked
	// processed, or 0 when none is.
	MaxProcessedID(ctx context.Context) (int64, error)
	// FindUnprocessedAfter returns the unprocessed rows above the
	// watermark in id order, read in a single snapshot query.
	FindUnprocessedAfter(ctx context.Context, watermark int64) ([]model.StagingRecord, error)
	// FindResolvable returns unprocessed rows that have both a country and
	// a last consulted date, in a single snapshot query.
	FindResolvable(ctx context.Context) ([]model.StagingRecord, error)
	Close(ctx context.Context) error
}

// CountryTableRepo defines per-country destination table operations.
type CountryTableRepo interface {
	// EnsureTable creates the destination table for tableName if missing.
	EnsureTable(ctx context.Context, tableName string) error
	// ApplyFanout inserts the grouped country records and marks the given
	// staging ids processed, all in one transaction. On any failure
	// nothing is inserted and no row is marked.
	ApplyFanout(ctx context.Context, batches map[string][]model.CountryRecord, processedIDs []int64) error
}

// CurrentCountryRepo defines summary table operations.
type CurrentCountryRepo interface {
	// UpsertBatch inserts or overwrites one summary row per customer.
	UpsertBatch(ctx context.Context, rows []model.CurrentCountry) error
}

// LoadBatchRepo defines load-batch bookkeeping operations.
type LoadBatchRepo interface {
	// FindByChecksum returns the load batch with the given input checksum,
	// or apperrors.ErrNotFound.
	FindByChecksum(ctx context.Context, checksum string) (*model.LoadBatch, error)
	// Record persists the bookkeeping row for a completed staging append.
	Record(ctx context.Context, batch model.LoadBatch) error
}
