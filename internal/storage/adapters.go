package storage

import (
	"context"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
)

// StagingRepoAdapter adapts the PostgresRepo to the StagingRepo interface
type StagingRepoAdapter struct {
	postgres *PostgresRepo
}

// NewStagingRepoAdapter creates a new staging repository adapter
func NewStagingRepoAdapter(postgres *PostgresRepo) StagingRepo {
	return &StagingRepoAdapter{postgres: postgres}
}

// AppendBatch bulk-appends cleaned records to staging
func (a *StagingRepoAdapter) AppendBatch(ctx context.Context, records []model.StagingRecord) error {
	return a.postgres.AppendStagingBatch(ctx, records)
}

// MaxProcessedID returns the processed watermark
func (a *StagingRepoAdapter) MaxProcessedID(ctx context.Context) (int64, error) {
	return a.postgres.MaxProcessedStagingID(ctx)
}

// FindUnprocessedAfter returns the fanout working set
func (a *StagingRepoAdapter) FindUnprocessedAfter(ctx context.Context, watermark int64) ([]model.StagingRecord, error) {
	return a.postgres.FindUnprocessedStagingAfter(ctx, watermark)
}

// FindResolvable returns the resolver working set
func (a *StagingRepoAdapter) FindResolvable(ctx context.Context) ([]model.StagingRecord, error) {
	return a.postgres.FindResolvableStaging(ctx)
}

func (a *StagingRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// CountryTableRepoAdapter adapts the PostgresRepo to the CountryTableRepo interface
type CountryTableRepoAdapter struct {
	postgres *PostgresRepo
}

// NewCountryTableRepoAdapter creates a new country table repository adapter
func NewCountryTableRepoAdapter(postgres *PostgresRepo) CountryTableRepo {
	return &CountryTableRepoAdapter{postgres: postgres}
}

// EnsureTable creates a per-country table if missing
func (a *CountryTableRepoAdapter) EnsureTable(ctx context.Context, tableName string) error {
	return a.postgres.EnsureCountryTable(ctx, tableName)
}

// ApplyFanout atomically inserts country rows and marks staging processed
func (a *CountryTableRepoAdapter) ApplyFanout(ctx context.Context, batches map[string][]model.CountryRecord, processedIDs []int64) error {
	return a.postgres.ApplyFanout(ctx, batches, processedIDs)
}

// CurrentCountryRepoAdapter adapts the PostgresRepo to the CurrentCountryRepo interface
type CurrentCountryRepoAdapter struct {
	postgres *PostgresRepo
}

// NewCurrentCountryRepoAdapter creates a new current country repository adapter
func NewCurrentCountryRepoAdapter(postgres *PostgresRepo) CurrentCountryRepo {
	return &CurrentCountryRepoAdapter{postgres: postgres}
}

// UpsertBatch upserts summary rows keyed by customer id
func (a *CurrentCountryRepoAdapter) UpsertBatch(ctx context.Context, rows []model.CurrentCountry) error {
	return a.postgres.UpsertCurrentCountries(ctx, rows)
}

// LoadBatchRepoAdapter adapts the PostgresRepo to the LoadBatchRepo interface
type LoadBatchRepoAdapter struct {
	postgres *PostgresRepo
}

// NewLoadBatchRepoAdapter creates a new load batch repository adapter
func NewLoadBatchRepoAdapter(postgres *PostgresRepo) LoadBatchRepo {
	return &LoadBatchRepoAdapter{postgres: postgres}
}

// FindByChecksum looks up a batch by input checksum
func (a *LoadBatchRepoAdapter) FindByChecksum(ctx context.Context, checksum string) (*model.LoadBatch, error) {
	return a.postgres.FindLoadBatchByChecksum(ctx, checksum)
}

// Record persists a batch bookkeeping row
func (a *LoadBatchRepoAdapter) Record(ctx context.Context, batch model.LoadBatch) error {
	return a.postgres.RecordLoadBatch(ctx, batch)
}
