package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
)

// --- StagingRepo Mock ---

// StagingRepoMock mocks the StagingRepo interface
type StagingRepoMock struct {
	mock.Mock
}

// AppendBatch mocks the AppendBatch method
func (m *StagingRepoMock) AppendBatch(ctx context.Context, records []model.StagingRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MaxProcessedID mocks the MaxProcessedID method
func (m *StagingRepoMock) MaxProcessedID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// FindUnprocessedAfter mocks the FindUnprocessedAfter method
func (m *StagingRepoMock) FindUnprocessedAfter(ctx context.Context, watermark int64) ([]model.StagingRecord, error) {
	args := m.Called(ctx, watermark)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StagingRecord), args.Error(1)
}

// FindResolvable mocks the FindResolvable method
func (m *StagingRepoMock) FindResolvable(ctx context.Context) ([]model.StagingRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StagingRecord), args.Error(1)
}

// Close mocks the Close method
func (m *StagingRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- CountryTableRepo Mock ---

// CountryTableRepoMock mocks the CountryTableRepo interface
type CountryTableRepoMock struct {
	mock.Mock
}

// EnsureTable mocks the EnsureTable method
func (m *CountryTableRepoMock) EnsureTable(ctx context.Context, tableName string) error {
	args := m.Called(ctx, tableName)
	return args.Error(0)
}

// ApplyFanout mocks the ApplyFanout method
func (m *CountryTableRepoMock) ApplyFanout(ctx context.Context, batches map[string][]model.CountryRecord, processedIDs []int64) error {
	args := m.Called(ctx, batches, processedIDs)
	return args.Error(0)
}

// --- CurrentCountryRepo Mock ---

// CurrentCountryRepoMock mocks the CurrentCountryRepo interface
type CurrentCountryRepoMock struct {
	mock.Mock
}

// UpsertBatch mocks the UpsertBatch method
func (m *CurrentCountryRepoMock) UpsertBatch(ctx context.Context, rows []model.CurrentCountry) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

// --- LoadBatchRepo Mock ---

// LoadBatchRepoMock mocks the LoadBatchRepo interface
type LoadBatchRepoMock struct {
	mock.Mock
}

// FindByChecksum mocks the FindByChecksum method
func (m *LoadBatchRepoMock) FindByChecksum(ctx context.Context, checksum string) (*model.LoadBatch, error) {
	args := m.Called(ctx, checksum)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoadBatch), args.Error(1)
}

// Record mocks the Record method
func (m *LoadBatchRepoMock) Record(ctx context.Context, batch model.LoadBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}
