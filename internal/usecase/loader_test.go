package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/apperrors"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
)

const extractHeader = "Customer_Name|Customer_Id|Open_Date|Last_Consulted_Date|Vaccination_Id|Dr_Name|State|Country|DOB|Is_Active"

func writeExtract(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customer_extract.txt")
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileStagesCleanedRows(t *testing.T) {
	path := writeExtract(t,
		extractHeader,
		"Alec|123457|20101012|20121013|MVD|Paul|SA|USA|06031987|A",
		"Mona|123458|20101112|20121113|MVD|Paul|TN|IND|06031987|A",
	)
	svc, mocks := newTestService(Options{InputPath: path, DedupeBatches: true})

	mocks.country.On("EnsureTable", mock.Anything, "customers_india").Return(nil)
	mocks.country.On("EnsureTable", mock.Anything, "customers_united_states").Return(nil)
	mocks.batch.On("FindByChecksum", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound)

	var staged []model.StagingRecord
	mocks.staging.On("AppendBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			staged = args.Get(1).([]model.StagingRecord)
		}).
		Return(nil)

	var recorded model.LoadBatch
	mocks.batch.On("Record", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(model.LoadBatch)
		}).
		Return(nil)

	result, err := svc.LoadFile(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.RowsCleaned)
	assert.Equal(t, 2, result.RowsStaged)
	assert.Equal(t, 0, result.Dropped.Total())
	assert.Len(t, result.Checksum, 64)

	require.Len(t, staged, 2)
	assert.Equal(t, "123457", staged[0].CustomerID)
	assert.False(t, staged[0].Processed)

	assert.NotEmpty(t, recorded.ID)
	assert.Equal(t, result.Checksum, recorded.Checksum)
	assert.Equal(t, path, recorded.SourceFile)
	assert.Equal(t, 2, recorded.RowsLoaded)
	mocks.country.AssertExpectations(t)
}

func TestLoadFileSkipsAlreadyLoadedChecksum(t *testing.T) {
	path := writeExtract(t,
		extractHeader,
		"Alec|123457|20101012|20121013|MVD|Paul|SA|USA|06031987|A",
	)
	svc, mocks := newTestService(Options{InputPath: path, DedupeBatches: true})

	mocks.country.On("EnsureTable", mock.Anything, "customers_united_states").Return(nil)
	mocks.batch.On("FindByChecksum", mock.Anything, mock.Anything).
		Return(&model.LoadBatch{ID: "b2c5", Checksum: strings.Repeat("a", 64)}, nil)

	result, err := svc.LoadFile(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, 0, result.RowsStaged)
	mocks.staging.AssertNotCalled(t, "AppendBatch", mock.Anything, mock.Anything)
	mocks.batch.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestLoadFileDedupDisabledSkipsBookkeeping(t *testing.T) {
	path := writeExtract(t,
		extractHeader,
		"Alec|123457|20101012|20121013|MVD|Paul|SA|USA|06031987|A",
	)
	svc, mocks := newTestService(Options{InputPath: path})

	mocks.country.On("EnsureTable", mock.Anything, "customers_united_states").Return(nil)
	mocks.staging.On("AppendBatch", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.LoadFile(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Checksum)
	assert.Equal(t, 1, result.RowsStaged)
	mocks.batch.AssertNotCalled(t, "FindByChecksum", mock.Anything, mock.Anything)
	mocks.batch.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestLoadFileSchemaMismatchAborts(t *testing.T) {
	path := writeExtract(t,
		"Customer_Name|Customer_Id|Open_Date",
		"Alec|123457|20101012",
	)
	svc, mocks := newTestService(Options{InputPath: path, DedupeBatches: true})

	_, err := svc.LoadFile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSchema)

	mocks.staging.AssertNotCalled(t, "AppendBatch", mock.Anything, mock.Anything)
	mocks.batch.AssertNotCalled(t, "FindByChecksum", mock.Anything, mock.Anything)
}

func TestLoadFileMissingInputAborts(t *testing.T) {
	svc, _ := newTestService(Options{
		InputPath: filepath.Join(t.TempDir(), "no_such_file.txt"),
	})

	_, err := svc.LoadFile(context.Background())
	assert.Error(t, err)
}

func TestLoadFileWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeExtract(t,
		extractHeader,
		"Alec|123457|20101012|20121013|MVD|Paul|SA|USA|06031987|A",
	)
	snapshot := filepath.Join(dir, "cleaned.txt")
	svc, mocks := newTestService(Options{InputPath: path, SnapshotPath: snapshot})

	mocks.country.On("EnsureTable", mock.Anything, "customers_united_states").Return(nil)
	mocks.staging.On("AppendBatch", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.LoadFile(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(snapshot)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, extractHeader, lines[0])
	assert.Equal(t, "Alec|123457|2010-10-12|2012-10-13|MVD|Paul|SA|USA|1987-03-06|A", lines[1])
}

func TestLoadFileEnsureTableFailureAborts(t *testing.T) {
	path := writeExtract(t,
		extractHeader,
		"Alec|123457|20101012|20121013|MVD|Paul|SA|USA|06031987|A",
	)
	svc, mocks := newTestService(Options{InputPath: path})

	mocks.country.On("EnsureTable", mock.Anything, "customers_united_states").
		Return(apperrors.ErrDatabase)

	_, err := svc.LoadFile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	mocks.staging.AssertNotCalled(t, "AppendBatch", mock.Anything, mock.Anything)
}
