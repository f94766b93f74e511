package usecase

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/country"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	storagemock "gitlab.com/vaxtrack/etl/customer-country-etl/internal/storage/mock"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type serviceMocks struct {
	staging *storagemock.StagingRepoMock
	country *storagemock.CountryTableRepoMock
	current *storagemock.CurrentCountryRepoMock
	batch   *storagemock.LoadBatchRepoMock
}

func newTestService(opts Options) (*Service, *serviceMocks) {
	m := &serviceMocks{
		staging: new(storagemock.StagingRepoMock),
		country: new(storagemock.CountryTableRepoMock),
		current: new(storagemock.CurrentCountryRepoMock),
		batch:   new(storagemock.LoadBatchRepoMock),
	}
	svc := NewService(m.staging, m.country, m.current, m.batch, country.NewDirectory(), opts)
	return svc, m
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFanoutDerivesAgeAndRecency(t *testing.T) {
	svc, mocks := newTestService(Options{})
	asOf := date(2023, time.October, 20)

	rec := model.NewStagingRecord(&model.StagingRecord{
		ID:                7,
		Country:           model.StrPtr("USA"),
		DOB:               model.TimePtr(date(1987, time.March, 6)),
		LastConsultedDate: model.TimePtr(date(2023, time.October, 13)),
	})

	mocks.staging.On("MaxProcessedID", mock.Anything).Return(int64(0), nil)
	mocks.staging.On("FindUnprocessedAfter", mock.Anything, int64(0)).
		Return([]model.StagingRecord{*rec}, nil)

	var gotBatches map[string][]model.CountryRecord
	var gotIDs []int64
	mocks.country.On("ApplyFanout", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotBatches = args.Get(1).(map[string][]model.CountryRecord)
			gotIDs = args.Get(2).([]int64)
		}).
		Return(nil)

	err := svc.Fanout(context.Background(), asOf)
	require.NoError(t, err)

	require.Len(t, gotBatches, 1)
	rows := gotBatches["customers_united_states"]
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Age)
	assert.Equal(t, 36, *rows[0].Age)
	require.NotNil(t, rows[0].DaysSinceLastConsulted)
	assert.Equal(t, 7, *rows[0].DaysSinceLastConsulted)
	assert.Equal(t, []int64{7}, gotIDs)
}

func TestFanoutAbsentDatesLeaveDerivationsAbsent(t *testing.T) {
	svc, mocks := newTestService(Options{})

	rec := model.NewStagingRecord(&model.StagingRecord{
		ID:      3,
		Country: model.StrPtr("IND"),
	})
	rec.DOB = nil
	rec.LastConsultedDate = nil

	mocks.staging.On("MaxProcessedID", mock.Anything).Return(int64(0), nil)
	mocks.staging.On("FindUnprocessedAfter", mock.Anything, int64(0)).
		Return([]model.StagingRecord{*rec}, nil)

	var gotBatches map[string][]model.CountryRecord
	mocks.country.On("ApplyFanout", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotBatches = args.Get(1).(map[string][]model.CountryRecord)
		}).
		Return(nil)

	require.NoError(t, svc.Fanout(context.Background(), date(2023, time.October, 20)))

	rows := gotBatches["customers_india"]
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Age)
	assert.Nil(t, rows[0].DaysSinceLastConsulted)
}

func TestFanoutUnknownCountryStillMarkedProcessed(t *testing.T) {
	svc, mocks := newTestService(Options{})

	known := model.NewStagingRecord(&model.StagingRecord{ID: 10, Country: model.StrPtr("AU")})
	unknown := model.NewStagingRecord(&model.StagingRecord{ID: 11, Country: model.StrPtr("XX")})
	absent := model.NewStagingRecord(&model.StagingRecord{ID: 12})
	absent.Country = nil

	mocks.staging.On("MaxProcessedID", mock.Anything).Return(int64(5), nil)
	mocks.staging.On("FindUnprocessedAfter", mock.Anything, int64(5)).
		Return([]model.StagingRecord{*known, *unknown, *absent}, nil)

	var gotBatches map[string][]model.CountryRecord
	var gotIDs []int64
	mocks.country.On("ApplyFanout", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotBatches = args.Get(1).(map[string][]model.CountryRecord)
			gotIDs = args.Get(2).([]int64)
		}).
		Return(nil)

	require.NoError(t, svc.Fanout(context.Background(), date(2023, time.October, 20)))

	// Only the known-country row gets a destination insert, but all three
	// ids leave the working set.
	require.Len(t, gotBatches, 1)
	assert.Len(t, gotBatches["customers_australia"], 1)
	assert.Equal(t, []int64{10, 11, 12}, gotIDs)
}

func TestFanoutTrimsPaddedCountryReadBack(t *testing.T) {
	svc, mocks := newTestService(Options{})

	// The staging country column is char(5), so rows read back from
	// Postgres carry bpchar blank padding.
	rec := model.NewStagingRecord(&model.StagingRecord{
		ID:      5,
		Country: model.StrPtr("AU   "),
	})

	mocks.staging.On("MaxProcessedID", mock.Anything).Return(int64(0), nil)
	mocks.staging.On("FindUnprocessedAfter", mock.Anything, int64(0)).
		Return([]model.StagingRecord{*rec}, nil)

	var gotBatches map[string][]model.CountryRecord
	var gotIDs []int64
	mocks.country.On("ApplyFanout", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotBatches = args.Get(1).(map[string][]model.CountryRecord)
			gotIDs = args.Get(2).([]int64)
		}).
		Return(nil)

	require.NoError(t, svc.Fanout(context.Background(), date(2023, time.October, 20)))

	require.Len(t, gotBatches, 1)
	assert.Len(t, gotBatches["customers_australia"], 1)
	assert.Equal(t, []int64{5}, gotIDs)
}

func TestFanoutEmptyWorkingSetIsNoOp(t *testing.T) {
	svc, mocks := newTestService(Options{})

	mocks.staging.On("MaxProcessedID", mock.Anything).Return(int64(42), nil)
	mocks.staging.On("FindUnprocessedAfter", mock.Anything, int64(42)).
		Return([]model.StagingRecord{}, nil)

	require.NoError(t, svc.Fanout(context.Background(), date(2023, time.October, 20)))

	mocks.country.AssertNotCalled(t, "ApplyFanout", mock.Anything, mock.Anything, mock.Anything)
}

func TestFanoutPropagatesApplyError(t *testing.T) {
	svc, mocks := newTestService(Options{})
	applyErr := errors.New("deadlock detected")

	rec := model.NewStagingRecord(&model.StagingRecord{ID: 1, Country: model.StrPtr("CAN")})

	mocks.staging.On("MaxProcessedID", mock.Anything).Return(int64(0), nil)
	mocks.staging.On("FindUnprocessedAfter", mock.Anything, int64(0)).
		Return([]model.StagingRecord{*rec}, nil)
	mocks.country.On("ApplyFanout", mock.Anything, mock.Anything, mock.Anything).
		Return(applyErr)

	err := svc.Fanout(context.Background(), date(2023, time.October, 20))
	assert.ErrorIs(t, err, applyErr)
}

func TestWholeYearsBetween(t *testing.T) {
	testCases := []struct {
		name string
		dob  time.Time
		asOf time.Time
		want int
	}{
		{"birthday already passed", date(1987, time.March, 6), date(2023, time.October, 20), 36},
		{"birthday today", date(1987, time.March, 6), date(2023, time.March, 6), 36},
		{"birthday not yet reached", date(1987, time.March, 6), date(2023, time.March, 5), 35},
		{"leap day birth, non-leap year", date(2000, time.February, 29), date(2023, time.February, 28), 22},
		{"leap day birth, march first", date(2000, time.February, 29), date(2023, time.March, 1), 23},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, wholeYearsBetween(tc.dob, tc.asOf))
		})
	}
}

func TestWholeDaysBetween(t *testing.T) {
	assert.Equal(t, 0, wholeDaysBetween(date(2023, time.October, 20), date(2023, time.October, 20)))
	assert.Equal(t, 1, wholeDaysBetween(date(2023, time.October, 19), date(2023, time.October, 20)))
	assert.Equal(t, 365, wholeDaysBetween(date(2022, time.October, 20), date(2023, time.October, 20)))

	// Future dates floor rather than round toward zero.
	assert.Equal(t, -2, wholeDaysBetween(date(2023, time.October, 22), date(2023, time.October, 20)))
	halfDayAhead := time.Date(2023, time.October, 21, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, -2, wholeDaysBetween(halfDayAhead, date(2023, time.October, 20)))
}
