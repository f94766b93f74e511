package model

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// init ensures gofakeit is seeded.
func init() {
	gofakeit.Seed(time.Now().UnixNano())
}

// knownCodes mirrors the country directory's known set for fake data.
var knownCodes = []string{"USA", "IND", "AU", "CAN", "PHL", "UK", "DEU", "FRA", "JPN", "CHN", "BRA", "ZAF", "RUS"}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// RandomCountryCode returns a country code from the known set.
func RandomCountryCode() string {
	return gofakeit.RandomString(knownCodes)
}

// NewCleanedRecord creates a CleanedRecord with default fake data.
func NewCleanedRecord(overrideDefaults ...*CleanedRecord) *CleanedRecord {
	open := utils.Now().AddDate(0, 0, -gofakeit.Number(30, 2000)).Truncate(24 * time.Hour)
	consulted := open.AddDate(0, 0, gofakeit.Number(1, 25))
	dob := time.Date(gofakeit.Number(1940, 2005), time.Month(gofakeit.Number(1, 12)), gofakeit.Number(1, 28), 0, 0, 0, 0, time.UTC)

	base := &CleanedRecord{
		CustomerName:      gofakeit.Name(),
		CustomerID:        gofakeit.DigitN(9),
		OpenDate:          open,
		LastConsultedDate: TimePtr(consulted),
		VaccinationID:     StrPtr(gofakeit.LetterN(1) + gofakeit.DigitN(3)),
		DrName:            StrPtr("Dr " + gofakeit.LastName()),
		State:             StrPtr(gofakeit.LetterN(3)),
		Country:           StrPtr(RandomCountryCode()),
		DOB:               TimePtr(dob),
		IsActive:          StrPtr(gofakeit.RandomString([]string{"A", "I"})),
	}

	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.CustomerName != "" {
			base.CustomerName = ovr.CustomerName
		}
		if ovr.CustomerID != "" {
			base.CustomerID = ovr.CustomerID
		}
		if !ovr.OpenDate.IsZero() {
			base.OpenDate = ovr.OpenDate
		}
		if ovr.LastConsultedDate != nil {
			base.LastConsultedDate = ovr.LastConsultedDate
		}
		if ovr.Country != nil {
			base.Country = ovr.Country
		}
		if ovr.DOB != nil {
			base.DOB = ovr.DOB
		}
		if ovr.IsActive != nil {
			base.IsActive = ovr.IsActive
		}
	}

	return base
}

// NewStagingRecord creates a StagingRecord with default fake data.
func NewStagingRecord(overrideDefaults ...*StagingRecord) *StagingRecord {
	rec := NewCleanedRecord().ToStaging()
	rec.ID = int64(gofakeit.Number(1, 1_000_000))

	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.ID != 0 {
			rec.ID = ovr.ID
		}
		if ovr.CustomerName != "" {
			rec.CustomerName = ovr.CustomerName
		}
		if ovr.CustomerID != "" {
			rec.CustomerID = ovr.CustomerID
		}
		if !ovr.OpenDate.IsZero() {
			rec.OpenDate = ovr.OpenDate
		}
		if ovr.LastConsultedDate != nil {
			rec.LastConsultedDate = ovr.LastConsultedDate
		}
		if ovr.Country != nil {
			rec.Country = ovr.Country
		}
		if ovr.DOB != nil {
			rec.DOB = ovr.DOB
		}
		rec.Processed = ovr.Processed
	}

	return &rec
}
