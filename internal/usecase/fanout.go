package usecase

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
)

// Fanout copies every unprocessed staging row above the processed watermark
// into its per-country table, derives age and days-since-last-consulted as
// of asOf, and marks the whole working set processed in one transaction.
// Rows with an absent or unknown country are marked processed without a
// destination insert so they never re-enter the working set.
func (s *Service) Fanout(ctx context.Context, asOf time.Time) error {
	log := logger.FromContext(ctx)

	watermark, err := s.stagingRepo.MaxProcessedID(ctx)
	if err != nil {
		return err
	}

	records, err := s.stagingRepo.FindUnprocessedAfter(ctx, watermark)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		log.Debug("No unprocessed staging rows, fanout is a no-op",
			zap.Int64("watermark", watermark))
		return nil
	}

	batches := make(map[string][]model.CountryRecord)
	ids := make([]int64, 0, len(records))
	skipped := 0

	for _, rec := range records {
		ids = append(ids, rec.ID)

		code := rec.CountryCode()
		if code == "" {
			skipped++
			continue
		}
		table, ok := s.directory.TableFor(code)
		if !ok {
			skipped++
			log.Debug("Staging row has unknown country, no destination table",
				zap.Int64("staging_id", rec.ID),
				zap.String("country", code))
			continue
		}
		batches[table] = append(batches[table], buildCountryRecord(rec, asOf))
	}

	if err := s.countryRepo.ApplyFanout(ctx, batches, ids); err != nil {
		return err
	}

	log.Info("Fanout applied",
		zap.Int64("watermark", watermark),
		zap.Int("rows_processed", len(ids)),
		zap.Int("tables", len(batches)),
		zap.Int("rows_without_destination", skipped))
	return nil
}

// buildCountryRecord copies the staging core fields into a destination row
// and derives the age and consultation-recency fields. Derivations are
// absent when their source date is absent.
func buildCountryRecord(rec model.StagingRecord, asOf time.Time) model.CountryRecord {
	out := model.CountryRecord{
		CustomerName:      rec.CustomerName,
		CustomerID:        rec.CustomerID,
		OpenDate:          rec.OpenDate,
		LastConsultedDate: rec.LastConsultedDate,
		VaccinationID:     rec.VaccinationID,
		DrName:            rec.DrName,
		State:             rec.State,
		Country:           rec.Country,
		DOB:               rec.DOB,
		IsActive:          rec.IsActive,
	}
	if rec.DOB != nil {
		age := wholeYearsBetween(*rec.DOB, asOf)
		out.Age = &age
	}
	if rec.LastConsultedDate != nil {
		days := wholeDaysBetween(*rec.LastConsultedDate, asOf)
		out.DaysSinceLastConsulted = &days
	}
	return out
}

// wholeYearsBetween returns completed calendar years from dob to asOf,
// i.e. the age a person born on dob has on asOf.
func wholeYearsBetween(dob, asOf time.Time) int {
	years := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() ||
		(asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		years--
	}
	return years
}

// wholeDaysBetween returns whole days elapsed from a date to asOf, flooring
// so a future date yields the negative day count rather than rounding
// toward zero.
func wholeDaysBetween(from, asOf time.Time) int {
	return int(math.Floor(asOf.Sub(from).Hours() / 24))
}
