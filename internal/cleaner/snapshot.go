package cleaner

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// WriteSnapshot persists the cleaned record set as a pipe-delimited file
// with ISO-normalized dates. The snapshot is a hand-off/debugging artifact;
// the in-memory record slice remains the primary contract between the
// cleaner and the staging loader.
func WriteSnapshot(path string, records []model.CleanedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = Delimiter

	if err := w.Write(ExpectedHeader); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.CustomerName,
			rec.CustomerID,
			utils.DateOnly(rec.OpenDate),
			optionalDateCell(rec.LastConsultedDate),
			optionalCell(rec.VaccinationID),
			optionalCell(rec.DrName),
			optionalCell(rec.State),
			optionalCell(rec.Country),
			optionalDateCell(rec.DOB),
			optionalCell(rec.IsActive),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

func optionalCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalDateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return utils.DateOnly(*t)
}
