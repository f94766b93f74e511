package usecase

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
)

// ResolveCurrentCountry upserts one summary row per customer seen in the
// unprocessed staging window, choosing the row with the most recent
// last-consulted date. Rows without a country or consultation date cannot
// express a current country and are excluded by the repository query. On a
// date tie the row appended last (highest staging id) wins.
func (s *Service) ResolveCurrentCountry(ctx context.Context) error {
	log := logger.FromContext(ctx)

	records, err := s.stagingRepo.FindResolvable(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		log.Debug("No resolvable staging rows, summary untouched")
		return nil
	}

	best := make(map[string]model.StagingRecord)
	for _, rec := range records {
		cur, seen := best[rec.CustomerID]
		if !seen ||
			rec.LastConsultedDate.After(*cur.LastConsultedDate) ||
			(rec.LastConsultedDate.Equal(*cur.LastConsultedDate) && rec.ID > cur.ID) {
			best[rec.CustomerID] = rec
		}
	}

	rows := make([]model.CurrentCountry, 0, len(best))
	for _, rec := range best {
		rows = append(rows, model.CurrentCountry{
			CustomerID:        rec.CustomerID,
			CustomerName:      rec.CustomerName,
			Country:           rec.CountryCode(),
			LastConsultedDate: *rec.LastConsultedDate,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CustomerID < rows[j].CustomerID
	})

	if err := s.currentRepo.UpsertBatch(ctx, rows); err != nil {
		return err
	}

	log.Info("Current-country summary refreshed",
		zap.Int("rows_considered", len(records)),
		zap.Int("customers_upserted", len(rows)))
	return nil
}
