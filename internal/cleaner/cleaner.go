// Package cleaner parses the pipe-delimited customer extract, validates its
// shape, normalizes dates and emits the cleaned record set consumed by the
// staging loader.
package cleaner

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/apperrors"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/model"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/validator"
)

// Delimiter used by the extract and the cleaned snapshot.
const Delimiter = '|'

// dateLayout is the digit form all extract dates parse as, once DOB has
// been reordered.
const dateLayout = "20060102"

// maxCustomerIDLen matches the varchar(18) staging column.
const maxCustomerIDLen = 18

// ExpectedHeader is the fixed column set of the extract. Order matters:
// any extra, missing or reordered column is a schema error.
var ExpectedHeader = []string{
	"Customer_Name",
	"Customer_Id",
	"Open_Date",
	"Last_Consulted_Date",
	"Vaccination_Id",
	"Dr_Name",
	"State",
	"Country",
	"DOB",
	"Is_Active",
}

// incidentalColumns are index/marker columns some extract generations carry
// that are not part of the schema. They are stripped before validation.
var incidentalColumns = map[string]struct{}{
	"Unnamed: 0": {},
	"H":          {},
}

// DropStats counts rows silently excluded during cleaning, per reason.
// Drops are not failures; callers assert on these counts.
type DropStats struct {
	MissingMandatory int `json:"missing_mandatory"` // Customer_Name, Customer_Id or Open_Date absent
	FieldConstraint  int `json:"field_constraint"`  // Customer_Id over 18 chars, Is_Active not a single char
	InvalidOpenDate  int `json:"invalid_open_date"` // Open_Date present but unparseable
}

// Total returns the number of dropped rows across all reasons.
func (d DropStats) Total() int {
	return d.MissingMandatory + d.FieldConstraint + d.InvalidOpenDate
}

// Result is the outcome of a clean pass.
type Result struct {
	// Records holds the surviving rows in input order.
	Records []model.CleanedRecord
	// Countries is the sorted set of distinct country values across the
	// surviving rows. An empty string entry marks rows with an absent
	// country.
	Countries []string
	// Dropped counts the excluded rows.
	Dropped DropStats
}

// CleanFile reads and cleans the extract at path.
func CleanFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	defer f.Close()
	return CleanReader(f)
}

// CleanReader reads and cleans a pipe-delimited extract from r.
func CleanReader(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: input is empty", apperrors.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		// The csv reader enforces a consistent column count per row, so a
		// ragged row is a shape problem, not a per-row drop.
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSchema, err)
	}

	return Clean(header, rows)
}

// Clean validates the header and cleans every row, returning the surviving
// records, the distinct country set and the per-reason drop counts. A
// header mismatch fails with apperrors.ErrSchema before any row is
// processed.
func Clean(header []string, rows [][]string) (*Result, error) {
	keep := keptColumns(header)

	effective := projectRow(header, keep)
	if !headerMatches(effective) {
		return nil, fmt.Errorf("%w: expected columns %v, got %v",
			apperrors.ErrSchema, ExpectedHeader, effective)
	}

	result := &Result{}
	countries := make(map[string]struct{})

	for _, raw := range rows {
		if len(raw) != len(header) {
			return nil, fmt.Errorf("%w: row has %d columns, expected %d",
				apperrors.ErrSchema, len(raw), len(header))
		}
		vals := projectRow(raw, keep)

		name := strings.TrimSpace(vals[0])
		customerID := strings.TrimSpace(vals[1])
		openRaw := strings.TrimSpace(vals[2])

		if name == "" || customerID == "" || openRaw == "" {
			result.Dropped.MissingMandatory++
			continue
		}

		// The id length check precedes date parsing, so a row that is bad
		// in both ways counts as a field-constraint drop.
		if len(customerID) > maxCustomerIDLen {
			result.Dropped.FieldConstraint++
			continue
		}

		openDate, err := time.Parse(dateLayout, openRaw)
		if err != nil {
			result.Dropped.InvalidOpenDate++
			continue
		}

		rec := model.CleanedRecord{
			CustomerName:      name,
			CustomerID:        customerID,
			OpenDate:          openDate,
			LastConsultedDate: parseOptionalDate(vals[3]),
			VaccinationID:     optionalString(vals[4]),
			DrName:            optionalString(vals[5]),
			State:             optionalString(vals[6]),
			Country:           optionalString(vals[7]),
			DOB:               parseOptionalDate(reorderDOB(strings.TrimSpace(vals[8]))),
			IsActive:          optionalString(vals[9]),
		}

		// Mandatory presence and the open date are checked above; the
		// validator enforces the remaining field constraints.
		if err := validator.Validate(rec); err != nil {
			result.Dropped.FieldConstraint++
			continue
		}

		result.Records = append(result.Records, rec)

		if rec.Country != nil {
			countries[*rec.Country] = struct{}{}
		} else {
			countries[""] = struct{}{}
		}
	}

	result.Countries = make([]string, 0, len(countries))
	for c := range countries {
		result.Countries = append(result.Countries, c)
	}
	sort.Strings(result.Countries)

	return result, nil
}

// keptColumns returns the header indexes that are part of the fixed schema,
// dropping incidental index/marker columns.
func keptColumns(header []string) []int {
	keep := make([]int, 0, len(header))
	for i, col := range header {
		if _, incidental := incidentalColumns[strings.TrimSpace(col)]; incidental {
			continue
		}
		keep = append(keep, i)
	}
	return keep
}

func projectRow(row []string, keep []int) []string {
	out := make([]string, 0, len(keep))
	for _, i := range keep {
		out = append(out, row[i])
	}
	return out
}

func headerMatches(header []string) bool {
	if len(header) != len(ExpectedHeader) {
		return false
	}
	for i, col := range header {
		if strings.TrimSpace(col) != ExpectedHeader[i] {
			return false
		}
	}
	return true
}

// reorderDOB rewrites a DDMMYYYY digit date into YYYYMMDD. This is the
// fixed layout of the DOB column in the extract, not a date heuristic;
// values of any other length pass through and fail the date parse.
func reorderDOB(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[4:8] + s[2:4] + s[0:2]
}

// parseOptionalDate parses a YYYYMMDD value; empty or unparseable values
// become absent rather than erroring.
func parseOptionalDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// optionalString trims s and treats the empty string as absent.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
