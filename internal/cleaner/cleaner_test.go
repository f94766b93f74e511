package cleaner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/apperrors"
)

func row(cells ...string) []string { return cells }

func validRow() []string {
	return row("Alec", "123457", "20101012", "20121013", "MVD", "Paul", "SA", "USA", "06031987", "A")
}

func TestClean_HeaderMismatch(t *testing.T) {
	tests := []struct {
		name   string
		header []string
	}{
		{
			name:   "missing column",
			header: ExpectedHeader[:len(ExpectedHeader)-1],
		},
		{
			name:   "extra column",
			header: append(append([]string{}, ExpectedHeader...), "Extra"),
		},
		{
			name: "reordered columns",
			header: []string{
				"Customer_Id", "Customer_Name", "Open_Date", "Last_Consulted_Date",
				"Vaccination_Id", "Dr_Name", "State", "Country", "DOB", "Is_Active",
			},
		},
		{
			name: "renamed column",
			header: []string{
				"Customer_Name", "Customer_Id", "Open_Date", "Last_Consulted_Date",
				"Vaccination_Id", "Doctor", "State", "Country", "DOB", "Is_Active",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Clean(tc.header, nil)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, apperrors.ErrSchema)
		})
	}
}

func TestClean_IncidentalColumnsDropped(t *testing.T) {
	header := append([]string{"Unnamed: 0"}, ExpectedHeader...)
	header = append(header, "H")

	data := append([]string{"0"}, validRow()...)
	data = append(data, "x")

	result, err := Clean(header, [][]string{data})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Alec", result.Records[0].CustomerName)
}

func TestClean_MandatoryFieldDrops(t *testing.T) {
	rows := [][]string{
		row("John", "123456", "20101012", "", "", "", "", "AU", "", ""),
		row("Mathew", "123458", "20101013", "", "", "", "", "USA", "", ""),
		row("", "", "20101014", "", "", "", "", "USA", "", ""),
	}

	result, err := Clean(ExpectedHeader, rows)
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Dropped.MissingMandatory)
	assert.Equal(t, []string{"AU", "USA"}, result.Countries)
}

func TestClean_CustomerIDTooLong(t *testing.T) {
	long := validRow()
	long[1] = strings.Repeat("9", 19)

	result, err := Clean(ExpectedHeader, [][]string{validRow(), long})
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
	assert.Equal(t, 1, result.Dropped.FieldConstraint)
}

func TestClean_CustomerIDLengthCheckedBeforeOpenDate(t *testing.T) {
	both := validRow()
	both[1] = strings.Repeat("9", 19)
	both[2] = "20109999"

	result, err := Clean(ExpectedHeader, [][]string{both})
	require.NoError(t, err)

	assert.Empty(t, result.Records)
	assert.Equal(t, 1, result.Dropped.FieldConstraint)
	assert.Equal(t, 0, result.Dropped.InvalidOpenDate)
}

func TestClean_OpenDateDrops(t *testing.T) {
	missing := validRow()
	missing[2] = ""
	garbage := validRow()
	garbage[2] = "20109999"

	result, err := Clean(ExpectedHeader, [][]string{validRow(), missing, garbage})
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
	assert.Equal(t, 1, result.Dropped.MissingMandatory)
	assert.Equal(t, 1, result.Dropped.InvalidOpenDate)
	assert.Equal(t, 2, result.Dropped.Total())
}

func TestClean_DOBReparsedFromDayMonthYear(t *testing.T) {
	r := validRow()
	r[8] = "11111992"

	result, err := Clean(ExpectedHeader, [][]string{r})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	dob := result.Records[0].DOB
	require.NotNil(t, dob)
	assert.Equal(t, time.Date(1992, time.November, 11, 0, 0, 0, 0, time.UTC), *dob)
}

func TestClean_UnparseableOptionalDatesBecomeAbsent(t *testing.T) {
	r := validRow()
	r[3] = "not-a-date"
	r[8] = "99"

	result, err := Clean(ExpectedHeader, [][]string{r})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	assert.Nil(t, result.Records[0].LastConsultedDate)
	assert.Nil(t, result.Records[0].DOB)
	assert.Zero(t, result.Dropped.Total())
}

func TestClean_EmptyStringsBecomeAbsent(t *testing.T) {
	r := row("Jane", "42", "20200101", "", "", "", "", "", "", "")

	result, err := Clean(ExpectedHeader, [][]string{r})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Nil(t, rec.VaccinationID)
	assert.Nil(t, rec.DrName)
	assert.Nil(t, rec.State)
	assert.Nil(t, rec.Country)
	assert.Nil(t, rec.IsActive)

	// An absent country still contributes the absent marker to the set
	assert.Equal(t, []string{""}, result.Countries)
}

func TestClean_PreservesInputOrder(t *testing.T) {
	first := validRow()
	first[0] = "First"
	second := validRow()
	second[0] = "Second"
	second[7] = "IND"

	result, err := Clean(ExpectedHeader, [][]string{first, second})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	assert.Equal(t, "First", result.Records[0].CustomerName)
	assert.Equal(t, "Second", result.Records[1].CustomerName)
	assert.Equal(t, []string{"IND", "USA"}, result.Countries)
}

func TestClean_OutputInvariants(t *testing.T) {
	rows := [][]string{
		validRow(),
		row("  Padded  ", " 77 ", "20220505", "", "", "", "", " AU ", "", ""),
	}

	result, err := Clean(ExpectedHeader, rows)
	require.NoError(t, err)

	for _, rec := range result.Records {
		assert.NotEmpty(t, rec.CustomerName)
		assert.NotEmpty(t, rec.CustomerID)
		assert.LessOrEqual(t, len(rec.CustomerID), 18)
		assert.False(t, rec.OpenDate.IsZero())
	}

	// Values are trimmed on the way in
	assert.Equal(t, "Padded", result.Records[1].CustomerName)
	assert.Equal(t, "77", result.Records[1].CustomerID)
	assert.Equal(t, "AU", *result.Records[1].Country)
}

func TestCleanReader_PipeDelimited(t *testing.T) {
	input := strings.Join([]string{
		strings.Join(ExpectedHeader, "|"),
		"Alec|123457|20101012|20121013|MVD|Paul|SA|USA|06031987|A",
		"John|123458|20101012|20121013|MVD|Paul|TN|IND|06031987|A",
	}, "\n")

	result, err := CleanReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, []string{"IND", "USA"}, result.Countries)
}

func TestCleanReader_EmptyInput(t *testing.T) {
	_, err := CleanReader(strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrSchema)
}

func TestCleanReader_RaggedRow(t *testing.T) {
	input := strings.Join([]string{
		strings.Join(ExpectedHeader, "|"),
		"Alec|123457|20101012",
	}, "\n")

	_, err := CleanReader(strings.NewReader(input))
	assert.ErrorIs(t, err, apperrors.ErrSchema)
}

func TestWriteSnapshot(t *testing.T) {
	result, err := Clean(ExpectedHeader, [][]string{validRow()})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, err)
	require.NoError(t, WriteSnapshot(path, result.Records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(ExpectedHeader, "|"), lines[0])
	// Dates are ISO-normalized in the hand-off file
	assert.Equal(t, "Alec|123457|2010-10-12|2012-10-13|MVD|Paul|SA|USA|1987-03-06|A", lines[1])
}
