// Package country provides the static directory mapping ISO-style country
// codes from the extract to canonical country names and per-country table
// identifiers.
package country

import (
	"fmt"
	"strings"
)

// UnknownCountry is the sentinel returned for codes outside the known set.
// Unknown codes are valid input, not a failure.
const UnknownCountry = "Unknown Country"

// tablePrefix prefixes every per-country destination table.
const tablePrefix = "customers_"

var countryNames = map[string]string{
	"USA": "United_States",
	"IND": "India",
	"AU":  "Australia",
	"CAN": "Canada",
	"PHL": "Philippines",
	"UK":  "United_Kingdom",
	"DEU": "Germany",
	"FRA": "France",
	"JPN": "Japan",
	"CHN": "China",
	"BRA": "Brazil",
	"ZAF": "South_Africa",
	"RUS": "Russia",
}

// Directory resolves country codes to canonical names and table names.
// The zero value is not usable; construct with NewDirectory.
type Directory struct {
	names map[string]string
}

// NewDirectory returns a directory over the fixed known country set.
func NewDirectory() *Directory {
	return &Directory{names: countryNames}
}

// NameFor returns the canonical country name for code, or the
// UnknownCountry sentinel when the code is not in the known set.
func (d *Directory) NameFor(code string) string {
	if name, ok := d.names[code]; ok {
		return name
	}
	return UnknownCountry
}

// IsKnown reports whether code is in the known country set.
func (d *Directory) IsKnown(code string) bool {
	_, ok := d.names[code]
	return ok
}

// TableFor derives the destination table name for code. The second return
// value is false for codes outside the known set.
func (d *Directory) TableFor(code string) (string, bool) {
	name, ok := d.names[code]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s%s", tablePrefix, strings.ToLower(name)), true
}

// Codes returns every known country code. Order is unspecified.
func (d *Directory) Codes() []string {
	codes := make([]string, 0, len(d.names))
	for code := range d.names {
		codes = append(codes, code)
	}
	return codes
}
