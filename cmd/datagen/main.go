// Command datagen writes a synthetic pipe-delimited customer extract for
// local runs and load testing. A configurable share of rows is deliberately
// malformed to exercise the cleaner's drop accounting.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/cleaner"
)

var countryCodes = []string{
	"USA", "IND", "AU", "CAN", "PHL", "UK", "DEU",
	"FRA", "JPN", "CHN", "BRA", "ZAF", "RUS",
	"NPL", // Outside the known set on purpose
}

func main() {
	out := flag.String("out", "data/customer_data.txt", "output file path")
	rows := flag.Int("rows", 1000, "number of data rows to generate")
	invalidShare := flag.Float64("invalid-share", 0.05, "fraction of rows made invalid (0..1)")
	seed := flag.Int64("seed", 0, "random seed, 0 uses the current time")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gofakeit.Seed(*seed)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	fmt.Fprintln(w, strings.Join(cleaner.ExpectedHeader, "|"))

	invalid := 0
	for i := 0; i < *rows; i++ {
		row := validRow()
		if gofakeit.Float64Range(0, 1) < *invalidShare {
			breakRow(row)
			invalid++
		}
		fmt.Fprintln(w, strings.Join(row, "|"))
	}

	fmt.Printf("wrote %d rows (%d invalid) to %s (seed %d)\n", *rows, invalid, *out, *seed)
}

func validRow() []string {
	open := gofakeit.DateRange(
		time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	consulted := open.AddDate(0, 0, gofakeit.Number(0, 400))
	dob := gofakeit.DateRange(
		time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	)

	return []string{
		gofakeit.Name(),
		gofakeit.DigitN(uint(gofakeit.Number(6, 12))),
		open.Format("20060102"),
		consulted.Format("20060102"),
		gofakeit.LetterN(1) + gofakeit.DigitN(3),
		"Dr " + gofakeit.LastName(),
		strings.ToUpper(gofakeit.LetterN(2)),
		gofakeit.RandomString(countryCodes),
		dob.Format("02012006"), // DOB is day-first in the extract
		gofakeit.RandomString([]string{"A", "I"}),
	}
}

// breakRow damages one row in a way the cleaner is expected to drop.
func breakRow(row []string) {
	switch gofakeit.Number(0, 3) {
	case 0: // Missing mandatory name
		row[0] = ""
	case 1: // Missing mandatory id
		row[1] = ""
	case 2: // Id over the 18-character limit
		row[1] = gofakeit.DigitN(25)
	case 3: // Unparseable open date
		row[2] = "31132024"
	}
}
