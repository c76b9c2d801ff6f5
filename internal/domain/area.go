package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// districtPrefix marks a name as a district; the feature collection names
// every district "powiat <name>".
const districtPrefix = "powiat"

// minColumns is the number of columns a table row needs to be usable.
const minColumns = 7

// Column indexes within an area table row.
const (
	colName = iota
	colHeadquarters
	colPlates
	colProvince
	colArea
	colPopulation
	colDensity
)

// AreaRecord holds the statistics of a single district.
type AreaRecord struct {
	Headquarters string
	Plates       string
	Province     string
	AreaKm2      float64
	AreaHa       float64
	Population   float64
	Density      float64
}

// AreaTable maps normalized district names to their records.
type AreaTable map[string]AreaRecord

// LoadStats counts what happened to the rows of an area table.
type LoadStats struct {
	Rows         int // rows read, including skipped ones
	SkippedShort int // fewer than minColumns columns
	SkippedArea  int // area column not a number
	Duplicates   int // rows that replaced an earlier row with the same key
}

// Loaded returns the number of rows that produced a record.
func (s LoadStats) Loaded() int {
	return s.Rows - s.SkippedShort - s.SkippedArea
}

// RowError reports a value that could not be parsed and aborts the load.
type RowError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: parse %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// NormalizeAreaName turns a table name into its lookup key: trimmed,
// lowercased and prefixed with "powiat " unless it already mentions it.
func NormalizeAreaName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if !strings.Contains(key, districtPrefix) {
		key = districtPrefix + " " + key
	}
	return key
}

// NormalizeFeatureName turns a feature's "nazwa" into its lookup key.
func NormalizeFeatureName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseAreaTable reads tab-separated district rows from r.
// Later rows win over earlier rows with the same key.
func ParseAreaTable(r io.Reader) (AreaTable, LoadStats, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	table := make(AreaTable)
	var stats LoadStats
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read area table: %w", err)
		}
		stats.Rows++

		if len(row) < minColumns {
			stats.SkippedShort++
			continue
		}
		line, _ := cr.FieldPos(0)

		key, rec, ok, err := parseAreaRow(row, line)
		if err != nil {
			return nil, stats, err
		}
		if !ok {
			stats.SkippedArea++
			continue
		}
		if _, dup := table[key]; dup {
			stats.Duplicates++
		}
		table[key] = rec
	}
	return table, stats, nil
}

// parseAreaRow converts one row. ok is false when the area is not a number;
// a bad population or density is an error.
func parseAreaRow(row []string, line int) (string, AreaRecord, bool, error) {
	area, err := parseDecimal(row[colArea])
	if err != nil {
		return "", AreaRecord{}, false, nil
	}

	population, err := parseDecimal(row[colPopulation])
	if err != nil {
		return "", AreaRecord{}, false, &RowError{Line: line, Column: "population", Value: row[colPopulation], Err: err}
	}
	density, err := parseDecimal(row[colDensity])
	if err != nil {
		return "", AreaRecord{}, false, &RowError{Line: line, Column: "density", Value: row[colDensity], Err: err}
	}

	rec := AreaRecord{
		Headquarters: strings.TrimSpace(row[colHeadquarters]),
		Plates:       strings.TrimSpace(row[colPlates]),
		Province:     strings.TrimSpace(row[colProvince]),
		AreaKm2:      round2(area),
		AreaHa:       round2(area * 100),
		Population:   population,
		Density:      density,
	}
	return NormalizeAreaName(row[colName]), rec, true, nil
}

// errNotFinite rejects values that have no JSON representation.
var errNotFinite = errors.New("not a finite number")

// parseDecimal parses a number written with a comma decimal separator and
// spaces between thousands, e.g. "1 234,50". Digits may be grouped with
// single underscores ("1_000"). Hexadecimal literals, NaN, infinities and
// values beyond the float64 range are rejected.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")

	clean, ok := stripDigitGroups(s)
	if !ok || strings.ContainsAny(clean, "xX") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: errNotFinite}
	}
	return f, nil
}

// stripDigitGroups removes underscores that sit between two digits. ok is
// false for any other underscore.
func stripDigitGroups(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// round2 rounds to two decimals, half to even on the exact binary value.
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
