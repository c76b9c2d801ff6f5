// Command validate checks a merged feature collection against the area
// table it was built from. It verifies that every matching feature carries
// exactly the district fields and values, that merging again would change
// nothing, and lists districts that no feature references.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -areas public/data/areas.txt \
//	  -json public/data/abstract-areas.json \
//	  [-strict]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/couchcryptid/district-areas-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
)

// districtFields is the exact property set of a merged feature.
var districtFields = []string{
	domain.PropHeadquarters,
	domain.PropPlates,
	domain.PropProvince,
	domain.PropAreaKm2,
	domain.PropAreaHa,
	domain.PropPopulation,
	domain.PropDensity,
	domain.PropID,
	domain.PropName,
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	areasPath := flag.String("areas", "", "tab-separated area table")
	jsonPath := flag.String("json", "", "merged feature collection")
	strict := flag.Bool("strict", false, "fail when a district is not referenced by any feature")
	flag.Parse()

	if *areasPath == "" || *jsonPath == "" {
		fmt.Fprintln(os.Stderr, "usage: validate -areas <areas.txt> -json <abstract-areas.json> [-strict]")
		os.Exit(2)
	}

	os.Exit(run(*areasPath, *jsonPath, *strict))
}

func run(areasPath, jsonPath string, strict bool) int {
	table, stats, err := loadTable(areasPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load areas: %v\n", err)
		return 1
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read json: %v\n", err)
		return 1
	}
	doc, err := domain.ParseDocument(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	fieldsPhase, matched, err := checkFields(doc, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	phases := []*phase{
		fieldsPhase,
		checkIdempotent(doc, table),
	}
	coverage := checkCoverage(table, matched)
	if strict {
		phases = append(phases, coverage)
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Districts: %d loaded from %d rows (%d short, %d bad area), %d matched, %d unreferenced\n",
		len(table), stats.Rows, stats.SkippedShort, stats.SkippedArea, len(matched), len(coverage.errors))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadTable(path string) (domain.AreaTable, domain.LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.LoadStats{}, err
	}
	defer f.Close()
	return domain.ParseAreaTable(f)
}

// checkFields verifies that every feature matching a district has exactly
// the district property set and values. It returns the matched district keys.
func checkFields(doc *domain.Document, table domain.AreaTable) (*phase, map[string]int, error) {
	p := &phase{name: "Matched features carry district fields"}
	matched := make(map[string]int)

	features, err := doc.Features()
	if err != nil {
		return nil, nil, err
	}
	want := slices.Clone(districtFields)
	sort.Strings(want)

	for i, raw := range features {
		f, err := domain.DecodeFeature(i, raw)
		if err != nil {
			return nil, nil, err
		}
		key := domain.NormalizeFeatureName(f.Name())
		rec, ok := table[key]
		if !ok {
			continue
		}
		matched[key]++

		got := f.Properties.Keys()
		sort.Strings(got)
		if !slices.Equal(got, want) {
			p.errorf("feature %d (%s): properties %v, want %v", i, f.Name(), got, want)
			continue
		}
		if err := checkValues(p, f, rec); err != nil {
			return nil, nil, err
		}
	}
	return p, matched, nil
}

// checkValues compares every property of a matched feature with the value
// the merge writes for rec.
func checkValues(p *phase, f domain.Feature, rec domain.AreaRecord) error {
	id, _ := f.Properties.Get(domain.PropID)
	name, _ := f.Properties.Get(domain.PropName)
	expected, err := domain.DistrictProperties(rec, id, name)
	if err != nil {
		return fmt.Errorf("feature %d: %w", f.Index, err)
	}
	for _, k := range expected.Keys() {
		wantRaw, _ := expected.Get(k)
		gotRaw, _ := f.Properties.Get(k)
		var wantV, gotV any
		if err := json.Unmarshal(wantRaw, &wantV); err != nil {
			return fmt.Errorf("feature %d %s: %w", f.Index, k, err)
		}
		if err := json.Unmarshal(gotRaw, &gotV); err != nil {
			return fmt.Errorf("feature %d %s: %w", f.Index, k, err)
		}
		if !cmp.Equal(gotV, wantV) {
			p.errorf("feature %d (%s): %s is %s, want %s", f.Index, f.Name(), k, gotRaw, wantRaw)
		}
	}
	return nil
}

// checkIdempotent merges the document again and fails if anything changes.
func checkIdempotent(doc *domain.Document, table domain.AreaTable) *phase {
	p := &phase{name: "Re-merge leaves document unchanged"}

	before, err := doc.Encode()
	if err != nil {
		p.errorf("encode: %v", err)
		return p
	}
	again, err := domain.ParseDocument(before)
	if err != nil {
		p.errorf("parse: %v", err)
		return p
	}
	if _, err := domain.MergeAreas(again, table); err != nil {
		p.errorf("merge: %v", err)
		return p
	}
	after, err := again.Encode()
	if err != nil {
		p.errorf("encode: %v", err)
		return p
	}
	if string(before) != string(after) {
		p.errorf("merging again changes the document (%d bytes -> %d bytes)", len(before), len(after))
	}
	return p
}

// checkCoverage lists districts that no feature references.
func checkCoverage(table domain.AreaTable, matched map[string]int) *phase {
	p := &phase{name: "Every district referenced by a feature"}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if matched[k] == 0 {
			p.errorf("%s: no feature", k)
		}
	}
	return p
}
