// Command validate performs data integrity checks on an accidents CSV: it
// loads the file through the dashboard loader, re-derives every computed
// column, checks coordinates fall inside Lisbon, verifies the filter
// dimensions partition the dataset and round-trips the CSV export.
//
// Usage:
//
//	go run ./cmd/validate -data data/Road_Accidents_Lisbon.csv
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
)

// lisbonBound is a generous box around the municipality.
var lisbonBound = orb.Bound{Min: orb.Point{-9.25, 38.68}, Max: orb.Point{-9.08, 38.80}}

// maxErrors caps how many errors a phase records.
const maxErrors = 50

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings int
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) < maxErrors {
		p.errors = append(p.errors, fmt.Sprintf(format, args...))
	}
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "data/Road_Accidents_Lisbon.csv", "path to the accidents CSV file")
	delimiter := flag.String("delimiter", ",", "field delimiter")
	flag.Parse()

	if len([]rune(*delimiter)) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*dataPath, []rune(*delimiter)[0]))
}

func run(dataPath string, delimiter rune) int {
	fmt.Println("=== Road Accidents Data Validation ===")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ds, err := csvfile.NewLoader(delimiter).Load(ctx, dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateDerivedColumns(ds.Records),
		validateCoordinates(ds.Records),
		validatePartitions(ds),
		validateExportRoundTrip(ctx, ds.Records),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		} else if p.warnings > 0 {
			status = fmt.Sprintf("\033[33mPASS (%d warnings)\033[0m", p.warnings)
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d in %s\n", ds.Len(), dataPath)

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

// ── Phases ──

func validateDerivedColumns(records []domain.AccidentRecord) *phase {
	p := &phase{name: "Derived columns"}
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			p.errorf("id %s: duplicate id", r.ID)
		}
		seen[r.ID] = true

		want := domain.Enrich(r)
		if r.Severity != want.Severity {
			p.errorf("id %s: severity %q, want %q", r.ID, r.Severity, want.Severity)
		}
		if r.TotalCasualties != r.InjuriesLight+r.InjuriesSerious+r.Fatalities30d {
			p.errorf("id %s: total_casualties %d is not the sum of the tiers", r.ID, r.TotalCasualties)
		}
		if r.TimePeriod != domain.ClassifyTimePeriod(r.Hour) {
			p.errorf("id %s: time_period %q for hour %d", r.ID, r.TimePeriod, r.Hour)
		}
		if r.Month != int(r.Date.Month()) || r.MonthName != r.Date.Month().String() {
			p.errorf("id %s: month %d/%s does not match date %s", r.ID, r.Month, r.MonthName, domain.FormatDate(r.Date))
		}
		if r.InjuriesLight < 0 || r.InjuriesSerious < 0 || r.Fatalities30d < 0 || r.NumVehicles < 0 {
			p.errorf("id %s: negative count", r.ID)
		}
		// Source files carry their own day_of_week; a mismatch is suspicious
		// but not wrong.
		if r.DayOfWeek != r.Date.Weekday().String() {
			p.warnings++
		}
	}
	return p
}

func validateCoordinates(records []domain.AccidentRecord) *phase {
	p := &phase{name: "Coordinates inside Lisbon"}
	for _, r := range records {
		pt := orb.Point{r.Longitude, r.Latitude}
		if !lisbonBound.Contains(pt) {
			p.errorf("id %s: (%g, %g) outside Lisbon", r.ID, r.Latitude, r.Longitude)
		}
	}
	return p
}

func validatePartitions(ds *domain.Dataset) *phase {
	p := &phase{name: "Filter dimensions partition the dataset"}
	total := ds.Len()

	severityRows := 0
	for _, s := range domain.Severities {
		severityRows += domain.BuildView(ds, domain.Filter{Severities: []domain.Severity{s}}).Len()
	}
	if severityRows != total {
		p.errorf("severity tiers cover %d of %d records", severityRows, total)
	}

	periodRows := 0
	for _, tp := range domain.TimePeriods {
		periodRows += domain.BuildView(ds, domain.Filter{TimePeriods: []domain.TimePeriod{tp}}).Len()
	}
	if periodRows != total {
		p.errorf("time periods cover %d of %d records", periodRows, total)
	}

	opts := domain.OptionsFor(ds)
	if n := domain.BuildView(ds, domain.Filter{From: opts.MinDate, To: opts.MaxDate}).Len(); n != total {
		p.errorf("full date range selects %d of %d records", n, total)
	}
	if n := domain.BuildView(ds, domain.Filter{Parishes: []string{}}).Len(); n != 0 {
		p.errorf("empty parish selection returned %d records", n)
	}
	return p
}

func validateExportRoundTrip(ctx context.Context, records []domain.AccidentRecord) *phase {
	p := &phase{name: "CSV export round trip"}

	var buf bytes.Buffer
	if err := csvfile.Write(&buf, records); err != nil {
		p.errorf("write: %v", err)
		return p
	}
	// The export always uses commas regardless of the input delimiter.
	back, err := csvfile.NewLoader(',').Decode(ctx, &buf)
	if err != nil {
		p.errorf("read back: %v", err)
		return p
	}
	if len(back) != len(records) {
		p.errorf("read back %d of %d records", len(back), len(records))
		return p
	}
	for i := range records {
		if diff := cmp.Diff(records[i], back[i]); diff != "" {
			p.errorf("id %s changed on round trip (-want +got):\n%s", records[i].ID, diff)
		}
	}
	return p
}
