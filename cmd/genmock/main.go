// Command genmock generates a synthetic Lisbon road-accident CSV with the
// same columns as the published dataset. Output is deterministic for a given
// seed, so fixtures can be regenerated and diffed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/Road_Accidents_Lisbon.csv \
//	  -n 2000 -year 2023 -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
)

// parish is a Lisbon freguesia and its approximate centre.
type parish struct {
	name     string
	lat, lon float64
}

var parishes = []parish{
	{"Ajuda", 38.7080, -9.1990},
	{"Alcântara", 38.7050, -9.1780},
	{"Alvalade", 38.7520, -9.1420},
	{"Areeiro", 38.7420, -9.1330},
	{"Arroios", 38.7290, -9.1360},
	{"Avenidas Novas", 38.7400, -9.1490},
	{"Beato", 38.7340, -9.1080},
	{"Belém", 38.6980, -9.2070},
	{"Benfica", 38.7510, -9.2000},
	{"Campo de Ourique", 38.7170, -9.1660},
	{"Campolide", 38.7320, -9.1650},
	{"Carnide", 38.7620, -9.1880},
	{"Estrela", 38.7110, -9.1590},
	{"Lumiar", 38.7720, -9.1590},
	{"Marvila", 38.7450, -9.1050},
	{"Misericórdia", 38.7100, -9.1460},
	{"Olivais", 38.7670, -9.1130},
	{"Parque das Nações", 38.7680, -9.0940},
	{"Penha de França", 38.7280, -9.1240},
	{"Santa Clara", 38.7830, -9.1500},
	{"Santa Maria Maior", 38.7110, -9.1340},
	{"Santo António", 38.7200, -9.1470},
	{"São Domingos de Benfica", 38.7450, -9.1750},
	{"São Vicente", 38.7170, -9.1270},
}

var (
	roadTypes     = []string{"Avenue", "Street", "Roundabout", "Highway", "Square", "Bridge"}
	accidentTypes = []string{"Collision", "Rear-end", "Pedestrian", "Run-off", "Side impact", "Motorcycle"}
	weathers      = []weighted{{"Clear", 60}, {"Cloudy", 20}, {"Rain", 15}, {"Fog", 4}, {"Wind", 1}}
)

type weighted struct {
	value  string
	weight int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path")
	n := flag.Int("n", 1000, "number of accidents to generate")
	year := flag.Int("year", 2023, "calendar year of the accidents")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -n > 0")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	records := generate(rng, *n, *year)

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := csvfile.WriteColumns(f, records, domain.RawColumns); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %d records: %s", len(records), *out)

	printStats(records)
	return nil
}

func generate(rng *rand.Rand, n, year int) []domain.AccidentRecord {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(start.AddDate(1, 0, 0).Sub(start).Hours() / 24)

	records := make([]domain.AccidentRecord, n)
	for i := range records {
		p := parishes[rng.IntN(len(parishes))]
		date := start.AddDate(0, 0, rng.IntN(days))
		r := domain.AccidentRecord{
			ID:           strconv.Itoa(i + 1),
			Date:         date,
			Hour:         hour(rng),
			Latitude:     round(p.lat+rng.NormFloat64()*0.004, 6),
			Longitude:    round(p.lon+rng.NormFloat64()*0.004, 6),
			Parish:       p.name,
			RoadType:     roadTypes[rng.IntN(len(roadTypes))],
			AccidentType: accidentTypes[rng.IntN(len(accidentTypes))],
			Weather:      pick(rng, weathers),
			NumVehicles:  1 + rng.IntN(3),
			DayOfWeek:    date.Weekday().String(),
		}
		casualties(rng, &r)
		records[i] = domain.Enrich(r)
	}
	return records
}

// hour skews towards the commuting peaks.
func hour(rng *rand.Rand) int {
	switch x := rng.Float64(); {
	case x < 0.25:
		return 7 + rng.IntN(3)
	case x < 0.5:
		return 17 + rng.IntN(3)
	default:
		return rng.IntN(24)
	}
}

// casualties assigns injuries so the tiers come out roughly 45% property
// damage, 45% light, 8% serious and 2% fatal.
func casualties(rng *rand.Rand, r *domain.AccidentRecord) {
	switch x := rng.Float64(); {
	case x < 0.02:
		r.Fatalities30d = 1
		r.InjuriesSerious = rng.IntN(2)
		r.InjuriesLight = rng.IntN(3)
	case x < 0.10:
		r.InjuriesSerious = 1 + rng.IntN(2)
		r.InjuriesLight = rng.IntN(3)
	case x < 0.55:
		r.InjuriesLight = 1 + rng.IntN(3)
	}
}

func pick(rng *rand.Rand, options []weighted) string {
	total := 0
	for _, o := range options {
		total += o.weight
	}
	x := rng.IntN(total)
	for _, o := range options {
		if x < o.weight {
			return o.value
		}
		x -= o.weight
	}
	return options[len(options)-1].value
}

func round(v float64, places int) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return f
}

func printStats(records []domain.AccidentRecord) {
	fmt.Println("\n=== Severity ===")
	for _, c := range domain.CountBySeverity(records) {
		fmt.Printf("  %-22s %6d\n", c.Category, c.Count)
	}
	fmt.Println("\n=== Weather ===")
	for _, c := range domain.CountByWeather(records) {
		fmt.Printf("  %-22s %6d\n", c.Category, c.Count)
	}
	fmt.Println("\n=== Top parishes ===")
	for _, c := range domain.TopParishes(records, 5) {
		fmt.Printf("  %-22s %6d\n", c.Category, c.Count)
	}
	fmt.Printf("\ncasualties: %d  parishes: %d\n", domain.SumCasualties(records), domain.DistinctParishes(records))
}
