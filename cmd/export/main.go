// Command export writes a filtered or full CSV extract of the accident
// dataset and can publish the same records to Kafka.
//
// Usage:
//
//	go run ./cmd/export \
//	  -data data/Road_Accidents_Lisbon.csv \
//	  -scope filtered \
//	  -filter 'severity=Fatal&severity=Serious&from=2023-06-01' \
//	  -out fatal_serious.csv \
//	  -kafka-topic accident-exports
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/road-accidents-dashboard/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/road-accidents-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/road-accidents-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/road-accidents-dashboard/internal/config"
	"github.com/couchcryptid/road-accidents-dashboard/internal/dataset"
	"github.com/couchcryptid/road-accidents-dashboard/internal/observability"
	"github.com/couchcryptid/road-accidents-dashboard/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dataPath := flag.String("data", cfg.DataPath, "path to the accidents CSV file")
	scope := flag.String("scope", string(pipeline.ScopeFiltered), "export scope: filtered or full")
	filterQuery := flag.String("filter", "", "filter selection as a query string, e.g. 'severity=Fatal&parish=Belém'")
	out := flag.String("out", "", "output CSV path, - for stdout (default <prefix>_<scope>.csv)")
	topic := flag.String("kafka-topic", cfg.KafkaExportTopic, "also publish the records to this Kafka topic")
	flag.Parse()

	q, err := url.ParseQuery(*filterQuery)
	if err != nil {
		return fmt.Errorf("parse -filter: %w", err)
	}
	filter, err := httpadapter.ParseFilter(q)
	if err != nil {
		return fmt.Errorf("parse -filter: %w", err)
	}

	s := pipeline.Scope(*scope)
	if s != pipeline.ScopeFiltered && s != pipeline.ScopeFull {
		return fmt.Errorf("unknown -scope %q", *scope)
	}

	outPath := *out
	if outPath == "" {
		outPath = csvfile.FilteredFileName(cfg.ExportPrefix)
		if s == pipeline.ScopeFull {
			outPath = csvfile.FullFileName(cfg.ExportPrefix)
		}
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	store := dataset.NewStore(*dataPath, csvfile.NewLoader(cfg.DataDelimiter), 0, logger, metrics)
	p := pipeline.New(store, cfg.TopParishes, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, closeOut, err := openOutput(outPath)
	if err != nil {
		return err
	}
	n, err := p.Export(ctx, w, s, filter)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logger.Info("export written", "path", outPath, "scope", s, "rows", n)

	if *topic == "" {
		return nil
	}

	records, err := p.Records(ctx, s, filter)
	if err != nil {
		return err
	}
	cfg.KafkaExportTopic = *topic
	writer := kafkaadapter.NewWriter(cfg, logger)
	defer writer.Close()

	return p.Publish(ctx, writer, records)
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
