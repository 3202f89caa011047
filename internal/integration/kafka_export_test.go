//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/road-accidents-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/road-accidents-dashboard/internal/config"
	"github.com/couchcryptid/road-accidents-dashboard/internal/dataset"
	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/couchcryptid/road-accidents-dashboard/internal/observability"
	"github.com/couchcryptid/road-accidents-dashboard/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkatc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testExportTopic = "test-accident-exports"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := kafkatc.Run(ctx, "confluentinc/confluent-local:7.5.0", kafkatc.WithClusterID("accidents-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestExportToKafka loads the fixture CSV, filters it and publishes the view
// through the pipeline, then reads every message back from the topic.
func TestExportToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testExportTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaExportTopic: testExportTopic}
	metrics := observability.NewMetricsForTesting()
	store := dataset.NewStore("../adapter/csvfile/testdata/accidents.csv", csvfile.NewLoader(','), 0, discardLogger(), metrics)
	p := pipeline.New(store, 10, discardLogger(), metrics)

	records, err := p.Records(ctx, pipeline.ScopeFull, domain.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, records)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, p.Publish(ctx, writer, records))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testExportTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := make(map[string]domain.AccidentRecord, len(records))
	for len(got) < len(records) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from export topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		_, err = time.Parse(time.RFC3339, headers["exported_at"])
		assert.NoError(t, err, "exported_at should be valid RFC3339")

		var rec domain.AccidentRecord
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		assert.Equal(t, string(msg.Key), rec.ID)
		assert.Equal(t, string(rec.Severity), headers["severity"])
		got[rec.ID] = rec
	}

	for _, want := range records {
		assert.Equal(t, want.Severity, got[want.ID].Severity, "record %s", want.ID)
		assert.Equal(t, want.TotalCasualties, got[want.ID].TotalCasualties, "record %s", want.ID)
	}
}
