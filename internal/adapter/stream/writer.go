// Package stream publishes audit events to a Kafka topic. The stream is an
// optional operational record of what the watcher surfaced and dispatched;
// delivery notifications themselves never pass through it.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/island-notify/internal/config"
	"github.com/couchcryptid/island-notify/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces audit events to the configured topic.
// It implements pipeline.AuditWriter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the audit topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Record serializes and publishes one audit event.
func (w *Writer) Record(ctx context.Context, event pipeline.AuditEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an audit event into a Kafka message keyed by
// source, so one source's events stay ordered within a partition.
func serializeToMessage(event pipeline.AuditEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Source),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "run_id", Value: []byte(event.RunID)},
		},
	}, nil
}
