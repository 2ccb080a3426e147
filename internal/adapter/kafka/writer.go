// Package kafka publishes peak markers to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
	"github.com/couchcryptid/srtm-peaks/internal/observability"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per peak marker.
type Writer struct {
	writer  messageWriter
	source  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for topic. source is attached to every
// message as a header, typically the SRTM tile source URL.
func NewWriter(brokers []string, topic, source string, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, source: source, logger: logger, metrics: metrics}
}

// Publish serializes markers and writes them in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, markers []domain.PeakMarker) error {
	if len(markers) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(markers))
	for i := range markers {
		msg, err := serializeToMessage(markers[i], w.source)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish markers: %w", err)
	}
	w.metrics.MarkersPublished.Add(float64(len(msgs)))
	w.logger.Info("published peak markers", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// markerKey identifies a marker by its coordinates so republished runs land
// on the same partition.
func markerKey(m domain.PeakMarker) string {
	return strconv.FormatFloat(m.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(m.Longitude, 'f', -1, 64)
}

func serializeToMessage(m domain.PeakMarker, source string) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize peak marker: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(markerKey(m)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "label", Value: []byte(m.Label)},
			{Key: "source", Value: []byte(source)},
		},
	}, nil
}
