package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/district-areas-etl/internal/config"
	"github.com/couchcryptid/district-areas-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes updated districts to a Kafka topic, one message each.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, clock: clock, logger: logger}
}

// PublishDistricts serializes all districts and sends them in a single
// WriteMessages call.
func (w *Writer) PublishDistricts(ctx context.Context, districts []domain.District) error {
	if len(districts) == 0 {
		return nil
	}
	processedAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(districts))
	for i := range districts {
		msg, err := serializeToMessage(districts[i], processedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish districts: %w", err)
	}
	w.logger.Debug("districts published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage turns a district into a message keyed by its
// normalized name, so repeated runs land on the same partition.
func serializeToMessage(d domain.District, processedAt time.Time) (kafkago.Message, error) {
	if d.Properties == nil {
		return kafkago.Message{}, fmt.Errorf("serialize district %q: no properties", d.Key)
	}
	data, err := d.Properties.MarshalJSON()
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize district %q: %w", d.Key, err)
	}
	return kafkago.Message{
		Key:   []byte(d.Key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "province", Value: []byte(d.Record.Province)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
