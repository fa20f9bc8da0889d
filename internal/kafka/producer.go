package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Writer is the explicitly owned publish handle onto the position topic. It
// is constructed once per process and closed on shutdown.
type Writer struct {
	writer *kafka.Writer
}

func NewWriter(brokers []string, topic string) *Writer {
	return &Writer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish appends one payload to the topic. No key: the topic has a single
// partition and events carry no identity.
func (w *Writer) Publish(ctx context.Context, payload []byte) error {
	return w.writer.WriteMessages(ctx, kafka.Message{Value: payload})
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
