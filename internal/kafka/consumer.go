package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewReader returns a configured kafka.Reader for the position topic. Each
// subscriber group sees the full stream; within the single partition messages
// arrive in publish order. Readers start at the tail; there is no backfill
// for late joiners.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		Topic:           topic,
		GroupID:         groupID,
		MinBytes:        1,
		MaxBytes:        10e6,
		MaxWait:         1 * time.Second,
		StartOffset:     kafka.LastOffset,
		ReadLagInterval: -1,
		CommitInterval:  time.Second,
	})
}
