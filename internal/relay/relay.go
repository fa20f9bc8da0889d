package relay

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/anmol-28/livedatatest/internal/model"
)

// messageReader is the consume side of the log. *kafka.Reader satisfies it.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// broadcaster fans a wire payload out to all open viewer connections.
type broadcaster interface {
	Broadcast(data []byte)
}

// Relay is the blocking consume loop: one decoded event per iteration,
// re-encoded to the wire shape and handed to the hub. A single Relay per
// subscription preserves the single-active-handler contract.
type Relay struct {
	reader messageReader
	hub    broadcaster
	log    *logrus.Logger
}

func New(reader messageReader, hub broadcaster, logger *logrus.Logger) *Relay {
	return &Relay{
		reader: reader,
		hub:    hub,
		log:    logger,
	}
}

// Run consumes until ctx is cancelled (nil return). A read failure while the
// context is still live means the log is unavailable, which is fatal for this
// component: the error is returned and the process is expected to exit rather
// than run in a silently data-losing mode. Undecodable messages are logged
// and skipped.
func (r *Relay) Run(ctx context.Context) error {
	for {
		m, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("log consume: %w", err)
		}

		event, err := model.DecodeEvent(m.Value)
		if err != nil {
			r.log.WithError(err).Warn("skipping undecodable log message")
			continue
		}

		data, err := event.Encode()
		if err != nil {
			r.log.WithError(err).Warn("skipping unencodable event")
			continue
		}

		r.log.WithFields(logrus.Fields{
			"timestamp": event.Timestamp,
			"latitude":  event.Latitude,
			"longitude": event.Longitude,
		}).Debug("relaying position event")
		r.hub.Broadcast(data)
	}
}
