package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/anmol-28/livedatatest/internal/metrics"
	"github.com/anmol-28/livedatatest/internal/model"
)

// Fetcher yields one normalized position event per call.
type Fetcher interface {
	FetchPosition(ctx context.Context) (model.PositionEvent, error)
}

// Publisher appends one payload to the durable log.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Loop runs the fetch-normalize-publish cycle at a fixed cadence with at most
// one cycle in flight at a time. The busy flag is owned exclusively by this
// instance; overlapping ticks are skipped, never queued.
type Loop struct {
	fetcher   Fetcher
	publisher Publisher
	interval  time.Duration
	clock     clockwork.Clock
	log       *logrus.Logger
	busy      atomic.Bool
}

func NewLoop(fetcher Fetcher, publisher Publisher, interval time.Duration, clock clockwork.Clock, logger *logrus.Logger) *Loop {
	return &Loop{
		fetcher:   fetcher,
		publisher: publisher,
		interval:  interval,
		clock:     clock,
		log:       logger,
	}
}

// Tick runs one cycle. If a prior Tick has not completed it returns
// immediately without contacting upstream. Fetch failures are recovered
// locally: one log line, zero publishes, nil return. A publish failure means
// the log is unavailable and is returned to the caller, which is expected to
// terminate. The busy flag is cleared on every exit path.
func (l *Loop) Tick(ctx context.Context) error {
	if !l.busy.CompareAndSwap(false, true) {
		metrics.IngestTicks.WithLabelValues(metrics.OutcomeSkippedBusy).Inc()
		l.log.Debug("tick skipped: previous cycle still in flight")
		return nil
	}
	defer l.busy.Store(false)

	event, err := l.fetcher.FetchPosition(ctx)
	if err != nil {
		outcome := metrics.OutcomeUpstreamError
		if errors.Is(err, model.ErrMalformed) {
			outcome = metrics.OutcomeMalformed
		}
		metrics.IngestTicks.WithLabelValues(outcome).Inc()
		l.log.WithError(err).Warn("fetch failed, retrying next tick")
		return nil
	}

	payload, err := event.Encode()
	if err != nil {
		metrics.IngestTicks.WithLabelValues(metrics.OutcomeMalformed).Inc()
		l.log.WithError(err).Warn("encode failed, retrying next tick")
		return nil
	}

	if err := l.publisher.Publish(ctx, payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	metrics.IngestTicks.WithLabelValues(metrics.OutcomePublished).Inc()
	l.log.WithFields(logrus.Fields{
		"timestamp": event.Timestamp,
		"latitude":  event.Latitude,
		"longitude": event.Longitude,
	}).Info("published position event")
	return nil
}

// Run ticks once immediately, then on every interval until ctx is cancelled.
// Each tick runs on its own goroutine so a slow cycle never delays the
// schedule; the busy flag drops the overlap instead. On cancellation an
// in-flight tick is not force-aborted: the fetch and publish carry their own
// bounded timeouts, and Run waits for the cycle to finish or fail naturally
// before returning. Returns the first publish error, which is fatal for the
// loop.
func (l *Loop) Run(ctx context.Context) error {
	fatal := make(chan error, 1)
	tickCtx := context.WithoutCancel(ctx)

	var inflight sync.WaitGroup
	launch := func() {
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			if err := l.Tick(tickCtx); err != nil {
				select {
				case fatal <- err:
				default:
				}
			}
		}()
	}

	launch()

	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			inflight.Wait()
			return nil
		case err := <-fatal:
			return err
		case <-ticker.Chan():
			launch()
		}
	}
}
