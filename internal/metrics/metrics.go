package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tick outcomes.
const (
	OutcomePublished     = "published"
	OutcomeSkippedBusy   = "skipped_busy"
	OutcomeUpstreamError = "upstream_error"
	OutcomeMalformed     = "malformed"
)

var (
	// IngestTicks counts ingest ticks by outcome.
	IngestTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "issfeed_ingest_ticks_total",
		Help: "Ingest ticks by outcome.",
	}, []string{"outcome"})

	// EventsBroadcast counts events fanned out to viewers.
	EventsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issfeed_events_broadcast_total",
		Help: "Events fanned out to connected viewers.",
	})

	// BroadcastSendFailures counts per-connection send failures.
	BroadcastSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issfeed_broadcast_send_failures_total",
		Help: "Viewer connections dropped during a broadcast.",
	})

	// ConnectedViewers tracks currently open viewer connections.
	ConnectedViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "issfeed_connected_viewers",
		Help: "Currently connected viewer sessions.",
	})
)
