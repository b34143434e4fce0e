// Package metrics defines the Prometheus collectors served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapturesTotal counts recordings that produced a usable signal.
	CapturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rf433_captures_total",
		Help: "Recordings that reconstructed to a usable signal.",
	})

	// CapturesEmptyTotal counts recordings that ended with no signal.
	CapturesEmptyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rf433_captures_empty_total",
		Help: "Recordings that ended with no signal detected.",
	})

	// ReplaysTotal counts completed replays.
	ReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rf433_replays_total",
		Help: "Completed signal replays.",
	})

	// SavesTotal counts successful slot saves.
	SavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rf433_slot_saves_total",
		Help: "Frames persisted to a slot.",
	})

	// EdgesDroppedTotal counts edges discarded because the capture buffer
	// was full.
	EdgesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rf433_edges_dropped_total",
		Help: "Edges discarded because the capture buffer was full.",
	})

	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rf433_lifecycle_state",
		Help: "Recording lifecycle state (1 for the active state).",
	}, []string{"state"})
)

var states = []string{"idle", "recording", "captured", "replaying"}

// SetState marks the active lifecycle state on the state gauge.
func SetState(active string) {
	for _, s := range states {
		v := 0.0
		if s == active {
			v = 1
		}
		stateGauge.WithLabelValues(s).Set(v)
	}
}
