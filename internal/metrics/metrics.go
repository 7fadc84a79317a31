// Package metrics exports generation progress to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
)

const namespace = "hexcrawl"

// Generation holds the collectors fed by generator events.
type Generation struct {
	rooms        prometheus.Counter
	hallways     prometheus.Counter
	hallwayCells prometheus.Counter
	skipped      prometheus.Counter
	ring         prometheus.Gauge
	stepDuration prometheus.Histogram
}

// NewGeneration creates the collectors and registers them with reg. A nil
// reg uses the default registerer.
func NewGeneration(reg prometheus.Registerer) *Generation {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	g := &Generation{
		rooms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_spawned_total",
			Help:      "Rooms carved since start.",
		}),
		hallways: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hallways_carved_total",
			Help:      "Hallways connecting two rooms.",
		}),
		hallwayCells: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hallway_cells_total",
			Help:      "Grid cells claimed by hallways.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_skipped_total",
			Help:      "Room pairs left unconnected because no path was found.",
		}),
		ring: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ring_current",
			Help:      "Last ring generated.",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Time spent generating one ring.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	g.ring.Set(-1)

	reg.MustRegister(g.rooms, g.hallways, g.hallwayCells, g.skipped, g.ring, g.stepDuration)
	return g
}

// Listener returns a dungeon.Listener that records each event.
func (g *Generation) Listener() dungeon.Listener {
	return g.observe
}

func (g *Generation) observe(ev dungeon.Event) {
	switch ev.Kind {
	case dungeon.EventRoomSpawned:
		g.rooms.Inc()
	case dungeon.EventHallwaySpawned:
		g.hallways.Inc()
		if ev.Hallway != nil {
			g.hallwayCells.Add(float64(len(ev.Hallway.Coords)))
		}
	case dungeon.EventConnectionSkipped:
		g.skipped.Inc()
	case dungeon.EventStepCompleted:
		g.ring.Set(float64(ev.Ring))
		g.stepDuration.Observe(ev.Duration.Seconds())
	}
}
