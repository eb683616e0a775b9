// Package stats keeps the simulator's traffic counters in a go-metrics
// registry.
package stats

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// Counter names.
const (
	FramesIn         = "frames_in"
	FramesOut        = "frames_out"
	ParseErrors      = "parse_errors"
	Overflows        = "overflows"
	SessionsOpened   = "sessions_opened"
	SessionsClosed   = "sessions_closed"
	Authenticated    = "authenticated"
	AuthFailures     = "auth_failures"
	SubmitsAcked     = "submits_acked"
	SubmitsNacked    = "submits_nacked"
	Pings            = "pings"
	Originated       = "originated"
	ReportsScheduled = "reports_scheduled"
)

// Timer names.
const (
	ReactionTime = "reaction_time"
)

var counterNames = []string{
	FramesIn, FramesOut, ParseErrors, Overflows,
	SessionsOpened, SessionsClosed, Authenticated, AuthFailures,
	SubmitsAcked, SubmitsNacked, Pings, Originated, ReportsScheduled,
}

// Stats wraps a metrics registry.
type Stats struct {
	registry metrics.Registry
	counters map[string]metrics.Counter
	reaction metrics.Timer
}

// New creates Stats backed by a fresh registry.
func New() *Stats {
	r := metrics.NewRegistry()
	s := &Stats{
		registry: r,
		counters: make(map[string]metrics.Counter, len(counterNames)),
		reaction: metrics.GetOrRegisterTimer(ReactionTime, r),
	}
	for _, name := range counterNames {
		s.counters[name] = metrics.GetOrRegisterCounter(name, r)
	}
	return s
}

// Inc increments a counter. Unknown names are registered on first use.
func (s *Stats) Inc(name string) {
	if s == nil {
		return
	}
	c, ok := s.counters[name]
	if !ok {
		c = metrics.GetOrRegisterCounter(name, s.registry)
	}
	c.Inc(1)
}

// Count returns a counter's value.
func (s *Stats) Count(name string) int64 {
	if s == nil {
		return 0
	}
	if c, ok := s.counters[name]; ok {
		return c.Count()
	}
	return metrics.GetOrRegisterCounter(name, s.registry).Count()
}

// ObserveReaction records how long a received frame took to answer.
func (s *Stats) ObserveReaction(d time.Duration) {
	if s == nil {
		return
	}
	s.reaction.Update(d)
}

// Registry exposes the underlying registry, e.g. for metrics.Log.
func (s *Stats) Registry() metrics.Registry {
	return s.registry
}

// Snapshot returns every counter plus reaction time count and mean
// (microseconds).
func (s *Stats) Snapshot() map[string]int64 {
	if s == nil {
		return map[string]int64{}
	}
	out := make(map[string]int64, len(s.counters)+2)
	s.registry.Each(func(name string, m interface{}) {
		if c, ok := m.(metrics.Counter); ok {
			out[name] = c.Count()
		}
	})
	snap := s.reaction.Snapshot()
	out[ReactionTime+"_count"] = snap.Count()
	out[ReactionTime+"_mean_us"] = int64(snap.Mean() / float64(time.Microsecond))
	return out
}
