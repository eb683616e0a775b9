package stats

import (
	"testing"
	"time"
)

func TestStats_Inc(t *testing.T) {
	s := New()
	s.Inc(FramesIn)
	s.Inc(FramesIn)
	s.Inc("custom")

	if got := s.Count(FramesIn); got != 2 {
		t.Errorf("Count(FramesIn) = %d, want 2", got)
	}
	if got := s.Count("custom"); got != 1 {
		t.Errorf("Count(custom) = %d, want 1", got)
	}
	if got := s.Count(FramesOut); got != 0 {
		t.Errorf("Count(FramesOut) = %d, want 0", got)
	}
}

func TestStats_Snapshot(t *testing.T) {
	s := New()
	s.Inc(Pings)
	s.ObserveReaction(2 * time.Millisecond)

	snap := s.Snapshot()
	if snap[Pings] != 1 {
		t.Errorf("snapshot[%s] = %d, want 1", Pings, snap[Pings])
	}
	if _, ok := snap[SessionsOpened]; !ok {
		t.Errorf("snapshot missing %s", SessionsOpened)
	}
	if snap[ReactionTime+"_count"] != 1 {
		t.Errorf("reaction count = %d, want 1", snap[ReactionTime+"_count"])
	}
	if snap[ReactionTime+"_mean_us"] != 2000 {
		t.Errorf("reaction mean = %d, want 2000", snap[ReactionTime+"_mean_us"])
	}
}

func TestStats_Nil(t *testing.T) {
	var s *Stats
	s.Inc(FramesIn)
	s.ObserveReaction(time.Second)
	if s.Count(FramesIn) != 0 {
		t.Error("nil Stats should count nothing")
	}
}
