// Package scts issues service centre timestamps that never repeat within a
// second for the same originator and recipient pair.
package scts

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/go-smsc/emi-smsc/lib/protocol"
)

// DefaultPruneThreshold is the cache size above which entries already in
// the past are discarded.
const DefaultPruneThreshold = 1000

// capacityFactor bounds the LRU well above the prune threshold so eviction
// only happens when pruning cannot keep up.
const capacityFactor = 16

// Sequencer hands out per pair timestamps. Two calls for the same pair in
// the same wall clock second return distinct seconds.
//
// A single mutex covers lookup, store and pruning.
type Sequencer struct {
	mu        sync.Mutex
	cache     *lru.Cache[string, time.Time]
	threshold int
}

// New creates a Sequencer. A non-positive threshold selects DefaultPruneThreshold.
func New(threshold int) *Sequencer {
	if threshold <= 0 {
		threshold = DefaultPruneThreshold
	}
	cache, err := lru.New[string, time.Time](threshold * capacityFactor)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Sequencer{cache: cache, threshold: threshold}
}

// NextTime returns the timestamp to issue for the pair at now, truncated to
// the second.
func (s *Sequencer) NextTime(originator, recipient string, now time.Time) time.Time {
	now = now.Truncate(time.Second)
	key := originator + recipient

	s.mu.Lock()
	defer s.mu.Unlock()

	next := now
	if last, ok := s.cache.Get(key); ok {
		if candidate := last.Add(time.Second); candidate.After(now) {
			next = candidate
		}
	}
	s.cache.Add(key, next)

	if s.cache.Len() > s.threshold {
		s.prune(now)
	}
	return next
}

// Next returns NextTime formatted as an SCTS field.
func (s *Sequencer) Next(originator, recipient string, now time.Time) string {
	return protocol.FormatSCTS(s.NextTime(originator, recipient, now))
}

// prune drops entries strictly before now. Callers hold s.mu.
func (s *Sequencer) prune(now time.Time) {
	for _, key := range s.cache.Keys() {
		if last, ok := s.cache.Peek(key); ok && last.Before(now) {
			s.cache.Remove(key)
		}
	}
}

// Len returns the number of cached pairs.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
