package msglog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Multi fans an entry out to every sink.
type Multi []Sink

// Record implements Sink.
func (m Multi) Record(e Entry) {
	for _, s := range m {
		s.Record(e)
	}
}

// hiddenKinds are suppressed by a Filter with HidePingAck set.
var hiddenKinds = map[Direction]map[Kind]bool{
	DirInbound:  {KindPing: true, KindMOAck: true, KindSRAck: true},
	DirOutbound: {KindMTAck: true, KindPingAck: true},
}

// Hidden reports whether the entry is keep-alive or acknowledgement noise:
// inbound pings and MO/SR acknowledgements, outbound MT and ping
// acknowledgements. NACKs are never hidden.
func Hidden(e Entry) bool {
	return hiddenKinds[e.Direction][e.Kind]
}

// Filter drops hidden entries before passing the rest to Next.
type Filter struct {
	Next        Sink
	HidePingAck bool
}

// Record implements Sink.
func (f *Filter) Record(e Entry) {
	if f.HidePingAck && Hidden(e) {
		return
	}
	f.Next.Record(e)
}

// LogrusSink writes entries as structured log lines.
type LogrusSink struct {
	log *logrus.Entry
}

// NewLogrusSink creates a sink logging at info level through log.
func NewLogrusSink(log *logrus.Logger) *LogrusSink {
	return &LogrusSink{log: log.WithField("component", "msglog")}
}

// Record implements Sink.
func (s *LogrusSink) Record(e Entry) {
	fields := logrus.Fields{"kind": string(e.Kind)}
	if e.SessionID != "" {
		fields["session"] = e.SessionID
	}
	if e.Remote != "" {
		fields["remote"] = e.Remote
	}
	if e.Direction != DirNone {
		fields["dir"] = string(e.Direction)
	}
	entry := s.log.WithFields(fields).WithTime(e.Time)
	if e.Raw != "" && s.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		entry = entry.WithField("frame", Printable(e.Raw))
	}
	entry.Info(e.Title)
}

// Recorder keeps the most recent entries in memory.
type Recorder struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// DefaultRecorderSize is the number of entries a Recorder keeps by default.
const DefaultRecorderSize = 1000

// NewRecorder creates a Recorder holding up to size entries.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultRecorderSize
	}
	return &Recorder{entries: make([]Entry, size)}
}

// Record implements Sink.
func (r *Recorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Last returns up to n entries, oldest first. n <= 0 returns everything kept.
func (r *Recorder) Last(n int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.next
	if r.full {
		count = len(r.entries)
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]Entry, 0, n)
	start := (r.next - n + len(r.entries)) % len(r.entries)
	for i := 0; i < n; i++ {
		out = append(out, r.entries[(start+i)%len(r.entries)])
	}
	return out
}

// Len returns the number of entries kept.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.entries)
	}
	return r.next
}
