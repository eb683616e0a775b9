// Package session runs EMI/UCP connections: the per connection pipeline
// that turns inbound frames into replies and delayed status reports, the
// registry of connected clients and the dispatcher that originates MO and
// SR traffic towards them.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/go-smsc/emi-smsc/lib/charset"
	"github.com/go-smsc/emi-smsc/lib/msglog"
	"github.com/go-smsc/emi-smsc/lib/protocol"
	"github.com/go-smsc/emi-smsc/lib/scts"
	"github.com/go-smsc/emi-smsc/lib/stats"
	"github.com/go-smsc/emi-smsc/lib/util"
)

// MTBehavior selects how submitted messages are answered.
type MTBehavior string

const (
	// BehaviorAck acknowledges every submit.
	BehaviorAck MTBehavior = "ack"
	// BehaviorNack rejects every submit with the configured code.
	BehaviorNack MTBehavior = "nack"
	// BehaviorNoReply leaves submits unanswered.
	BehaviorNoReply MTBehavior = "noreply"
)

// ParseMTBehavior parses a behaviour name, case insensitively.
func ParseMTBehavior(s string) (MTBehavior, error) {
	switch b := MTBehavior(strings.ToLower(strings.TrimSpace(s))); b {
	case BehaviorAck, BehaviorNack, BehaviorNoReply:
		return b, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidBehavior, s)
}

// StatusReportConfig controls the UCP53 reports sent after an ACK.
type StatusReportConfig struct {
	Enabled bool
	Delay   time.Duration
	Dst     int
	Rsn     string
}

// Config is the behaviour shared by every session of an engine.
type Config struct {
	MTBehavior     MTBehavior
	NackCode       int
	StatusReport   StatusReportConfig
	RequireSession bool
	LegacyLatin    bool
	BufferSize     int
}

// DefaultConfig returns the simulator defaults.
func DefaultConfig() Config {
	return Config{
		MTBehavior: BehaviorAck,
		NackCode:   99,
		StatusReport: StatusReportConfig{
			Enabled: true,
			Dst:     protocol.DstDelivered,
			Rsn:     "000",
		},
		RequireSession: true,
		BufferSize:     protocol.DefaultBufferSize,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := ParseMTBehavior(string(c.MTBehavior)); err != nil {
		return err
	}
	if c.NackCode < 0 || c.NackCode > 99 {
		return fmt.Errorf("%w: got %d", ErrInvalidNackCode, c.NackCode)
	}
	if c.StatusReport.Delay < 0 {
		return ErrInvalidDelay
	}
	if err := protocol.ValidateDst(c.StatusReport.Dst); err != nil {
		return err
	}
	if err := protocol.ValidateRsn(c.StatusReport.Rsn); err != nil {
		return err
	}
	if c.BufferSize <= 0 {
		return ErrInvalidBufferSize
	}
	return nil
}

// Authenticator checks UCP60 credentials.
type Authenticator interface {
	Authenticate(account, password string) error
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(account, password string) error

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(account, password string) error {
	return f(account, password)
}

// AllowAll accepts any credentials.
var AllowAll Authenticator = AuthenticatorFunc(func(string, string) error { return nil })

// Engine holds what sessions share: configuration, the SCTS sequencer, the
// cyclic TRN counter for originated frames, the text codec, credentials,
// the message log and counters.
type Engine struct {
	config    Config
	sequencer *scts.Sequencer
	trn       *atomic.Uint32
	codec     charset.Codec
	parser    *protocol.Parser
	auth      Authenticator
	sink      msglog.Sink
	stats     *stats.Stats
	log       *logrus.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuthenticator sets the credential check for UCP60.
func WithAuthenticator(a Authenticator) Option {
	return func(e *Engine) { e.auth = a }
}

// WithSink sets the message log sink.
func WithSink(s msglog.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithStats sets the counters.
func WithStats(s *stats.Stats) Option {
	return func(e *Engine) { e.stats = s }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSequencer sets the SCTS sequencer.
func WithSequencer(s *scts.Sequencer) Option {
	return func(e *Engine) { e.sequencer = s }
}

// NewEngine creates an engine. The configuration must be valid.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		config: cfg,
		trn:    atomic.NewUint32(0),
		codec:  charset.Codec{LegacyLatin: cfg.LegacyLatin},
		parser: protocol.NewParser(),
		auth:   AllowAll,
		sink:   msglog.Discard,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sequencer == nil {
		e.sequencer = scts.New(scts.DefaultPruneThreshold)
	}
	if e.stats == nil {
		e.stats = stats.New()
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Codec returns the text codec.
func (e *Engine) Codec() charset.Codec {
	return e.codec
}

// Stats returns the counters.
func (e *Engine) Stats() *stats.Stats {
	return e.stats
}

// Logger returns the logger.
func (e *Engine) Logger() *logrus.Logger {
	return e.log
}

// NextTRN returns the next transaction reference for an originated
// frame, cycling through 00-99.
func (e *Engine) NextTRN() int {
	return int((e.trn.Inc() - 1) % protocol.MaxTRN)
}

// SCTS issues a service centre timestamp for the pair.
func (e *Engine) SCTS(originator, recipient string) string {
	return e.sequencer.Next(originator, recipient, e.now())
}

// Now returns the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Record stamps and forwards an entry to the message log.
func (e *Engine) Record(entry msglog.Entry) {
	if entry.Time.IsZero() {
		entry.Time = e.now()
	}
	e.sink.Record(entry)
}

// System records a system event.
func (e *Engine) System(title string) {
	e.Record(msglog.Entry{Kind: msglog.KindSys, Title: title})
}

// authenticate wraps authenticator failures so callers can match
// util.ErrAuthFailed.
func (e *Engine) authenticate(account, password string) error {
	err := e.auth.Authenticate(account, password)
	if err == nil {
		return nil
	}
	return util.NewSessionError("", "authenticate "+account, fmt.Errorf("%w: %v", util.ErrAuthFailed, err))
}
