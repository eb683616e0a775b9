package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/go-smsc/emi-smsc/lib/msglog"
	"github.com/go-smsc/emi-smsc/lib/protocol"
	"github.com/go-smsc/emi-smsc/lib/stats"
	"github.com/go-smsc/emi-smsc/lib/util"
)

// Session states.
const (
	StateUnauthenticated = "unauthenticated"
	StateAuthenticated   = "authenticated"
	StateClosed          = "closed"
)

const (
	eventAuthenticate = "authenticate"
	eventClose        = "close"
)

// pollInterval bounds how long a worker sleeps before looking again.
const pollInterval = 100 * time.Millisecond

// Session is one client connection. Bytes handed to Feed are framed,
// parsed and answered by the receiver; replies and originated frames are
// written by the sender; due status reports are released by the scheduler.
type Session struct {
	id        string
	remote    string
	createdAt time.Time

	engine *Engine
	w      io.Writer
	log    *logrus.Entry

	inbound       *protocol.FrameBuffer
	outbound      *protocol.FrameBuffer
	inboundReady  chan struct{}
	outboundReady chan struct{}
	reports       *reportQueue

	state   *fsm.FSM
	running *atomic.Bool
	account *atomic.String

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a running session writing to w.
func New(engine *Engine, w io.Writer, remote string) *Session {
	s := &Session{
		id:            uuid.NewString(),
		remote:        remote,
		createdAt:     engine.Now(),
		engine:        engine,
		w:             w,
		inbound:       protocol.NewFrameBuffer(engine.config.BufferSize),
		outbound:      protocol.NewFrameBuffer(engine.config.BufferSize),
		inboundReady:  make(chan struct{}, 1),
		outboundReady: make(chan struct{}, 1),
		reports:       newReportQueue(),
		running:       atomic.NewBool(true),
		account:       atomic.NewString(""),
	}
	s.log = engine.log.WithFields(logrus.Fields{"session": s.id, "remote": remote})
	s.state = fsm.NewFSM(
		StateUnauthenticated,
		fsm.Events{
			{Name: eventAuthenticate, Src: []string{StateUnauthenticated, StateAuthenticated}, Dst: StateAuthenticated},
			{Name: eventClose, Src: []string{StateUnauthenticated, StateAuthenticated}, Dst: StateClosed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.WithFields(logrus.Fields{"from": e.Src, "to": e.Dst}).Debug("session state changed")
			},
		},
	)
	engine.stats.Inc(stats.SessionsOpened)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Remote returns the client address.
func (s *Session) Remote() string { return s.remote }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current state name.
func (s *Session) State() string { return s.state.Current() }

// Authenticated reports whether a session open succeeded.
func (s *Session) Authenticated() bool { return s.state.Is(StateAuthenticated) }

// Account returns the large account of the last successful session open.
func (s *Session) Account() string { return s.account.Load() }

// Running reports whether the session has not been closed.
func (s *Session) Running() bool { return s.running.Load() }

// PendingReports returns the number of scheduled status reports.
func (s *Session) PendingReports() int { return s.reports.Len() }

// Feed hands received bytes to the session. A chunk that does not fit in
// the inbound buffer is dropped; the first overflow is logged.
func (s *Session) Feed(p []byte) error {
	if !s.running.Load() {
		return util.NewSessionError(s.id, "feed", util.ErrSessionClosed)
	}
	if err := s.inbound.Append(p); err != nil {
		s.engine.stats.Inc(stats.Overflows)
		var overflow *protocol.OverflowError
		if errors.As(err, &overflow) && overflow.First {
			s.log.WithError(err).Warn("inbound buffer full, dropping data")
		}
		return util.NewSessionError(s.id, "feed", err)
	}
	signal(s.inboundReady)
	return nil
}

// Send queues an outbound frame and records it under kind.
func (s *Session) Send(kind msglog.Kind, frame string) error {
	if !s.running.Load() {
		return util.NewSessionError(s.id, "send", util.ErrSessionClosed)
	}
	if err := s.outbound.AppendString(frame); err != nil {
		return util.NewSessionError(s.id, "send", fmt.Errorf("%w: %v", util.ErrQueueFull, err))
	}
	signal(s.outboundReady)
	s.record(msglog.DirOutbound, kind, s.describe(frame), frame)
	return nil
}

// Run starts the workers and blocks until the session closes or ctx is
// done. Shutdown is not an error; a failed write is.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return util.NewSessionError(s.id, "run", util.ErrSessionClosed)
	}
	s.cancel = cancel
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.receive(gctx) })
	g.Go(func() error { return s.send(gctx) })
	g.Go(func() error { return s.schedule(gctx) })

	err := g.Wait()
	s.Close()
	return err
}

// Close stops the session. It is safe to call more than once.
func (s *Session) Close() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.state.Event(context.Background(), eventClose); err != nil {
		s.log.WithError(err).Debug("close transition")
	}

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	s.engine.stats.Inc(stats.SessionsClosed)
	return nil
}

func (s *Session) receive(ctx context.Context) error {
	for {
		for s.running.Load() {
			raw, ok := s.inbound.TryReadFrame()
			if !ok {
				break
			}
			s.handleFrame(ctx, raw)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.inboundReady:
		case <-time.After(pollInterval):
		}
	}
}

func (s *Session) send(ctx context.Context) error {
	for {
		for {
			raw, ok := s.outbound.TryReadFrame()
			if !ok {
				break
			}
			if _, err := io.WriteString(s.w, raw); err != nil {
				return util.NewSessionError(s.id, "write", err)
			}
			s.engine.stats.Inc(stats.FramesOut)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.outboundReady:
		}
	}
}

func (s *Session) schedule(ctx context.Context) error {
	for {
		now := s.engine.Now()
		for _, req := range s.reports.PopDue(now) {
			s.sendReport(req)
		}

		wait := pollInterval
		if due, ok := s.reports.NextDue(); ok {
			if d := due.Sub(now); d < wait {
				wait = d
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// handleFrame reacts to one inbound frame. Unparseable frames are dropped.
func (s *Session) handleFrame(ctx context.Context, raw string) {
	start := time.Now()
	s.engine.stats.Inc(stats.FramesIn)

	op, err := s.engine.parser.Parse(raw)
	if err != nil {
		s.engine.stats.Inc(stats.ParseErrors)
		s.log.WithError(err).WithField("frame", msglog.Printable(raw)).Debug("dropping frame")
		return
	}
	if s.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		s.log.Trace(pretty.Sprint(op))
	}

	s.record(msglog.DirInbound, Classify(op), protocol.Describe(op, s.engine.codec), raw)

	switch o := op.(type) {
	case *protocol.SessionOp:
		s.openSession(ctx, o)
	case *protocol.SubmitMT:
		s.submit(o)
	default:
		return
	}
	s.engine.stats.ObserveReaction(time.Since(start))
}

func (s *Session) openSession(ctx context.Context, op *protocol.SessionOp) {
	trn := trnOf(op.Header)
	if err := s.engine.authenticate(op.OAdC, op.Password); err != nil {
		s.engine.stats.Inc(stats.AuthFailures)
		s.log.WithError(err).Warn("session open rejected")
		s.reply(msglog.KindSessionAck, protocol.BuildSessionNack(trn, protocol.NackAuthFailure, protocol.TextAuthFailure))
		return
	}

	err := s.state.Event(ctx, eventAuthenticate)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		s.log.WithError(err).Debug("authenticate transition")
		return
	}
	s.account.Store(op.OAdC)
	s.engine.stats.Inc(stats.Authenticated)
	s.reply(msglog.KindSessionAck, protocol.BuildSessionAck(trn))
}

func (s *Session) submit(mt *protocol.SubmitMT) {
	cfg := s.engine.config
	trn := trnOf(mt.Header)

	if cfg.RequireSession && !s.Authenticated() {
		err := util.NewSessionError(s.id, "submit", util.ErrAuthRequired)
		s.log.WithError(err).Debug("submit before session open")
		s.engine.stats.Inc(stats.SubmitsNacked)
		s.reply(msglog.KindMTNack, protocol.BuildSubmitNack(trn, util.ToNackCode(err), protocol.TextAuthFailure))
		return
	}

	if mt.AdC == "" {
		s.engine.stats.Inc(stats.Pings)
		s.reply(msglog.KindPingAck, protocol.BuildSubmitNack(trn, protocol.NackAdCInvalid, protocol.TextAdCInvalid))
		return
	}

	switch cfg.MTBehavior {
	case BehaviorNoReply:
		s.log.WithField("adc", mt.AdC).Debug("submit left unanswered")
	case BehaviorNack:
		s.engine.stats.Inc(stats.SubmitsNacked)
		s.reply(msglog.KindMTNack, protocol.BuildSubmitNack(trn, protocol.FormatNackCode(cfg.NackCode), ""))
	default:
		stamp := s.engine.SCTS(mt.OAdC, mt.AdC)
		s.engine.stats.Inc(stats.SubmitsAcked)
		s.reply(msglog.KindMTAck, protocol.BuildSubmitAck(trn, mt.AdC, stamp))
		s.scheduleReport(mt, stamp)
	}
}

func (s *Session) scheduleReport(mt *protocol.SubmitMT, stamp string) {
	sr := s.engine.config.StatusReport
	if !sr.Enabled {
		return
	}
	req, ok := protocol.NotificationFor(mt, stamp, sr.Dst, sr.Rsn)
	if !ok {
		return
	}
	s.reports.Push(s.engine.Now().Add(sr.Delay), req)
	s.engine.stats.Inc(stats.ReportsScheduled)
}

func (s *Session) sendReport(req protocol.SRRequest) {
	frame := protocol.BuildDeliveryNotification(s.engine.NextTRN(), req)
	if err := s.Send(msglog.KindSR, frame); err != nil {
		s.log.WithError(err).Warn("status report dropped")
	}
}

func (s *Session) reply(kind msglog.Kind, frame string) {
	if err := s.Send(kind, frame); err != nil {
		s.log.WithError(err).Warn("reply dropped")
	}
}

func (s *Session) record(dir msglog.Direction, kind msglog.Kind, title, raw string) {
	s.engine.Record(msglog.Entry{
		SessionID: s.id,
		Remote:    s.remote,
		Direction: dir,
		Kind:      kind,
		Title:     title,
		Raw:       raw,
	})
}

func (s *Session) describe(frame string) string {
	op, err := s.engine.parser.Parse(frame)
	if err != nil {
		return msglog.Printable(frame)
	}
	return protocol.Describe(op, s.engine.codec)
}

// Classify maps an operation to its message log kind.
func Classify(op protocol.Operation) msglog.Kind {
	switch o := op.(type) {
	case *protocol.SessionOp:
		return msglog.KindSession
	case *protocol.SubmitMT:
		if o.AdC == "" {
			return msglog.KindPing
		}
		return msglog.KindMT
	case *protocol.DeliverMO:
		return msglog.KindMO
	case *protocol.DeliveryNotification:
		return msglog.KindSR
	case *protocol.Ack:
		return resultKind(o.OT, true)
	case *protocol.Nack:
		return resultKind(o.OT, false)
	}
	return msglog.KindSys
}

func resultKind(ot string, ack bool) msglog.Kind {
	switch ot {
	case protocol.OTSessionManagement:
		return msglog.KindSessionAck
	case protocol.OTSubmitMT:
		if ack {
			return msglog.KindMTAck
		}
		return msglog.KindMTNack
	case protocol.OTDeliverMO:
		if ack {
			return msglog.KindMOAck
		}
		return msglog.KindMONack
	case protocol.OTDeliveryNotification:
		if ack {
			return msglog.KindSRAck
		}
		return msglog.KindSRNack
	}
	return msglog.KindSys
}

func trnOf(h protocol.Header) int {
	n, err := strconv.Atoi(h.TRN)
	if err != nil {
		return 0
	}
	return n
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
