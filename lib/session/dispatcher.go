package session

import (
	"go.uber.org/atomic"

	"github.com/go-smsc/emi-smsc/lib/msglog"
	"github.com/go-smsc/emi-smsc/lib/protocol"
	"github.com/go-smsc/emi-smsc/lib/stats"
	"github.com/go-smsc/emi-smsc/lib/util"
)

// Dispatcher sends simulator originated traffic to connected clients,
// choosing sessions round-robin.
type Dispatcher struct {
	engine   *Engine
	registry Registry
	next     *atomic.Uint64
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(engine *Engine, registry Registry) *Dispatcher {
	return &Dispatcher{
		engine:   engine,
		registry: registry,
		next:     atomic.NewUint64(0),
	}
}

// Originate queues frame on the next session and returns its ID.
// Returns util.ErrNoActiveSession when no client is connected.
func (d *Dispatcher) Originate(kind msglog.Kind, frame string) (string, error) {
	sessions := d.registry.All()
	if len(sessions) == 0 {
		return "", util.ErrNoActiveSession
	}
	s := sessions[(d.next.Inc()-1)%uint64(len(sessions))]
	if err := s.Send(kind, frame); err != nil {
		return "", err
	}
	d.engine.stats.Inc(stats.Originated)
	return s.ID(), nil
}

// OriginateMO delivers a mobile originated message.
func (d *Dispatcher) OriginateMO(req protocol.MORequest) (string, error) {
	if err := protocol.ValidateAddress(req.Receiver); err != nil {
		return "", err
	}
	if err := protocol.ValidateOriginator(req.Sender); err != nil {
		return "", err
	}
	stamp := d.engine.SCTS(req.Sender, req.Receiver)
	frame := protocol.BuildDeliverMO(d.engine.NextTRN(), req, stamp, d.engine.codec)
	return d.Originate(msglog.KindMO, frame)
}

// OriginateSR delivers a status report. An empty SCTS is issued by the
// sequencer.
func (d *Dispatcher) OriginateSR(req protocol.SRRequest) (string, error) {
	if err := protocol.ValidateAddress(req.AdC); err != nil {
		return "", err
	}
	if err := protocol.ValidateAddress(req.OAdC); err != nil {
		return "", err
	}
	if err := protocol.ValidateDst(req.Dst); err != nil {
		return "", err
	}
	if req.Rsn == "" {
		req.Rsn = d.engine.config.StatusReport.Rsn
	}
	if err := protocol.ValidateRsn(req.Rsn); err != nil {
		return "", err
	}
	if req.SCTS == "" {
		req.SCTS = d.engine.SCTS(req.OAdC, req.AdC)
	} else if _, err := protocol.ParseSCTS(req.SCTS); err != nil {
		return "", err
	}
	frame := protocol.BuildDeliveryNotification(d.engine.NextTRN(), req)
	return d.Originate(msglog.KindSR, frame)
}
