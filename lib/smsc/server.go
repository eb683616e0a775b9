package smsc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-smsc/emi-smsc/lib/msglog"
	"github.com/go-smsc/emi-smsc/lib/session"
	"github.com/go-smsc/emi-smsc/lib/util"
)

// Server is the SMSC simulator server that accepts client connections
// and runs a session for each.
type Server struct {
	config   *Config
	listener net.Listener
	engine   *session.Engine
	registry session.Registry
	log      *logrus.Entry

	mu          sync.Mutex
	connections map[*Connection]struct{}
	closed      atomic.Bool
	wg          sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	// done is closed when the server shuts down.
	done chan struct{}
}

// NewServer creates a new server with the given configuration.
func NewServer(config *Config, engine *session.Engine, registry session.Registry) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:      config,
		engine:      engine,
		registry:    registry,
		log:         engine.Logger().WithField("component", "server"),
		connections: make(map[*Connection]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}, nil
}

// Registry returns the session registry.
func (s *Server) Registry() session.Registry {
	return s.registry
}

// Engine returns the session engine.
func (s *Server) Engine() *session.Engine {
	return s.engine
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// ListenAndServe starts listening on the configured address and serves clients.
// This method blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return err
	}

	if s.config.TLSConfig != nil {
		listener = tls.NewListener(listener, s.config.TLSConfig)
	}

	return s.Serve(listener)
}

// Serve accepts connections on the listener and handles them.
// This method blocks until the server is closed.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.WithField("addr", listener.Addr().String()).Info("accepting EMI/UCP connections")
	s.engine.System(fmt.Sprintf("listening on %s", listener.Addr()))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return err
		}

		if !s.canAccept() {
			s.log.WithField("remote", conn.RemoteAddr().String()).Warn("connection limit reached")
			conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// canAccept returns true if the server can accept a new connection.
func (s *Server) canAccept() bool {
	if s.config.Limits.MaxConnections == 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections) < s.config.Limits.MaxConnections
}

// handleConnection runs one client connection until either side closes it.
func (s *Server) handleConnection(conn net.Conn) {
	c := NewConnection(conn)

	s.mu.Lock()
	s.connections[c] = struct{}{}
	s.mu.Unlock()

	sess := session.New(s.engine, c, c.RemoteAddr())
	if err := s.registry.Register(sess); err != nil {
		s.log.WithError(util.NewConnectionError(c.RemoteAddr(), "register", err)).Error("session registration failed")
		s.untrack(c)
		return
	}
	c.BindSession(sess.ID())
	s.record(sess, msglog.KindConnect, "client connected")

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := sess.Run(s.ctx); err != nil {
			s.log.WithError(err).WithField("session", sess.ID()).Warn("session ended")
		}
		c.Close()
	}()

	s.readLoop(c, sess)

	sess.Close()
	<-runDone
	_ = s.registry.Unregister(sess.ID())
	s.record(sess, msglog.KindDisconnect, "client disconnected")
	s.untrack(c)
}

// readLoop feeds received bytes to the session until the connection fails.
func (s *Server) readLoop(c *Connection, sess *session.Session) {
	buf := make([]byte, s.config.Limits.ReadBufferSize)
	for {
		if idle := s.config.Timeouts.Idle; idle > 0 {
			if err := c.SetReadDeadline(time.Now().Add(idle)); err != nil {
				return
			}
		}

		n, err := c.Read(buf)
		if n > 0 {
			// Overflow is counted and logged by the session.
			if ferr := sess.Feed(buf[:n]); ferr != nil && !sess.Running() {
				return
			}
		}
		if err != nil {
			if isTimeoutError(err) {
				s.log.WithField("remote", c.RemoteAddr()).Info("closing idle connection")
			}
			return
		}
	}
}

func (s *Server) untrack(c *Connection) {
	s.mu.Lock()
	delete(s.connections, c)
	s.mu.Unlock()
	c.Close()
}

func (s *Server) record(sess *session.Session, kind msglog.Kind, title string) {
	s.engine.Record(msglog.Entry{
		SessionID: sess.ID(),
		Remote:    sess.Remote(),
		Kind:      kind,
		Title:     title,
	})
}

// isTimeoutError checks if an error is a network timeout.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// Close gracefully shuts down the server and waits for connections to end.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)
	s.cancel()

	s.mu.Lock()
	listener := s.listener
	connections := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		connections = append(connections, c)
	}
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	for _, c := range connections {
		c.Close()
	}

	s.wg.Wait()
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

// Addr returns the listener address, or empty string if not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Done returns a channel that is closed when the server shuts down.
func (s *Server) Done() <-chan struct{} {
	return s.done
}
