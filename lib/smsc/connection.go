package smsc

import (
	"net"
	"sync"
	"time"
)

// ConnectionState represents the current state of a client connection.
type ConnectionState int

const (
	// StateNew indicates an accepted connection without a session yet.
	StateNew ConnectionState = iota

	// StateSessionBound indicates a session has been created and bound.
	StateSessionBound

	// StateClosed indicates the connection has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s ConnectionState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSessionBound:
		return "SESSION_BOUND"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Connection represents a single client connection.
// It tracks activity and the bound session and counts traffic.
// All fields are protected by a mutex for concurrent access.
type Connection struct {
	mu sync.RWMutex

	// conn is the underlying network connection.
	conn net.Conn

	// state is the current connection state.
	state ConnectionState

	// sessionID is the bound session ID (empty if no session bound).
	sessionID string

	// createdAt is when the connection was established.
	createdAt time.Time

	// lastActivity is the time of the last read.
	lastActivity time.Time

	// remoteAddr is the client's remote address (cached for logging after close).
	remoteAddr string

	bytesIn  int64
	bytesOut int64
}

// NewConnection creates a new Connection for the given net.Conn.
func NewConnection(conn net.Conn) *Connection {
	now := time.Now()
	return &Connection{
		conn:         conn,
		state:        StateNew,
		createdAt:    now,
		lastActivity: now,
		remoteAddr:   conn.RemoteAddr().String(),
	}
}

// Conn returns the underlying net.Conn.
func (c *Connection) Conn() net.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SessionID returns the bound session ID.
func (c *Connection) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// BindSession binds a session to this connection.
func (c *Connection) BindSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
	c.state = StateSessionBound
}

// CreatedAt returns when the connection was established.
func (c *Connection) CreatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.createdAt
}

// LastActivity returns the time of the last activity.
func (c *Connection) LastActivity() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActivity
}

// RemoteAddr returns the client's remote address.
func (c *Connection) RemoteAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remoteAddr
}

// IdleDuration returns how long the connection has been idle.
func (c *Connection) IdleDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.lastActivity)
}

// Age returns how long the connection has been open.
func (c *Connection) Age() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.createdAt)
}

// Traffic returns the bytes read and written.
func (c *Connection) Traffic() (in, out int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytesIn, c.bytesOut
}

// Read reads from the connection and records activity.
func (c *Connection) Read(p []byte) (int, error) {
	n, err := c.Conn().Read(p)
	if n > 0 {
		c.mu.Lock()
		c.bytesIn += int64(n)
		c.lastActivity = time.Now()
		c.mu.Unlock()
	}
	return n, err
}

// Write writes data to the underlying connection.
func (c *Connection) Write(data []byte) (int, error) {
	n, err := c.Conn().Write(data)
	c.mu.Lock()
	c.bytesOut += int64(n)
	c.mu.Unlock()
	return n, err
}

// SetReadDeadline sets the read deadline on the underlying connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn().SetReadDeadline(t)
}

// Close closes the underlying connection and updates state.
// It is safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed
	return c.conn.Close()
}

// IsClosed returns true if the connection is closed.
func (c *Connection) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == StateClosed
}
