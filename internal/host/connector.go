package host

import (
	"time"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/pkg/sshutil"
)

// Connector hands out SSH clients for host names. Release closes the
// client held for a host; the next Connect dials again.
type Connector interface {
	Connect(hostName string) (sshutil.SSHClient, error)
	Release(hostName string)
}

// DialFunc opens a new SSH connection to a host.
type DialFunc func(hostName string, timeout time.Duration) (sshutil.SSHClient, error)

// ConnectionEventType categorizes connection events.
type ConnectionEventType int

const (
	// EventTrying indicates a connection attempt is starting.
	EventTrying ConnectionEventType = iota
	// EventFailed indicates a connection attempt failed.
	EventFailed
	// EventConnected indicates a successful connection.
	EventConnected
	// EventCacheHit indicates a cached connection was reused.
	EventCacheHit
)

// String returns a human-readable description of the event type.
func (t ConnectionEventType) String() string {
	switch t {
	case EventTrying:
		return "trying"
	case EventFailed:
		return "failed"
	case EventConnected:
		return "connected"
	case EventCacheHit:
		return "cache_hit"
	default:
		return "unknown"
	}
}

// ConnectionEvent represents an event during connection attempts.
type ConnectionEvent struct {
	Type    ConnectionEventType
	Host    string
	Error   error
	Latency time.Duration
}

// EventHandler is a callback for connection events.
type EventHandler func(event ConnectionEvent)

// SSHConnector dials hosts through pkg/sshutil and keeps live clients in a
// ConnectionCache for the rest of the invocation.
type SSHConnector struct {
	cache   *ConnectionCache
	timeout time.Duration
	dial    DialFunc
	onEvent EventHandler
}

// NewConnector creates a connector that dials with the given timeout.
// A zero timeout uses DefaultDialTimeout.
func NewConnector(timeout time.Duration) *SSHConnector {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &SSHConnector{
		cache:   NewConnectionCache(),
		timeout: timeout,
		dial: func(hostName string, timeout time.Duration) (sshutil.SSHClient, error) {
			return sshutil.Dial(hostName, timeout)
		},
	}
}

// WithDialer replaces the dial function. Used by tests.
func (c *SSHConnector) WithDialer(dial DialFunc) *SSHConnector {
	c.dial = dial
	return c
}

// SetEventHandler sets a callback for connection events.
func (c *SSHConnector) SetEventHandler(handler EventHandler) {
	c.onEvent = handler
}

func (c *SSHConnector) emit(event ConnectionEvent) {
	if c.onEvent != nil {
		c.onEvent(event)
	}
}

// Connect returns a live client for the host, dialing if none is cached.
// Failures are ErrSSH coded; Categorize tells them apart.
func (c *SSHConnector) Connect(hostName string) (sshutil.SSHClient, error) {
	if conn := c.cache.Get(hostName); conn != nil {
		c.emit(ConnectionEvent{Type: EventCacheHit, Host: hostName})
		return conn.Client, nil
	}

	c.emit(ConnectionEvent{Type: EventTrying, Host: hostName})

	start := time.Now()
	client, err := c.dial(hostName, c.timeout)
	if err != nil {
		c.emit(ConnectionEvent{Type: EventFailed, Host: hostName, Error: err})
		if errors.IsCode(err, errors.ErrSSH) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't connect to "+hostName,
			"Check that you can reach it with: ssh "+hostName)
	}

	conn := &Connection{Alias: hostName, Client: client, Latency: time.Since(start)}
	c.cache.Set(hostName, conn)
	c.emit(ConnectionEvent{Type: EventConnected, Host: hostName, Latency: conn.Latency})
	return client, nil
}

// Release closes and forgets the cached connection to hostName, if any.
func (c *SSHConnector) Release(hostName string) {
	c.cache.Remove(hostName)
}

// Close closes every connection opened by this connector.
func (c *SSHConnector) Close() {
	c.cache.CloseAll()
}

// Compile-time check that SSHConnector satisfies Connector.
var _ Connector = (*SSHConnector)(nil)
