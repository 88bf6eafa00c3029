// Package host manages SSH connections to fleet hosts for one invocation:
// dialing through the operator's SSH configuration, caching live clients,
// and categorising connection failures.
package host

import (
	"time"

	"github.com/redpencil/rpio/pkg/sshutil"
)

// DefaultDialTimeout bounds the TCP connect and SSH handshake to a host.
const DefaultDialTimeout = 10 * time.Second

// Connection is an established SSH connection to a host.
type Connection struct {
	Alias   string            // The host name as declared in the SSH config
	Client  sshutil.SSHClient // The active SSH client
	Latency time.Duration     // Dial plus handshake time
}

// Close closes the SSH connection.
func (c *Connection) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// HasClient returns true if the connection has an active SSH client.
func HasClient(conn *Connection) bool {
	return conn != nil && conn.Client != nil
}
