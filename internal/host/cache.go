package host

import (
	"sync"
)

// ConnectionCache holds at most one live connection per host name for the
// rest of the invocation. Listing containers, looking up an address and
// forwarding a port to the same host all reuse one SSH connection.
type ConnectionCache struct {
	mu    sync.Mutex
	conns map[string]*Connection
}

// NewConnectionCache creates an empty cache.
func NewConnectionCache() *ConnectionCache {
	return &ConnectionCache{conns: make(map[string]*Connection)}
}

// Get returns the cached connection for hostName. A connection that no
// longer opens sessions is closed, evicted and reported as missing.
func (c *ConnectionCache) Get(hostName string) *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn := c.conns[hostName]
	if conn == nil {
		return nil
	}
	if !isAlive(conn) {
		conn.Close() //nolint:errcheck // already unusable
		delete(c.conns, hostName)
		return nil
	}
	return conn
}

// Set caches conn for hostName, closing any different connection it
// replaces.
func (c *ConnectionCache) Set(hostName string, conn *Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old := c.conns[hostName]; old != nil && old != conn {
		old.Close() //nolint:errcheck // replaced
	}
	c.conns[hostName] = conn
}

// Remove closes and forgets the connection cached for hostName.
func (c *ConnectionCache) Remove(hostName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conn := c.conns[hostName]; conn != nil {
		conn.Close() //nolint:errcheck // released
		delete(c.conns, hostName)
	}
}

// CloseAll closes and forgets every cached connection.
func (c *ConnectionCache) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, conn := range c.conns {
		conn.Close() //nolint:errcheck // shutting down
		delete(c.conns, name)
	}
}

// Size returns the number of cached connections.
func (c *ConnectionCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}

func isAlive(conn *Connection) bool {
	if !HasClient(conn) {
		return false
	}
	session, err := conn.Client.NewSession()
	if err != nil {
		return false
	}
	session.Close() //nolint:errcheck // probe only
	return true
}
