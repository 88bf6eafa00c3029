package sshutil

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/redpencil/rpio/internal/errors"
)

// Forward listens on localAddr and relays every accepted connection to
// remoteAddr as seen from the SSH server, like `ssh -L`. ready is called with
// the bound listener address once accepting. Forward blocks until ctx is
// cancelled or the listener fails. Cancelling ctx also closes every open
// relay, so connected clients can't hold the tunnel up.
func (c *Client) Forward(ctx context.Context, localAddr, remoteAddr string, ready func(net.Addr)) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", localAddr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't listen on %s", localAddr),
			"Pick another local port with --host-port.")
	}

	// Relays are waited for after the closer below has run.
	var wg sync.WaitGroup
	defer wg.Wait()

	conns := &connSet{open: make(map[net.Conn]struct{})}
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}
		listener.Close()
		conns.closeAll()
	}()

	if ready != nil {
		ready(listener.Addr())
	}

	for {
		local, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.WrapWithCode(err, errors.ErrSSH, "Tunnel listener failed", "")
		}
		if !conns.add(local) {
			return nil
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			c.relay(conns, local, remoteAddr)
		}()
	}
}

func (c *Client) relay(conns *connSet, local net.Conn, remoteAddr string) {
	defer conns.remove(local)

	remote, err := c.Client.Dial("tcp", remoteAddr)
	if err != nil {
		emitWarning(fmt.Sprintf("tunnel to %s failed: %v", remoteAddr, err))
		return
	}
	if !conns.add(remote) {
		return
	}
	defer conns.remove(remote)

	done := make(chan struct{}, 2)
	pipe := func(dst io.Writer, src io.Reader) {
		io.Copy(dst, src) //nolint:errcheck // either side closing ends the relay
		done <- struct{}{}
	}
	go pipe(remote, local)
	go pipe(local, remote)
	<-done
}

// connSet holds the live ends of every relay. Once closed it refuses new
// connections, closing them instead.
type connSet struct {
	mu     sync.Mutex
	open   map[net.Conn]struct{}
	closed bool
}

func (s *connSet) add(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		conn.Close()
		return false
	}
	s.open[conn] = struct{}{}
	return true
}

func (s *connSet) remove(conn net.Conn) {
	s.mu.Lock()
	delete(s.open, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *connSet) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.open {
		conn.Close()
	}
	s.open = nil
}
