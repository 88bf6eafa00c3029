// Package testing provides a scripted Connector backed by sshutil mock clients.
package testing

import (
	"fmt"
	"sync"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/pkg/sshutil"
	sshtesting "github.com/redpencil/rpio/pkg/sshutil/testing"
)

// FakeConnector hands out mock clients by host name. Hosts without a client
// fail to connect, like an unreachable machine.
type FakeConnector struct {
	mu       sync.Mutex
	clients  map[string]sshutil.SSHClient
	fail     map[string]error
	dialed   []string
	released []string
}

// NewFakeConnector creates a connector with no reachable hosts.
func NewFakeConnector() *FakeConnector {
	return &FakeConnector{
		clients: make(map[string]sshutil.SSHClient),
		fail:    make(map[string]error),
	}
}

// AddHost registers a reachable host and returns its mock client.
func (f *FakeConnector) AddHost(name string) *sshtesting.MockClient {
	f.mu.Lock()
	defer f.mu.Unlock()

	client := sshtesting.NewMockClient(name)
	f.clients[name] = client
	return client
}

// SetClient registers a reachable host served by client. Use it for
// clients that do more than Exec, like interactive shells.
func (f *FakeConnector) SetClient(name string, client sshutil.SSHClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[name] = client
}

// FailHost makes Connect return err for the host.
func (f *FakeConnector) FailHost(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = err
}

// Connect returns the registered mock client for the host.
func (f *FakeConnector) Connect(hostName string) (sshutil.SSHClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dialed = append(f.dialed, hostName)
	if err, ok := f.fail[hostName]; ok {
		return nil, err
	}
	client, ok := f.clients[hostName]
	if !ok {
		return nil, errors.WrapWithCode(fmt.Errorf("dial tcp: lookup %s: no such host", hostName),
			errors.ErrSSH, fmt.Sprintf("Can't reach '%s'", hostName), "")
	}
	return client, nil
}

// Release records the host. Registered clients stay open so tests can keep
// inspecting them.
func (f *FakeConnector) Release(hostName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, hostName)
}

// Released returns every host name passed to Release, in order.
func (f *FakeConnector) Released() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}

// Dialed returns every host name passed to Connect, in order.
func (f *FakeConnector) Dialed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dialed...)
}
