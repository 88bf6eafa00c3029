// Package testing provides a scripted stand-in for an SSH connection to a
// fleet host.
package testing

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/redpencil/rpio/pkg/sshutil"
)

// CommandResponse is what Exec returns for a matching command.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

type scripted struct {
	pattern string
	re      *regexp.Regexp
	resp    CommandResponse
}

// MockClient answers `ls -1 <dir>` from the directories registered with
// WithApps and every other command from SetCommandResponse. Unknown
// commands succeed with no output.
type MockClient struct {
	mu        sync.Mutex
	host      string
	dirs      map[string]map[string]bool
	responses []scripted
	history   []string
	closed    bool
}

var _ sshutil.SSHClient = (*MockClient)(nil)

// NewMockClient creates a client for host with nothing on disk.
func NewMockClient(host string) *MockClient {
	return &MockClient{host: host, dirs: make(map[string]map[string]bool)}
}

// WithApps creates appsDir on client's host with one folder per app.
func WithApps(client *MockClient, appsDir string, apps ...string) {
	client.mu.Lock()
	defer client.mu.Unlock()

	dir := path.Clean(appsDir)
	if client.dirs[dir] == nil {
		client.dirs[dir] = make(map[string]bool)
	}
	for _, app := range apps {
		client.dirs[dir][app] = true
	}
}

// SetCommandResponse scripts the reply for commands equal to pattern or
// matching it as a regular expression. Earlier registrations win; setting
// the same pattern again replaces its response.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.responses {
		if m.responses[i].pattern == pattern {
			m.responses[i].resp = resp
			return
		}
	}
	re, _ := regexp.Compile(pattern)
	m.responses = append(m.responses, scripted{pattern: pattern, re: re, resp: resp})
}

// Exec records cmd and answers it.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}
	m.history = append(m.history, cmd)

	for _, s := range m.responses {
		if s.pattern == cmd || (s.re != nil && s.re.MatchString(cmd)) {
			return s.resp.Stdout, s.resp.Stderr, s.resp.ExitCode, s.resp.Error
		}
	}

	if rest, ok := strings.CutPrefix(cmd, "ls -1 "); ok {
		return m.list(rest)
	}
	return nil, nil, 0, nil
}

func (m *MockClient) list(args string) ([]byte, []byte, int, error) {
	args, quiet := strings.CutSuffix(strings.TrimSpace(args), " 2>/dev/null")
	dir := path.Clean(strings.Trim(strings.TrimSpace(args), `'"`))

	entries, ok := m.dirs[dir]
	if !ok {
		if quiet {
			return nil, nil, 2, nil
		}
		return nil, []byte(fmt.Sprintf("ls: cannot access '%s': No such file or directory\n", dir)), 2, nil
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	for _, name := range names {
		out.WriteString(name + "\n")
	}
	return []byte(out.String()), nil, 0, nil
}

// Commands returns every command passed to Exec, in order.
func (m *MockClient) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

// Close marks the client closed; later calls fail.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockClient) GetHost() string    { return m.host }
func (m *MockClient) GetAddress() string { return m.host + ":22" }

type nopSession struct{}

func (nopSession) Close() error { return nil }

// NewSession succeeds until the client is closed.
func (m *MockClient) NewSession() (sshutil.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("connection closed")
	}
	return nopSession{}, nil
}
