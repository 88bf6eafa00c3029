// Package sshutil is the SSH transport: dialing hosts with the settings of
// the operator's SSH client configuration, running commands, interactive
// shells and local port forwards.
package sshutil

import (
	stderrors "errors"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/redpencil/rpio/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Client is a live connection to one host.
type Client struct {
	*ssh.Client
	Host    string // name the caller dialed, usually an SSH config alias
	Address string // host:port actually connected to
}

// WarningHandler receives non-fatal transport warnings. When nil they go to
// the standard logger.
var WarningHandler func(message string)

// StrictHostKeyChecking verifies host keys against ~/.ssh/known_hosts.
var StrictHostKeyChecking = true

func emitWarning(message string) {
	if WarningHandler == nil {
		log.Printf("Warning: %s", message)
		return
	}
	WarningHandler(message)
}

// Dial connects to host, which may be an SSH config alias, a hostname,
// user@hostname or hostname:port. The timeout bounds the TCP connect and
// the handshake.
func Dial(host string, timeout time.Duration) (*Client, error) {
	settings := resolveSSHSettings(host)

	config, err := buildSSHConfig(settings, timeout)
	if err != nil {
		if _, ok := err.(*errors.Error); ok {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't prepare SSH for '%s'", host),
			"Check that ssh-add -l lists your key.")
	}

	address := settings.address()
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var mismatch *HostKeyMismatchError
		if stderrors.As(err, &mismatch) {
			return nil, errors.New(errors.ErrSSH, mismatch.Error(), mismatch.Suggestion())
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' failed", host),
			suggestionForHandshakeError(err, settings.encryptedKeys))
	}

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the name the client was dialed with.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the host:port connected to.
func (c *Client) GetAddress() string {
	return c.Address
}

// NewSession opens a session. The connection cache uses it as a liveness
// probe.
func (c *Client) NewSession() (Session, error) {
	return c.Client.NewSession()
}

// buildSSHConfig assembles auth methods and host key verification for one
// dial. Passphrase-protected keys it skips are recorded in
// settings.encryptedKeys.
func buildSSHConfig(settings *sshSettings, timeout time.Duration) (*ssh.ClientConfig, error) {
	auth := authMethods(settings)
	if len(auth) == 0 {
		if len(settings.encryptedKeys) > 0 {
			return nil, errors.New(errors.ErrSSH,
				"Found SSH key(s) but they're encrypted: "+strings.Join(settings.encryptedKeys, ", "),
				addKeysSuggestion(settings.encryptedKeys))
		}
		return nil, errors.New(errors.ErrSSH,
			"No SSH auth methods available",
			"Start an agent with your key loaded, or set IdentityFile in your SSH config.")
	}

	hostKeys := ssh.InsecureIgnoreHostKey() //nolint:gosec // operator turned checking off
	if StrictHostKeyChecking {
		var err error
		hostKeys, err = createHostKeyCallback(filepath.Join(homeDir(), ".ssh", "known_hosts"))
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            settings.user,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}, nil
}

func suggestionForDialError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Is SSH running on that host? Try: ssh <host>"
	case strings.Contains(msg, "no route to host"), strings.Contains(msg, "network is unreachable"):
		return "Can't route to the host. Are you on the right network or VPN?"
	case strings.Contains(msg, "timeout"):
		return "Connection timed out. The host may be down, or probe_timeout too short."
	default:
		return "Make sure the host is reachable: ssh <host>"
	}
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"), strings.Contains(msg, "no supported methods"):
		if len(encryptedKeys) > 0 {
			return addKeysSuggestion(encryptedKeys)
		}
		return "Auth failed. Check that ssh-add -l lists the key this host expects."
	case strings.Contains(msg, "host key"):
		return "Host key issue. Connect once with plain ssh <host> to inspect it."
	default:
		return "Something went wrong during the handshake. Try: ssh -v <host>"
	}
}
