package sshutil

import "io"

// SSHClient defines the interface for SSH command execution.
// Both the real Client and the mock in pkg/sshutil/testing satisfy it, so
// remote probes can be tested without a live connection.
type SSHClient interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	// A non-zero exit code with nil error means the command ran but failed.
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Close closes the SSH connection.
	Close() error

	// GetHost returns the original host/alias used to connect.
	GetHost() string

	// GetAddress returns the resolved host:port address.
	GetAddress() string

	// NewSession creates a new SSH session for liveness checks.
	// The returned session should be closed after use.
	NewSession() (Session, error)
}

// Session represents an SSH session that can be closed.
type Session interface {
	io.Closer
}

// Compile-time check that Client satisfies SSHClient.
var _ SSHClient = (*Client)(nil)
