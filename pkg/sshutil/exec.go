package sshutil

import (
	"bytes"
	"fmt"
	"io"

	"github.com/redpencil/rpio/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Exec runs a command on the remote host and returns the output.
// Returns stdout, stderr, exit code, and any error.
// Exit code is -1 if the command couldn't be executed at all.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	if err := session.Run(cmd); err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitStatus(), nil
		}
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to execute command: %s", cmd),
			"Check if the command exists on the remote host.")
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}

// TermSize is the initial pseudo-terminal geometry for interactive sessions.
type TermSize struct {
	Width  int
	Height int
}

// Interactive runs cmd with a pseudo-terminal attached to the given streams.
// An empty cmd starts the login shell. The caller puts the local terminal in
// raw mode. Returns the remote exit status.
func (c *Client) Interactive(cmd string, size TermSize, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	if size.Width <= 0 || size.Height <= 0 {
		size = TermSize{Width: 80, Height: 24}
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("xterm-256color", size.Height, size.Width, modes); err != nil {
		return -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to allocate PTY",
			"The remote host may not support pseudo-terminals.")
	}

	session.Stdin = stdin
	session.Stdout = stdout
	session.Stderr = stderr

	if cmd == "" {
		err = session.Shell()
	} else {
		err = session.Start(cmd)
	}
	if err != nil {
		return -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to start remote shell",
			"Check if your user has shell access on the remote host.")
	}

	if err := session.Wait(); err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			return exitErr.ExitStatus(), nil
		}
		// The server closed the channel without an exit status.
		if _, ok := err.(*ssh.ExitMissingError); ok {
			return -1, nil
		}
		return -1, errors.WrapWithCode(err, errors.ErrSSH, "Remote shell ended unexpectedly", "")
	}
	return 0, nil
}
