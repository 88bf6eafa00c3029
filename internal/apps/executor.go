// Package apps carries out a resolved operation against one remote
// application: an interactive shell, a port tunnel, a data retrieve or a
// hosted URL lookup.
package apps

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/redpencil/rpio/internal/config"
	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/host"
	"github.com/redpencil/rpio/internal/logger"
	"github.com/redpencil/rpio/internal/operation"
	"github.com/redpencil/rpio/internal/remote"
	"github.com/redpencil/rpio/internal/util"
	"github.com/redpencil/rpio/pkg/sshutil"
)

// ShellClient is an SSH client that can run an interactive session.
// *sshutil.Client satisfies it.
type ShellClient interface {
	Interactive(cmd string, size sshutil.TermSize, stdin io.Reader, stdout, stderr io.Writer) (int, error)
}

// ForwardClient is an SSH client that can forward a local port.
// *sshutil.Client satisfies it.
type ForwardClient interface {
	Forward(ctx context.Context, localAddr, remoteAddr string, ready func(net.Addr)) error
}

// Executor runs operations. With DryRun set it prints the equivalent
// command instead of changing anything.
type Executor struct {
	Connector host.Connector
	Config    *config.Config

	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Terminal Terminal

	// WorkDir is where the local project search starts. Empty means the
	// process working directory.
	WorkDir string
	DryRun  bool
	// Animate enables spinner animation on Stderr.
	Animate bool
	Log     logger.Logger
}

// New creates an executor on the process streams.
func New(connector host.Connector, cfg *config.Config) *Executor {
	return &Executor{
		Connector: connector,
		Config:    cfg,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Terminal:  NewTerminal(os.Stdin),
		Log:       logger.Noop(),
	}
}

// Run executes op against target.
func (e *Executor) Run(ctx context.Context, op *operation.Operation, target *remote.Target) error {
	e.log().Debug("running %s on %s", op.Kind, target.Identity)

	switch op.Kind {
	case operation.KindSSHSession:
		return e.runSession(target)
	case operation.KindTunnel:
		return e.runTunnel(ctx, op.Tunnel, target)
	case operation.KindRetrieveBackup, operation.KindRetrieveFiles:
		return e.runRetrieve(target, op.Kind)
	case operation.KindHostedURL:
		return e.runHostedURL(target)
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown operation '%s'", op.Kind),
		"Run 'rpio apps --help' for the list of operations.")
}

func (e *Executor) log() logger.Logger {
	if e.Log == nil {
		return logger.Noop()
	}
	return e.Log
}

// connect dials the target's host.
func (e *Executor) connect(t *remote.Target) (sshutil.SSHClient, error) {
	return e.Connector.Connect(t.Host)
}

// printCommand shows the command a dry run stands in for.
func (e *Executor) printCommand(args ...string) {
	fmt.Fprintln(e.Stdout, util.ShellJoin(args...))
}
