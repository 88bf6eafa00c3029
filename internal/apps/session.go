package apps

import (
	"fmt"
	"os"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/remote"
	"github.com/redpencil/rpio/internal/util"
	"github.com/redpencil/rpio/pkg/sshutil"
	"golang.org/x/term"
)

// Terminal is the local side of an interactive session.
type Terminal interface {
	// Size returns the current geometry. ok is false if it is unknown.
	Size() (size sshutil.TermSize, ok bool)
	// MakeRaw switches to raw mode and returns the function restoring it.
	MakeRaw() (restore func(), err error)
}

type fdTerminal struct {
	fd int
}

// NewTerminal returns the Terminal for f, or nil when f isn't one.
func NewTerminal(f *os.File) Terminal {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return fdTerminal{fd: fd}
}

func (t fdTerminal) Size() (sshutil.TermSize, bool) {
	w, h, err := term.GetSize(t.fd)
	if err != nil {
		return sshutil.TermSize{}, false
	}
	return sshutil.TermSize{Width: w, Height: h}, true
}

func (t fdTerminal) MakeRaw() (func(), error) {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(t.fd, state) }, nil
}

// SessionCommand is the remote command of an ssh-session: a login shell in
// the application directory.
func SessionCommand(dir string) string {
	return fmt.Sprintf("cd %s ; bash --login", util.ShellQuotePreserveTilde(dir))
}

func (e *Executor) runSession(t *remote.Target) error {
	cmd := SessionCommand(t.Dir())
	if e.DryRun {
		e.printCommand("ssh", "-t", t.Host, cmd)
		return nil
	}

	client, err := e.connect(t)
	if err != nil {
		return err
	}
	shell, ok := client.(ShellClient)
	if !ok {
		return errors.New(errors.ErrSSH,
			fmt.Sprintf("The connection to %s can't open an interactive shell", t.Host),
			fmt.Sprintf("Open one by hand: ssh -t %s \"%s\"", t.Host, cmd))
	}

	var size sshutil.TermSize
	if e.Terminal != nil {
		if s, ok := e.Terminal.Size(); ok {
			size = s
		}
		restore, err := e.Terminal.MakeRaw()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrExec,
				"Couldn't switch the terminal to raw mode", "")
		}
		defer restore()
	}

	code, err := shell.Interactive(cmd, size, e.Stdin, e.Stdout, e.Stderr)
	if err != nil {
		return err
	}
	switch {
	case code == 0:
		return nil
	case code < 0:
		// The server closed the session without reporting a status.
		return errors.NewExitError(255)
	default:
		return errors.NewExitError(code)
	}
}
