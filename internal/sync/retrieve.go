// Package sync copies application data from a fleet host into the local
// project with rsync.
package sync

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/redpencil/rpio/internal/errors"
)

// Source selects what to copy.
type Source int

const (
	// Backups copies the data/db/backups directory into data/db.
	Backups Source = iota
	// Files copies the contents of data/files into data/files.
	Files
)

func (s Source) String() string {
	switch s {
	case Backups:
		return "backups"
	case Files:
		return "files"
	default:
		return "unknown"
	}
}

// SSHConfigFile is passed to ssh with -F when set.
var SSHConfigFile string

// Options configures one retrieve.
type Options struct {
	Host        string // SSH host name
	RemoteDir   string // application directory on the host
	ProjectRoot string // local project root
	Source      Source
}

// paths returns the rsync source and destination for a retrieve.
// Backups are copied as a directory; files are copied by content.
func (o Options) paths() (src, dest string) {
	switch o.Source {
	case Files:
		return fmt.Sprintf("%s:%s/", o.Host, path.Join(o.RemoteDir, "data", "files")),
			filepath.Join(o.ProjectRoot, "data", "files")
	default:
		return fmt.Sprintf("%s:%s", o.Host, path.Join(o.RemoteDir, "data", "db", "backups")),
			filepath.Join(o.ProjectRoot, "data", "db")
	}
}

// BuildRetrieveArgs constructs the rsync arguments for a retrieve.
// Exported for testing command construction without running rsync.
func BuildRetrieveArgs(opts Options) []string {
	sshCmd := "ssh"
	if SSHConfigFile != "" {
		sshCmd = fmt.Sprintf("ssh -F %q", SSHConfigFile)
	}

	src, dest := opts.paths()
	return []string{"-azv", "--partial", "-e", sshCmd, src, dest}
}

// CommandLine renders the rsync invocation for display.
func CommandLine(opts Options) string {
	args := BuildRetrieveArgs(opts)
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \"") {
			a = fmt.Sprintf("%q", a)
		}
		quoted[i] = a
	}
	return "rsync " + strings.Join(quoted, " ")
}

// Retrieve runs rsync, streaming its output to out.
func Retrieve(opts Options, out io.Writer) error {
	rsyncPath, err := FindRsync()
	if err != nil {
		return err
	}

	_, dest := opts.paths()
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrSync,
			fmt.Sprintf("Couldn't create destination directory %s", dest),
			"Check file permissions.")
	}

	return runRsync(rsyncPath, BuildRetrieveArgs(opts), opts.Host, out)
}

func runRsync(rsyncPath string, args []string, hostName string, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	cmd := exec.Command(rsyncPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSync,
			"Couldn't capture rsync output",
			"Try running rsync manually to see what's happening.")
	}
	var stderrBuf bytes.Buffer
	cmd.Stderr = io.MultiWriter(&stderrBuf, out)

	if err := cmd.Start(); err != nil {
		return errors.WrapWithCode(err, errors.ErrSync,
			"Couldn't start rsync",
			"Make sure rsync is installed and the paths are valid.")
	}

	streamOutput(stdout, out)

	if err := cmd.Wait(); err != nil {
		return handleRsyncError(err, hostName, stderrBuf.String())
	}
	return nil
}

// streamOutput copies r to w line by line. rsync ends progress updates with
// \r, so both \r and \n end a line.
func streamOutput(r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLinesWithCR)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			fmt.Fprintln(w, line)
		}
	}
}

func scanLinesWithCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[0:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// handleRsyncError wraps rsync exit errors with helpful messages.
func handleRsyncError(err error, hostName string, stderrOutput string) error {
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return errors.WrapWithCode(err, errors.ErrSync,
			"rsync failed",
			"Try running rsync manually to diagnose")
	}

	if strings.Contains(stderrOutput, "No such file or directory") {
		return errors.New(errors.ErrSync,
			"Nothing to retrieve at that path",
			"Check that the application keeps its data under data/ on the host.")
	}

	var msg, suggestion string
	switch exitErr.ExitCode() {
	case 1:
		msg = "rsync syntax or usage error"
		suggestion = "Check the rsync arguments with --dry-run"
	case 2:
		msg = "rsync protocol incompatibility"
		suggestion = "Ensure rsync versions are compatible on local and remote"
	case 3:
		msg = "File selection error"
		suggestion = "Check that the remote paths exist and are readable"
	case 11:
		msg = "Error in file I/O"
		suggestion = "Check disk space and file permissions locally"
	case 23:
		msg = "Partial transfer due to error"
		suggestion = "Some files may not exist or have permission issues"
	case 255:
		msg = fmt.Sprintf("SSH connection to '%s' failed", hostName)
		suggestion = "Check that the host is reachable: ssh " + hostName
	default:
		msg = fmt.Sprintf("rsync exited with code %d", exitErr.ExitCode())
		suggestion = "Check the output above for specific error details"
	}

	return errors.WrapWithCode(err, errors.ErrSync, msg, suggestion)
}
