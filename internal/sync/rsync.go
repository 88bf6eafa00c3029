package sync

import (
	"fmt"
	"os/exec"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/pkg/sshutil"
)

// FindRsync locates the rsync binary on the local system.
// Returns the full path to rsync or an error if not found.
func FindRsync() (string, error) {
	path, err := exec.LookPath("rsync")
	if err != nil {
		return "", errors.New(errors.ErrSync,
			"rsync isn't installed locally",
			"Grab it with: brew install rsync (macOS) or apt install rsync (Linux)")
	}
	return path, nil
}

// CheckRemote verifies that rsync is available on the remote host.
func CheckRemote(client sshutil.SSHClient, hostName string) error {
	_, _, exitCode, err := client.Exec("command -v rsync")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to check for rsync on remote",
			"Check your SSH connection")
	}
	if exitCode != 0 {
		return errors.New(errors.ErrSync,
			fmt.Sprintf("rsync isn't installed on %s", hostName),
			"Install it on the remote: apt install rsync (Debian/Ubuntu) or yum install rsync (RHEL)")
	}
	return nil
}
