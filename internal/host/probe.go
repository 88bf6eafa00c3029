package host

import (
	"fmt"
	"strings"
)

// ProbeError represents a failed probe with categorized failure reason.
type ProbeError struct {
	Host   string
	Reason ProbeFailReason
	Cause  error
}

// ProbeFailReason categorizes why a probe failed.
type ProbeFailReason int

const (
	ProbeFailUnknown ProbeFailReason = iota
	ProbeFailTimeout
	ProbeFailRefused
	ProbeFailUnreachable
	ProbeFailAuth
	ProbeFailHostKey
	// ProbeFailExit means the host answered but the command exited non-zero,
	// which includes a missing apps directory.
	ProbeFailExit
)

// String returns a human-readable description of the failure reason.
func (r ProbeFailReason) String() string {
	switch r {
	case ProbeFailTimeout:
		return "connection timed out"
	case ProbeFailRefused:
		return "connection refused"
	case ProbeFailUnreachable:
		return "host unreachable"
	case ProbeFailAuth:
		return "authentication failed"
	case ProbeFailHostKey:
		return "host key verification failed"
	case ProbeFailExit:
		return "remote command failed"
	default:
		return "unknown error"
	}
}

func (e *ProbeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("probe %s failed: %s (%v)", e.Host, e.Reason, e.Cause)
	}
	return fmt.Sprintf("probe %s failed: %s", e.Host, e.Reason)
}

func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// ExitFailure builds the ProbeError for a command that ran and exited non-zero.
func ExitFailure(host string, exitCode int) *ProbeError {
	return &ProbeError{
		Host:   host,
		Reason: ProbeFailExit,
		Cause:  fmt.Errorf("exit status %d", exitCode),
	}
}

// Categorize converts a connection or transport error into a ProbeError with
// a categorized failure reason. Returns nil for a nil error.
func Categorize(host string, err error) *ProbeError {
	if err == nil {
		return nil
	}

	probeErr := &ProbeError{
		Host:   host,
		Reason: ProbeFailUnknown,
		Cause:  err,
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "timed out"):
		probeErr.Reason = ProbeFailTimeout
	case strings.Contains(errStr, "connection refused"):
		probeErr.Reason = ProbeFailRefused
	case strings.Contains(errStr, "no route to host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "host is down"),
		strings.Contains(errStr, "no such host"):
		probeErr.Reason = ProbeFailUnreachable
	case strings.Contains(errStr, "unable to authenticate"),
		strings.Contains(errStr, "no supported methods"),
		strings.Contains(errStr, "permission denied"),
		strings.Contains(errStr, "authentication failed"),
		strings.Contains(errStr, "no ssh auth methods"):
		probeErr.Reason = ProbeFailAuth
	case strings.Contains(errStr, "host key"):
		probeErr.Reason = ProbeFailHostKey
	}

	return probeErr
}
