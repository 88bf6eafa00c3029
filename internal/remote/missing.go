package remote

import (
	"fmt"
	"regexp"

	"github.com/redpencil/rpio/internal/errors"
)

// commandNotFoundPatterns detect "command not found" from the common remote
// shells. They only apply to exit status 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)-bash: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)(\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// composePluginPattern matches a docker CLI without the compose plugin.
var composePluginPattern = regexp.MustCompile(`docker: '(\S+)' is not a docker command`)

// IsCommandNotFound checks if remote stderr indicates a missing command.
// Returns the command name (if extractable) and whether it's a
// command-not-found error.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	if m := composePluginPattern.FindStringSubmatch(stderr); len(m) > 1 {
		return "docker " + m[1], true
	}

	if exitCode != 127 {
		return "", false
	}

	for _, pattern := range commandNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}
	return "", true
}

// missingCommandError returns a structured error when stderr shows that a
// tool is missing on hostName, or nil. fallback names the tool when stderr
// doesn't.
func missingCommandError(hostName, stderr string, exitCode int, fallback string) error {
	name, missing := IsCommandNotFound(stderr, exitCode)
	if !missing {
		return nil
	}
	if name == "" {
		name = fallback
	}

	return errors.New(errors.ErrExec,
		fmt.Sprintf("'%s' not found on %s", name, hostName),
		fmt.Sprintf("Install '%s' on the host, or check it is in the PATH of non-interactive shells:\n  ssh %s \"command -v %s\"",
			name, hostName, name))
}
