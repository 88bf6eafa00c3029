package sshutil

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/kevinburke/ssh_config"
)

// ConfigFile is the SSH client configuration consulted by Dial.
// Empty means ~/.ssh/config.
var ConfigFile string

// matchWarningOnce limits the Match directive warning to once per process.
var matchWarningOnce sync.Once

// DefaultConfigPath returns ~/.ssh/config.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

func configPath() string {
	if ConfigFile != "" {
		return ExpandPath(ConfigFile)
	}
	return DefaultConfigPath()
}

// ReadHostDeclarations returns the host names declared in an SSH client
// configuration, in file order. Every line that starts with "Host" followed by
// whitespace contributes its second whitespace-delimited token. Repeated
// declarations are returned repeatedly. A line the scanner can't hold fails
// the read rather than cutting the list short.
func ReadHostDeclarations(path string) ([]string, error) {
	content, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, err
	}
	return ParseHostDeclarations(content)
}

// ParseHostDeclarations is ReadHostDeclarations over in-memory content.
func ParseHostDeclarations(content []byte) ([]string, error) {
	var hosts []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Host ") && !strings.HasPrefix(line, "Host\t") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		hosts = append(hosts, fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan host declarations: %w", err)
	}
	return hosts, nil
}

// sshSettings is what Dial needs to know about one host.
type sshSettings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSSHSettings splits target (alias, host, user@host or host:port) and
// lets the SSH client configuration fill in what the target leaves open.
// An explicit user@ beats both RPIO_SSH_USER and the config's User.
func resolveSSHSettings(target string) *sshSettings {
	s := &sshSettings{port: "22", user: currentUser()}

	alias, userGiven := target, false
	if at := strings.Index(alias, "@"); at >= 0 {
		s.user, alias, userGiven = alias[:at], alias[at+1:], true
	} else if u := os.Getenv("RPIO_SSH_USER"); u != "" {
		s.user = u
	}
	if colon := strings.LastIndex(alias, ":"); colon >= 0 && isPort(alias[colon+1:]) {
		alias, s.port = alias[:colon], alias[colon+1:]
	}
	s.hostname = alias

	path := configPath()
	content, matchLine, err := preprocessSSHConfig(path)
	if err != nil {
		return s
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return s
	}

	found := false
	lookup := func(key string, apply func(string)) {
		if v, _ := cfg.Get(alias, key); v != "" {
			apply(v)
			found = true
		}
	}
	lookup("HostName", func(v string) { s.hostname = v })
	lookup("Port", func(v string) { s.port = v })
	lookup("IdentityFile", func(v string) { s.identityFile = ExpandPath(v) })
	if !userGiven {
		lookup("User", func(v string) { s.user = v })
	}

	if matchLine > 0 && !found {
		matchWarningOnce.Do(func() {
			emitWarning(fmt.Sprintf("'%s' has no settings in %s before the Match block at line %d; "+
				"entries after a Match block are not read, so declare the host above it.",
				alias, path, matchLine))
		})
	}
	return s
}

// preprocessSSHConfig cuts the file at its first Match directive, which
// kevinburke/ssh_config cannot decode, and reports that line (0 if none).
func preprocessSSHConfig(path string) ([]byte, int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 && strings.EqualFold(fields[0], "match") {
			return []byte(strings.Join(lines[:i], "\n")), i + 1, nil
		}
	}
	return content, 0, nil
}

func isPort(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0 && n <= 65535 && !strings.HasPrefix(s, "+")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
