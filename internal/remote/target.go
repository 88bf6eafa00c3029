package remote

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/host"
	"github.com/redpencil/rpio/internal/logger"
	"github.com/redpencil/rpio/internal/util"
)

// Target is an Identity plus the means to query its host. Every call is a
// single synchronous round trip.
type Target struct {
	Identity
	connector host.Connector
	appsDir   string
	log       logger.Logger
}

// NewTarget creates a target for the application under appsDir on its host.
func NewTarget(id Identity, connector host.Connector, appsDir string, log logger.Logger) *Target {
	if log == nil {
		log = logger.Noop()
	}
	return &Target{Identity: id, connector: connector, appsDir: appsDir, log: log}
}

// Dir returns the application directory on the host.
func (t *Target) Dir() string {
	return path.Join(t.appsDir, t.AppName)
}

// inDir prefixes cmd with a cd into the application directory.
func (t *Target) inDir(cmd string) string {
	return fmt.Sprintf("cd %s && %s", util.ShellQuotePreserveTilde(t.Dir()), cmd)
}

// run executes cmd on the host. Non-zero exits are returned as ErrExec.
func (t *Target) run(cmd string) ([]byte, error) {
	client, err := t.connector.Connect(t.Host)
	if err != nil {
		return nil, err
	}

	stdout, stderr, exitCode, err := client.Exec(cmd)
	if err != nil {
		return nil, err
	}
	if exitCode != 0 {
		// Every query goes through the docker CLI.
		if err := missingCommandError(t.Host, string(stderr), exitCode, "docker"); err != nil {
			return nil, err
		}
		return nil, errors.New(errors.ErrExec,
			fmt.Sprintf("`%s` exited with status %d on %s", cmd, exitCode, t.Host),
			strings.TrimSpace(string(stderr)))
	}
	return stdout, nil
}

// ListContainers returns the compose container names of the application.
// Any failure is logged and yields no containers.
func (t *Target) ListContainers() []string {
	out, err := t.run(t.inDir("docker compose ps --format '{{.Names}}'"))
	if err != nil {
		t.log.Debug("list containers for %s: %v", t.Identity, err)
		return nil
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// DumpServiceConfig returns the application's resolved compose config.
func (t *Target) DumpServiceConfig() (string, error) {
	out, err := t.run(t.inDir("docker compose config"))
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't read the compose config of %s", t.Identity),
			fmt.Sprintf("Check it by hand: ssh %s \"cd %s && docker compose config\"", t.Host, t.Dir()))
	}
	if !utf8.Valid(out) {
		return "", errors.New(errors.ErrExec,
			fmt.Sprintf("Compose config of %s is not valid UTF-8", t.Identity), "")
	}
	return string(out), nil
}

// ContainerIP returns the first network address of a container.
func (t *Target) ContainerIP(container string) (string, error) {
	cmd := fmt.Sprintf("docker inspect -f '{{range .NetworkSettings.Networks}}{{println .IPAddress}}{{end}}' %s | head -n1",
		util.ShellQuote(container))
	out, err := t.run(cmd)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't inspect container %s on %s", container, t.Host),
			"Is the container running? Try: docker compose ps")
	}

	ip := strings.TrimSpace(string(out))
	if ip == "" {
		return "", errors.New(errors.ErrExec,
			fmt.Sprintf("Container %s has no network address", container),
			"Is the container running? Try: docker compose ps")
	}
	return ip, nil
}
