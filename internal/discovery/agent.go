// Package discovery builds a fresh inventory by reading the host names from
// the operator's SSH client configuration and listing each host's apps
// directory.
package discovery

import (
	"fmt"
	"strings"
	"time"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/host"
	"github.com/redpencil/rpio/internal/inventory"
	"github.com/redpencil/rpio/internal/logger"
	"github.com/redpencil/rpio/internal/util"
	"github.com/redpencil/rpio/pkg/sshutil"
)

// DefaultAppsDir is where applications live on fleet hosts.
const DefaultAppsDir = "/data"

// Progress is notified around each host probe. The CLI drives a spinner
// with it.
type Progress interface {
	Start(hostName string)
	Done(hostName string, folders int)
}

// Options configures an Agent.
type Options struct {
	SSHConfigPath string
	AppsDir       string
	Connector     host.Connector
	Logger        logger.Logger
	Progress      Progress
	Now           func() time.Time
}

// Agent performs discovery passes. It never persists what it finds.
type Agent struct {
	sshConfigPath string
	appsDir       string
	connector     host.Connector
	log           logger.Logger
	progress      Progress
	now           func() time.Time
}

// NewAgent creates an agent. Unset options fall back to the ~/.ssh/config
// path, /data, a no-op logger and the wall clock.
func NewAgent(opts Options) *Agent {
	a := &Agent{
		sshConfigPath: opts.SSHConfigPath,
		appsDir:       opts.AppsDir,
		connector:     opts.Connector,
		log:           opts.Logger,
		progress:      opts.Progress,
		now:           opts.Now,
	}
	if a.sshConfigPath == "" {
		a.sshConfigPath = sshutil.DefaultConfigPath()
	}
	if a.appsDir == "" {
		a.appsDir = DefaultAppsDir
	}
	if a.log == nil {
		a.log = logger.Noop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// ReadHosts returns the host names declared in the SSH client configuration.
// A missing or unreadable file is a configuration error.
func (a *Agent) ReadHosts() ([]string, error) {
	hosts, err := sshutil.ReadHostDeclarations(a.sshConfigPath)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't read SSH config %s", a.sshConfigPath),
			"Point ssh_config in your rpio config at your SSH client configuration.")
	}
	return hosts, nil
}

// Refresh probes every declared host that isn't ignored and returns a new
// snapshot. Hosts that can't be reached or have no apps directory are kept
// with no folders; only an unreadable SSH config fails the pass.
func (a *Agent) Refresh(ignoreHosts []string) (*inventory.Store, error) {
	hosts, err := a.ReadHosts()
	if err != nil {
		return nil, err
	}

	ignored := make(map[string]struct{}, len(ignoreHosts))
	for _, h := range ignoreHosts {
		ignored[h] = struct{}{}
	}

	store := inventory.NewStore()
	for _, name := range hosts {
		if _, skip := ignored[name]; skip || name == "" {
			continue
		}

		if a.progress != nil {
			a.progress.Start(name)
		}
		folders := a.probe(name)
		if a.progress != nil {
			a.progress.Done(name, len(folders))
		}

		// Repeated declarations overwrite earlier ones.
		store.Servers[name] = inventory.ServerEntry{
			LastUpdated: a.now().Unix(),
			DataFolders: folders,
		}
	}

	a.log.Debug("discovery: %d hosts, %d folders", len(store.Servers), store.FolderCount())
	return store, nil
}

// probe lists the apps directory on one host. Every failure is absorbed.
// The connection is released afterwards so a pass over a large fleet holds
// at most one open at a time.
func (a *Agent) probe(name string) []inventory.DataFolder {
	client, err := a.connector.Connect(name)
	if err != nil {
		a.log.Debug("discovery: %v", host.Categorize(name, err))
		return nil
	}
	defer a.connector.Release(name)

	cmd := fmt.Sprintf("ls -1 %s 2>/dev/null", util.ShellQuotePreserveTilde(a.appsDir))
	stdout, _, exitCode, err := client.Exec(cmd)
	if err != nil {
		a.log.Debug("discovery: %v", host.Categorize(name, err))
		return nil
	}
	if exitCode != 0 {
		a.log.Debug("discovery: %v", host.ExitFailure(name, exitCode))
		return nil
	}

	return parseListing(stdout)
}

// parseListing turns `ls -1` output into folders, skipping blank lines.
func parseListing(out []byte) []inventory.DataFolder {
	var folders []inventory.DataFolder
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		folders = append(folders, inventory.DataFolder{Path: line})
	}
	return folders
}
