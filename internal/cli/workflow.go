package cli

import (
	"io"
	"os"
	"time"

	"github.com/redpencil/rpio/internal/apps"
	"github.com/redpencil/rpio/internal/config"
	"github.com/redpencil/rpio/internal/discovery"
	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/host"
	"github.com/redpencil/rpio/internal/inventory"
	"github.com/redpencil/rpio/internal/logger"
	"github.com/redpencil/rpio/internal/operation"
	"github.com/redpencil/rpio/internal/sync"
	"github.com/redpencil/rpio/internal/ui"
	"github.com/redpencil/rpio/pkg/sshutil"
)

// WorkflowContext holds everything a command needs once configuration is
// loaded.
type WorkflowContext struct {
	Config     *config.Config
	ConfigPath string
	Log        logger.Logger
	Connector  host.Connector

	Picker   operation.Picker
	Prompter operation.Prompter

	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Terminal apps.Terminal
	// Animate enables spinners on Stderr.
	Animate bool
	WorkDir string

	closer func()
}

// Close releases the SSH connections opened during the invocation.
func (w *WorkflowContext) Close() {
	if w.closer != nil {
		w.closer()
	}
}

// loadConfig reads --config when given, else the default location.
func loadConfig() (*config.Config, string, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		return cfg, cfgFile, err
	}
	return config.LoadDefault()
}

// SetupWorkflow loads configuration and binds the SSH layer, logger and
// console to the process. The caller must Close the result.
func SetupWorkflow() (*WorkflowContext, error) {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return nil, err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get working directory",
			"Check directory permissions")
	}

	sshutil.ConfigFile = cfg.SSHConfig
	sync.SSHConfigFile = cfg.SSHConfig
	sshutil.WarningHandler = func(msg string) {
		ui.PrintWarning(os.Stderr, msg)
	}

	log := logger.NewEnvLogger("rpio")

	connector := host.NewConnector(cfg.ProbeTimeout)
	connector.SetEventHandler(func(event host.ConnectionEvent) {
		logConnectionEvent(log, event)
	})

	console := ui.NewConsole()
	return &WorkflowContext{
		Config:     cfg,
		ConfigPath: cfgPath,
		Log:        log,
		Connector:  connector,
		Picker:     console,
		Prompter:   console,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Terminal:   apps.NewTerminal(os.Stdin),
		Animate:    ui.IsTerminal(os.Stderr),
		WorkDir:    workDir,
		closer: func() {
			connector.Close()
			sshutil.CloseAgent()
		},
	}, nil
}

func logConnectionEvent(log logger.Logger, event host.ConnectionEvent) {
	switch event.Type {
	case host.EventFailed:
		log.Debug("ssh %s: %s", event.Host, host.Categorize(event.Host, event.Error).Reason)
	case host.EventConnected:
		log.Debug("ssh %s: connected in %s", event.Host, event.Latency.Round(time.Millisecond))
	default:
		log.Debug("ssh %s: %s", event.Host, event.Type)
	}
}

// snapshot is the on-disk inventory under the configured cache directory.
func (w *WorkflowContext) snapshot() *inventory.FileStore {
	return inventory.NewFileStore(w.Config.CacheDir)
}

// loadInventory returns the cached inventory, running a discovery pass
// first when refresh is set or nothing is cached yet.
func (w *WorkflowContext) loadInventory(refresh, dryRun bool) (*inventory.Store, error) {
	agent := discovery.NewAgent(discovery.Options{
		SSHConfigPath: w.Config.SSHConfig,
		AppsDir:       w.Config.AppsDir,
		Connector:     w.Connector,
		Logger:        w.Log,
		Progress:      ui.NewProbeProgress(w.Stderr, w.Animate),
	})
	return agent.LoadOrRefresh(w.snapshot(), w.Config.IgnoreHosts, refresh, dryRun)
}

// executor builds the apps executor on the context's streams.
func (w *WorkflowContext) executor(dryRun bool) *apps.Executor {
	return &apps.Executor{
		Connector: w.Connector,
		Config:    w.Config,
		Stdin:     w.Stdin,
		Stdout:    w.Stdout,
		Stderr:    w.Stderr,
		Terminal:  w.Terminal,
		WorkDir:   w.WorkDir,
		DryRun:    dryRun,
		Animate:   w.Animate,
		Log:       w.Log,
	}
}
