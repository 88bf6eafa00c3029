package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/redpencil/rpio/internal/errors"
)

// fileConfig is Config as written to disk. Durations are spelled the way
// an operator would type them.
type fileConfig struct {
	CacheDir     string          `toml:"cache_dir"`
	IgnoreHosts  []string        `toml:"ignore_hosts"`
	SSHConfig    string          `toml:"ssh_config"`
	AppsDir      string          `toml:"apps_dir"`
	ProbeTimeout string          `toml:"probe_timeout"`
	HostedURL    HostedURLConfig `toml:"hosted_url"`
	Project      ProjectConfig   `toml:"project"`
}

// Init writes cfg to path, creating its directory. An existing file is
// never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrConfig,
			"Config file already exists at: "+path,
			"Edit it directly, or remove it and run 'rpio config init' again.")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory "+filepath.Dir(path),
			"Check directory permissions")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config file "+path,
			"Check directory permissions")
	}

	ignore := cfg.IgnoreHosts
	if ignore == nil {
		ignore = []string{}
	}
	out := fileConfig{
		CacheDir:     cfg.CacheDir,
		IgnoreHosts:  ignore,
		SSHConfig:    cfg.SSHConfig,
		AppsDir:      cfg.AppsDir,
		ProbeTimeout: cfg.ProbeTimeout.String(),
		HostedURL:    cfg.HostedURL,
		Project:      cfg.Project,
	}

	encErr := toml.NewEncoder(f).Encode(out)
	closeErr := f.Close()
	if encErr == nil {
		encErr = closeErr
	}
	if encErr != nil {
		_ = os.Remove(path)
		return errors.WrapWithCode(encErr, errors.ErrConfig,
			"Failed to write config file "+path, "")
	}
	return nil
}
