package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/redpencil/rpio/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.AppsDir == "" || !path.IsAbs(cfg.AppsDir) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("apps_dir must be an absolute remote path, got '%s'", cfg.AppsDir),
			"Set apps_dir to something like \"/data\" in "+ConfigFileName+".")
	}

	if cfg.ProbeTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("probe_timeout must be positive, got %s", cfg.ProbeTimeout),
			"Use a duration like \"10s\" in "+ConfigFileName+".")
	}

	if cfg.SSHConfig == "" {
		return errors.New(errors.ErrConfig,
			"ssh_config can't be empty",
			"Point ssh_config at your SSH client configuration, usually ~/.ssh/config.")
	}

	if cfg.HostedURL.Service == "" || cfg.HostedURL.Key == "" {
		return errors.New(errors.ErrConfig,
			"hosted_url needs both a service and a key",
			fmt.Sprintf("The defaults are service = %q and key = %q.", DefaultHostedService, DefaultHostedKey))
	}

	if cfg.Project.ComposeFile == "" || strings.ContainsRune(cfg.Project.ComposeFile, '/') {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("project.compose_file must be a plain file name, got '%s'", cfg.Project.ComposeFile),
			fmt.Sprintf("The default is %q.", DefaultComposeFile))
	}

	for _, h := range cfg.IgnoreHosts {
		if strings.TrimSpace(h) == "" {
			return errors.New(errors.ErrConfig,
				"ignore_hosts contains an empty host name",
				"Remove the empty entry from ignore_hosts.")
		}
	}

	return nil
}
