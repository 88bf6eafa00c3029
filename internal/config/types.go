// Package config loads the operator configuration, config.toml in the
// user's config directory. Every setting has a default, so a missing file
// is not an error.
package config

import "time"

// Config is the operator configuration.
type Config struct {
	// CacheDir holds servers.toml. Empty means the user cache directory.
	CacheDir string `toml:"cache_dir" mapstructure:"cache_dir"`

	// IgnoreHosts are SSH host names never probed during discovery.
	IgnoreHosts []string `toml:"ignore_hosts" mapstructure:"ignore_hosts"`

	// SSHConfig is the SSH client configuration listing the fleet.
	SSHConfig string `toml:"ssh_config" mapstructure:"ssh_config"`

	// AppsDir is the remote directory holding one folder per application.
	AppsDir string `toml:"apps_dir" mapstructure:"apps_dir"`

	// ProbeTimeout bounds each SSH dial.
	ProbeTimeout time.Duration `toml:"probe_timeout" mapstructure:"probe_timeout"`

	HostedURL HostedURLConfig `toml:"hosted_url" mapstructure:"hosted_url"`
	Project   ProjectConfig   `toml:"project" mapstructure:"project"`
}

// HostedURLConfig names the service environment entry holding an
// application's public host name.
type HostedURLConfig struct {
	Service string `toml:"service" mapstructure:"service"`
	Key     string `toml:"key" mapstructure:"key"`
}

// ProjectConfig describes how a local checkout of an application is
// recognised when retrieving data into it.
type ProjectConfig struct {
	ComposeFile     string `toml:"compose_file" mapstructure:"compose_file"`
	IdentifierImage string `toml:"identifier_image" mapstructure:"identifier_image"`
}

// Default values.
const (
	DefaultSSHConfig       = "~/.ssh/config"
	DefaultAppsDir         = "/data"
	DefaultProbeTimeout    = 10 * time.Second
	DefaultHostedService   = "identifier"
	DefaultHostedKey       = "LETSENCRYPT_HOST"
	DefaultComposeFile     = "docker-compose.yml"
	DefaultIdentifierImage = "semtech/mu-identifier"
)

// DefaultConfig returns a Config with every default applied. CacheDir is
// left empty; Load fills it in.
func DefaultConfig() *Config {
	return &Config{
		IgnoreHosts:  []string{},
		SSHConfig:    DefaultSSHConfig,
		AppsDir:      DefaultAppsDir,
		ProbeTimeout: DefaultProbeTimeout,
		HostedURL: HostedURLConfig{
			Service: DefaultHostedService,
			Key:     DefaultHostedKey,
		},
		Project: ProjectConfig{
			ComposeFile:     DefaultComposeFile,
			IdentifierImage: DefaultIdentifierImage,
		},
	}
}
