package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/spf13/viper"
)

const (
	// AppDirName is the directory name under the user config and cache dirs.
	AppDirName = "rpio"
	// ConfigFileName is the config file name inside Dir.
	ConfigFileName = "config.toml"
	// EnvPrefix prefixes environment overrides, e.g. RPIO_APPS_DIR.
	EnvPrefix = "RPIO"
)

// Dir returns the rpio directory under the user config dir.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine the user config directory",
			"Set $XDG_CONFIG_HOME or $HOME.")
	}
	return filepath.Join(base, AppDirName), nil
}

// Path returns the location of config.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// DefaultCacheDir returns the rpio directory under the user cache dir.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine the user cache directory",
			"Set cache_dir in "+ConfigFileName+", or set $XDG_CACHE_HOME.")
	}
	return filepath.Join(base, AppDirName), nil
}

// LoadDefault loads config.toml from its default location and returns the
// path it looked at.
func LoadDefault() (*Config, string, error) {
	path, err := Path()
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Load reads the config file at path. A file that doesn't exist yields the
// defaults; environment variables (RPIO_<KEY>) override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the TOML syntax in "+path)
		}
	case !os.IsNotExist(statErr):
		return nil, errors.WrapWithCode(statErr, errors.ErrConfig,
			"Cannot access config file: "+path,
			"Check file permissions")
	}

	return parseConfig(v, path)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the value types in "+path)
	}

	if cfg.IgnoreHosts == nil {
		cfg.IgnoreHosts = []string{}
	}
	cfg.SSHConfig = ExpandPath(cfg.SSHConfig)
	cfg.CacheDir = ExpandPath(cfg.CacheDir)
	if cfg.CacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		cfg.CacheDir = dir
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply to keys
// that are absent from the file.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("cache_dir", "")
	v.SetDefault("ignore_hosts", def.IgnoreHosts)
	v.SetDefault("ssh_config", def.SSHConfig)
	v.SetDefault("apps_dir", def.AppsDir)
	v.SetDefault("probe_timeout", def.ProbeTimeout.String())
	v.SetDefault("hosted_url.service", def.HostedURL.Service)
	v.SetDefault("hosted_url.key", def.HostedURL.Key)
	v.SetDefault("project.compose_file", def.Project.ComposeFile)
	v.SetDefault("project.identifier_image", def.Project.IdentifierImage)
}
