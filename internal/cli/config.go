package cli

import (
	"fmt"
	"io"

	"github.com/redpencil/rpio/internal/config"
	"github.com/redpencil/rpio/internal/inventory"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the rpio configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write a config file holding every default value. An existing file is
never overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		return runConfigInit(cmd.OutOrStdout(), path)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where rpio keeps its config and inventory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		return runConfigPath(cmd.OutOrStdout(), path, cfg)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.Path()
}

func runConfigInit(out io.Writer, path string) error {
	cfg := config.DefaultConfig()
	cacheDir, err := config.DefaultCacheDir()
	if err != nil {
		return err
	}
	cfg.CacheDir = cacheDir

	if err := config.Init(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Written config to %s\n", path)
	return nil
}

func runConfigPath(out io.Writer, path string, cfg *config.Config) error {
	fmt.Fprintf(out, "config:    %s\n", path)
	fmt.Fprintf(out, "inventory: %s\n", inventory.NewFileStore(cfg.CacheDir).Path())
	return nil
}
