package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "rpio",
	Short: "Find and operate on applications across an SSH fleet",
	Long: `rpio keeps an inventory of the applications hosted on the machines in
your SSH config and lets you pick one to open a shell in, tunnel into,
pull data from, or look up the public URL of.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/rpio/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command and exits the process with its status.
func Execute() {
	os.Exit(exitStatus(rootCmd.Execute(), os.Stderr))
}

// exitStatus maps a command error to a process exit status, printing it
// unless it only carries a remote exit code.
func exitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}

	msg := err.Error()
	if isUnknownCommandError(err) {
		msg += "\nRun 'rpio --help' for usage."
	}
	fmt.Fprintln(stderr, strings.TrimRight(msg, "\n"))
	return 1
}

// isUnknownCommandError detects Cobra's parse errors.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
