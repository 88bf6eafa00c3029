package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/redpencil/rpio/internal/selector"
	"github.com/redpencil/rpio/internal/ui"
	"github.com/spf13/cobra"
)

// ServersOptions holds the servers command flags.
type ServersOptions struct {
	Refresh bool
	DryRun  bool
	// Hosts prints a per-host summary instead of candidate lines.
	Hosts bool
}

var serversFlags ServersOptions

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the applications in the inventory",
	Long: `Print one <application>:<host> line per application in the inventory,
the same lines the apps picker offers.

Examples:
  rpio servers
  rpio servers --refresh
  rpio servers --hosts`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := SetupWorkflow()
		if err != nil {
			return err
		}
		defer w.Close()
		return runServers(w, serversFlags, time.Now())
	},
}

func init() {
	serversCmd.Flags().BoolVarP(&serversFlags.Refresh, "refresh", "r", false, "rebuild the inventory first")
	serversCmd.Flags().BoolVar(&serversFlags.DryRun, "dry-run", false, "refresh without saving the inventory")
	serversCmd.Flags().BoolVar(&serversFlags.Hosts, "hosts", false, "summarise per host")
	rootCmd.AddCommand(serversCmd)
}

func runServers(w *WorkflowContext, opts ServersOptions, now time.Time) error {
	store, err := w.loadInventory(opts.Refresh, opts.DryRun)
	if err != nil {
		return err
	}

	if opts.Hosts {
		rows := make([]ui.HostTableRow, 0, len(store.Servers))
		for _, name := range store.Hosts() {
			entry := store.Servers[name]
			rows = append(rows, ui.HostTableRow{
				Host:        name,
				Folders:     len(entry.DataFolders),
				LastUpdated: time.Unix(entry.LastUpdated, 0),
			})
		}
		fmt.Fprintln(w.Stdout, ui.RenderHostTable(rows, now))
		return nil
	}

	lines := selector.NewWithRenderer(lipgloss.NewRenderer(w.Stdout)).BuildCandidates(store)
	if len(lines) == 0 {
		fmt.Fprintln(w.Stdout, "No folders found")
		return nil
	}
	for _, line := range lines {
		fmt.Fprintln(w.Stdout, line)
	}
	return nil
}
