package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/inventory"
	"github.com/redpencil/rpio/internal/operation"
	"github.com/redpencil/rpio/internal/remote"
	"github.com/redpencil/rpio/internal/selector"
	"github.com/redpencil/rpio/internal/ui"
	"github.com/spf13/cobra"
)

const hintLabel = "Next time you can run the following command directly:"

// AppsOptions is an apps invocation as typed. Zero values mean "not given".
type AppsOptions struct {
	Refresh bool
	DryRun  bool
	Host    string
	AppName string
	// Kind is empty when no subcommand was given.
	Kind   operation.Kind
	Tunnel operation.TunnelParams
}

var (
	appsFlags   AppsOptions
	tunnelFlags operation.TunnelParams
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Pick an application and run an operation on it",
	Long: `Pick a (host, application) pair from the inventory and run an operation
against it. Anything not given as a flag is asked for interactively.

Examples:
  rpio apps
  rpio apps --refresh ssh-session
  rpio apps --host web1 --app-name shop hosted-url
  rpio apps --host web1 --app-name shop tunnel --container-name shop-db-1 --remote-port 8890 --host-port 8890`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return appsCommand(appsFlags)
	},
}

func newKindCmd(kind operation.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind),
		Short: kind.Description(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := appsFlags
			opts.Kind = kind
			if kind == operation.KindTunnel {
				if err := validatePortFlags(cmd); err != nil {
					return err
				}
				opts.Tunnel = tunnelFlags
			}
			return appsCommand(opts)
		},
	}
}

func init() {
	flags := appsCmd.PersistentFlags()
	flags.BoolVarP(&appsFlags.Refresh, "refresh", "r", false, "rebuild the inventory before picking")
	flags.BoolVar(&appsFlags.DryRun, "dry-run", false, "don't save the inventory; print commands instead of running them")
	flags.StringVar(&appsFlags.Host, "host", "", "host the application runs on")
	flags.StringVar(&appsFlags.AppName, "app-name", "", "application folder name")

	for _, kind := range operation.Kinds {
		cmd := newKindCmd(kind)
		if kind == operation.KindTunnel {
			cmd.Flags().StringVar(&tunnelFlags.ContainerName, operation.ParamContainerName, "", "container to forward to")
			cmd.Flags().IntVar(&tunnelFlags.RemotePort, operation.ParamRemotePort, 0, "port inside the container")
			cmd.Flags().IntVar(&tunnelFlags.LocalPort, operation.ParamLocalPort, 0, "local port to listen on")
		}
		appsCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(appsCmd)
}

// validatePortFlags rejects explicitly given ports outside 1-65535.
func validatePortFlags(cmd *cobra.Command) error {
	for _, name := range []string{operation.ParamRemotePort, operation.ParamLocalPort} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		raw := cmd.Flags().Lookup(name).Value.String()
		if _, err := operation.ParsePort(raw); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid --%s", name),
				"Ports are numbers between 1 and 65535.")
		}
	}
	return nil
}

func appsCommand(opts AppsOptions) error {
	w, err := SetupWorkflow()
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := interruptContext(context.Background())
	defer stop()

	return runApps(ctx, w, opts)
}

// interruptContext is cancelled by the first SIGINT. The handler is released
// right after, so a second Ctrl+C kills the process the default way.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// runApps selects the target, resolves the operation and executes it.
func runApps(ctx context.Context, w *WorkflowContext, opts AppsOptions) error {
	interactive := false

	id, ok, err := selectTarget(w, opts)
	if err != nil {
		return err
	}
	if !ok {
		return cancelled(w)
	}
	if opts.Host == "" || opts.AppName == "" {
		interactive = true
	}

	resolver := &operation.Resolver{Picker: w.Picker, Prompter: w.Prompter, Logger: w.Log}

	kind := opts.Kind
	if kind == "" {
		kind, ok, err = resolver.ChooseKind()
		if err != nil {
			return err
		}
		if !ok {
			return cancelled(w)
		}
		interactive = true
	}

	target := remote.NewTarget(id, w.Connector, w.Config.AppsDir, w.Log)
	op, err := resolver.Resolve(operation.Request{Kind: kind, Tunnel: opts.Tunnel}, target)
	if err != nil {
		return err
	}
	if op == nil {
		return cancelled(w)
	}
	interactive = interactive || op.Interactive

	// A tunnel only ends on Ctrl+C, so its hint goes first.
	if interactive && op.Kind == operation.KindTunnel {
		ui.PrintHint(w.Stderr, hintLabel, op.CommandLine(id))
	}

	if err := w.executor(opts.DryRun).Run(ctx, op, target); err != nil {
		return err
	}

	if interactive && op.Kind != operation.KindTunnel {
		ui.PrintHint(w.Stderr, hintLabel, op.CommandLine(id))
	}
	return nil
}

// selectTarget returns the identity named by --host and --app-name, or
// lets the operator pick one from the inventory. A half-given identity
// narrows the candidates. --refresh always rebuilds the inventory.
func selectTarget(w *WorkflowContext, opts AppsOptions) (remote.Identity, bool, error) {
	given := remote.Identity{Host: opts.Host, AppName: opts.AppName}
	if given.Host != "" && given.AppName != "" && !opts.Refresh {
		return given, true, nil
	}

	store, err := w.loadInventory(opts.Refresh, opts.DryRun)
	if err != nil {
		return remote.Identity{}, false, err
	}
	if given.Host != "" && given.AppName != "" {
		return given, true, nil
	}

	sel := selector.New()
	lines := filterCandidates(sel, sel.BuildCandidates(store), given)
	if len(lines) == 0 {
		return remote.Identity{}, false, noApplications(store, given)
	}

	line, ok, err := w.Picker.Pick("Application", lines)
	if err != nil || !ok {
		return remote.Identity{}, false, err
	}

	id := sel.Resolve(line)
	if id == nil {
		return remote.Identity{}, false, errors.New(errors.ErrResolve,
			fmt.Sprintf("Couldn't read the selection %q", line),
			"Pick a line of the form <application>:<host>.")
	}
	return *id, true, nil
}

// filterCandidates keeps the lines matching the non-empty parts of want.
func filterCandidates(sel *selector.Selector, lines []string, want remote.Identity) []string {
	if want.Host == "" && want.AppName == "" {
		return lines
	}

	var kept []string
	for _, line := range lines {
		id := sel.Resolve(line)
		if id == nil {
			continue
		}
		if want.Host != "" && id.Host != want.Host {
			continue
		}
		if want.AppName != "" && id.AppName != want.AppName {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func noApplications(store *inventory.Store, given remote.Identity) error {
	if store.FolderCount() == 0 {
		return errors.New(errors.ErrInventory,
			"No folders found",
			"Run 'rpio apps --refresh' to rebuild the inventory from your SSH config.")
	}

	var what string
	switch {
	case given.Host != "":
		what = "host " + given.Host
	default:
		what = "application " + given.AppName
	}
	return errors.New(errors.ErrInventory,
		"No applications found for "+what,
		"Check 'rpio servers' or rebuild the inventory with --refresh.")
}

func cancelled(w *WorkflowContext) error {
	fmt.Fprintln(w.Stderr, "Cancelled.")
	return nil
}
