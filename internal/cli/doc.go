// Package cli implements the rpio command-line interface.
//
// Each Cobra command parses its flags into an options struct and hands it,
// together with a WorkflowContext, to a run function. The context carries
// everything loaded once per invocation: configuration, logger, SSH
// connector and the interactive console. Tests build a WorkflowContext by
// hand around a fake connector and scripted pickers.
//
// # Command Structure
//
//	rpio apps [ssh-session|tunnel|retrieve-backup|retrieve-files|hosted-url]
//	rpio servers        - List the inventory
//	rpio config init    - Write the default config file
//	rpio config path    - Show config and cache locations
//	rpio version        - Print version information
//
// # Apps Workflow
//
// The apps command runs the same phases whatever the operation:
//
//  1. Load the inventory, refreshing it first when asked or when none is cached
//  2. Pick the (host, application) pair unless --host and --app-name name it
//  3. Choose the operation when no subcommand was given
//  4. Resolve missing operation parameters, asking the host or the operator
//  5. Execute, or print the equivalent command with --dry-run
//
// Whenever something was picked interactively the command prints the
// invocation that repeats it without questions.
//
// # Exit Status
//
// Only Execute calls os.Exit. Errors print their structured message and
// exit 1; a remote session's own exit status passes through; cancelling a
// picker exits 0.
package cli
