package apps

import (
	"fmt"

	"github.com/redpencil/rpio/internal/operation"
	"github.com/redpencil/rpio/internal/remote"
	"github.com/redpencil/rpio/internal/sync"
	"github.com/redpencil/rpio/internal/ui"
)

func (e *Executor) runRetrieve(t *remote.Target, kind operation.Kind) error {
	root, err := FindProjectRoot(e.WorkDir, e.Config.Project)
	if err != nil {
		return err
	}

	source := sync.Backups
	if kind == operation.KindRetrieveFiles {
		source = sync.Files
	}
	opts := sync.Options{
		Host:        t.Host,
		RemoteDir:   t.Dir(),
		ProjectRoot: root,
		Source:      source,
	}

	if e.DryRun {
		fmt.Fprintln(e.Stdout, sync.CommandLine(opts))
		return nil
	}

	client, err := e.connect(t)
	if err != nil {
		return err
	}
	if err := sync.CheckRemote(client, t.Host); err != nil {
		return err
	}

	fmt.Fprintln(e.Stderr, ui.MutedStyle().Render(
		fmt.Sprintf("Retrieving %s of %s into %s", source, t.Identity, root)))
	return sync.Retrieve(opts, e.Stdout)
}
