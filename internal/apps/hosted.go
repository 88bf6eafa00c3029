package apps

import (
	"fmt"

	"github.com/redpencil/rpio/internal/remote"
	"github.com/redpencil/rpio/internal/ui"
	"github.com/redpencil/rpio/internal/util"
)

func (e *Executor) runHostedURL(t *remote.Target) error {
	hc := e.Config.HostedURL
	if e.DryRun {
		e.printCommand("ssh", t.Host, fmt.Sprintf("cd %s && docker compose config", util.ShellQuotePreserveTilde(t.Dir())))
		return nil
	}

	url, found, err := t.HostedURL(hc.Service, hc.Key)
	if err != nil {
		return err
	}
	if !found {
		ui.PrintWarning(e.Stderr, fmt.Sprintf("%s sets no %s on its %s service", t.Identity, hc.Key, hc.Service))
		return nil
	}

	fmt.Fprintln(e.Stdout, url)
	return nil
}
