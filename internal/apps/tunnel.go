package apps

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/operation"
	"github.com/redpencil/rpio/internal/remote"
	"github.com/redpencil/rpio/internal/ui"
)

// TunnelBindHost is the local interface tunnels listen on.
const TunnelBindHost = "127.0.0.1"

func (e *Executor) runTunnel(ctx context.Context, p operation.TunnelParams, t *remote.Target) error {
	spin := ui.NewSpinnerTo("Retrieving container IP", e.Stderr, e.Animate)
	spin.Start()
	ip, err := t.ContainerIP(p.ContainerName)
	if err != nil {
		spin.Fail()
		return err
	}
	spin.Success()
	e.log().Debug("container %s on %s has address %s", p.ContainerName, t.Host, ip)

	remoteAddr := net.JoinHostPort(ip, strconv.Itoa(p.RemotePort))
	localAddr := net.JoinHostPort(TunnelBindHost, strconv.Itoa(p.LocalPort))

	if e.DryRun {
		e.printCommand("ssh", "-N", "-L", fmt.Sprintf("%d:%s", p.LocalPort, remoteAddr), t.Host)
		return nil
	}

	client, err := e.connect(t)
	if err != nil {
		return err
	}
	fwd, ok := client.(ForwardClient)
	if !ok {
		return errors.New(errors.ErrSSH,
			fmt.Sprintf("The connection to %s can't forward ports", t.Host),
			fmt.Sprintf("Forward by hand: ssh -N -L %d:%s %s", p.LocalPort, remoteAddr, t.Host))
	}

	return fwd.Forward(ctx, localAddr, remoteAddr, func(net.Addr) {
		fmt.Fprintf(e.Stdout, "Opening tunnel on http://localhost:%d\n", p.LocalPort)
		fmt.Fprintln(e.Stdout, "Press Ctrl+C to exit")
	})
}
