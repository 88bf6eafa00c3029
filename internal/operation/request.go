package operation

import (
	"fmt"
	"strings"

	"github.com/redpencil/rpio/internal/remote"
	"github.com/redpencil/rpio/internal/util"
)

// TunnelParams are the tunnel settings. Zero values mean "not supplied".
type TunnelParams struct {
	ContainerName string
	RemotePort    int
	LocalPort     int
}

// Request is an operation as the operator asked for it, possibly incomplete.
type Request struct {
	Kind   Kind
	Tunnel TunnelParams
}

// Pending reports whether any parameter still needs resolving.
func (r Request) Pending() bool {
	if r.Kind != KindTunnel {
		return false
	}
	return r.Tunnel.ContainerName == "" || r.Tunnel.RemotePort == 0 || r.Tunnel.LocalPort == 0
}

// Operation is a fully resolved request. Only Resolver.Resolve produces one.
type Operation struct {
	Kind   Kind
	Tunnel TunnelParams
	// Interactive is set when any value came from a picker or prompt.
	Interactive bool
}

// CommandLine renders the invocation that runs this operation without any
// picking or prompting.
func (o *Operation) CommandLine(id remote.Identity) string {
	args := []string{"rpio", "apps", "--host", util.ShellArg(id.Host), "--app-name", util.ShellArg(id.AppName), string(o.Kind)}
	if o.Kind == KindTunnel {
		args = append(args,
			"--container-name", util.ShellArg(o.Tunnel.ContainerName),
			"--host-port", fmt.Sprint(o.Tunnel.LocalPort),
			"--remote-port", fmt.Sprint(o.Tunnel.RemotePort))
	}
	return strings.Join(args, " ")
}
