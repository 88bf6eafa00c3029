package operation

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redpencil/rpio/internal/errors"
	"github.com/redpencil/rpio/internal/logger"
)

// Parameter names, as spelled by the apps command flags.
const (
	ParamContainerName = "container-name"
	ParamRemotePort    = "remote-port"
	ParamLocalPort     = "host-port"
)

// Picker lets the operator choose one line. ok is false on cancellation.
type Picker interface {
	Pick(title string, lines []string) (choice string, ok bool, err error)
}

// Prompter asks the operator for a free-form value. ok is false on
// cancellation.
type Prompter interface {
	Prompt(title string) (value string, ok bool, err error)
}

// ContainerLister is the remote query the resolver needs. *remote.Target
// satisfies it.
type ContainerLister interface {
	ListContainers() []string
}

// UnresolvedError names the parameter that couldn't be resolved.
type UnresolvedError struct {
	Param  string
	Reason string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Reason)
}

// ParamError returns the parameter named by a resolution failure, or "" if
// err is not one.
func ParamError(err error) string {
	var unresolved *UnresolvedError
	if stderrors.As(err, &unresolved) {
		return unresolved.Param
	}
	return ""
}

func unresolved(param, reason, suggestion string) error {
	return errors.WrapWithCode(&UnresolvedError{Param: param, Reason: reason}, errors.ErrResolve,
		fmt.Sprintf("Couldn't resolve --%s", param), suggestion)
}

// Resolver fills missing request parameters. Each parameter is taken from
// the request if supplied, else derived from the remote host, else asked for.
type Resolver struct {
	Picker   Picker
	Prompter Prompter
	Logger   logger.Logger
}

func (r *Resolver) log() logger.Logger {
	if r.Logger == nil {
		return logger.Noop()
	}
	return r.Logger
}

// Resolve completes req against target. A cancelled picker returns
// (nil, nil). Any failure discards the values resolved so far.
func (r *Resolver) Resolve(req Request, target ContainerLister) (*Operation, error) {
	op := &Operation{Kind: req.Kind}
	if req.Kind != KindTunnel {
		return op, nil
	}

	params := req.Tunnel

	if params.ContainerName == "" {
		containers := target.ListContainers()
		if len(containers) == 0 {
			return nil, unresolved(ParamContainerName, "could not find a container",
				"Is the application running? Pass --container-name to skip the lookup.")
		}
		choice, ok, err := r.Picker.Pick("Container", containers)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		r.log().Debug("resolved %s = %s", ParamContainerName, choice)
		params.ContainerName = choice
		op.Interactive = true
	}

	if params.RemotePort == 0 {
		port, err := r.promptPort(ParamRemotePort, "Remote port (inside the container)")
		if err != nil {
			return nil, err
		}
		params.RemotePort = port
		op.Interactive = true
	}

	if params.LocalPort == 0 {
		port, err := r.promptPort(ParamLocalPort, "Local port")
		if err != nil {
			return nil, err
		}
		params.LocalPort = port
		op.Interactive = true
	}

	op.Tunnel = params
	return op, nil
}

func (r *Resolver) promptPort(param, title string) (int, error) {
	raw, ok, err := r.Prompter.Prompt(title)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, unresolved(param, "prompt cancelled", fmt.Sprintf("Pass --%s to skip the prompt.", param))
	}

	port, err := ParsePort(raw)
	if err != nil {
		return 0, unresolved(param, err.Error(), "Enter a port number between 1 and 65535.")
	}
	r.log().Debug("resolved %s = %d", param, port)
	return port, nil
}

// ParsePort parses a TCP port number in 1-65535.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%d is not a valid port", port)
	}
	return port, nil
}

// ChooseKind asks the operator which operation to run. ok is false on
// cancellation.
func (r *Resolver) ChooseKind() (Kind, bool, error) {
	lines := make([]string, len(Kinds))
	for i, k := range Kinds {
		lines[i] = string(k)
	}

	choice, ok, err := r.Picker.Pick("Action", lines)
	if err != nil || !ok {
		return "", false, err
	}
	kind, err := ParseKind(choice)
	if err != nil {
		return "", false, err
	}
	return kind, true, nil
}
