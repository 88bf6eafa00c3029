package ui

import (
	"fmt"
	"io"

	"github.com/redpencil/rpio/internal/util"
)

// ProbeProgress reports a discovery pass, one spinner line per host.
// Hosts without applications are marked skipped: that covers both an empty
// apps directory and a host that could not be reached.
type ProbeProgress struct {
	w        io.Writer
	animated bool
	current  *Spinner
}

// NewProbeProgress writes to w. Animation should only be enabled when w is a
// terminal.
func NewProbeProgress(w io.Writer, animated bool) *ProbeProgress {
	return &ProbeProgress{w: w, animated: animated}
}

// Start begins the line for hostName.
func (p *ProbeProgress) Start(hostName string) {
	if p.current != nil {
		p.current.Stop()
	}
	p.current = NewSpinnerTo("Probing "+hostName, p.w, p.animated)
	p.current.Start()
}

// Done finishes the line for hostName with its folder count.
func (p *ProbeProgress) Done(hostName string, folders int) {
	s := p.current
	if s == nil {
		s = NewSpinnerTo("", p.w, false)
	}
	p.current = nil

	s.SetLabel(fmt.Sprintf("%s: %d %s", hostName, folders, util.Pluralize(folders, "app", "apps")))
	if folders > 0 {
		s.Success()
		return
	}
	s.Skip()
}
