// Package selector flattens an inventory into picker lines and maps a picked
// line back to the (host, application) it names.
package selector

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/redpencil/rpio/internal/inventory"
	"github.com/redpencil/rpio/internal/remote"
)

// Separator splits the application from the host in a candidate line.
const Separator = ":"

// Selector renders candidate lines. It never reads from the terminal.
type Selector struct {
	hostStyle lipgloss.Style
}

// New creates a selector that styles for stdout's color profile.
func New() *Selector {
	return NewWithRenderer(lipgloss.NewRenderer(os.Stdout))
}

// NewWithRenderer creates a selector on an explicit renderer.
func NewWithRenderer(r *lipgloss.Renderer) *Selector {
	return &Selector{hostStyle: r.NewStyle().Faint(true)}
}

// BuildCandidates returns one "<folder>:<host>" line per folder, hosts in
// lexical order and folders in stored order. The host part is dimmed.
func (s *Selector) BuildCandidates(store *inventory.Store) []string {
	lines := make([]string, 0, store.FolderCount())
	for _, name := range store.Hosts() {
		host := s.hostStyle.Render(name)
		for _, folder := range store.Servers[name].DataFolders {
			lines = append(lines, folder.Path+Separator+host)
		}
	}
	return lines
}

// Resolve parses a selected line. Styling and a trailing line break are
// ignored; spaces are kept, since folder names may carry them. The line
// splits at the first separator into application and host. Returns nil when
// the separator is missing or either side is empty.
func (s *Selector) Resolve(line string) *remote.Identity {
	plain := strings.TrimRight(ansi.Strip(line), "\r\n")

	app, host, found := strings.Cut(plain, Separator)
	if !found || app == "" || host == "" {
		return nil
	}
	return &remote.Identity{Host: host, AppName: app}
}
