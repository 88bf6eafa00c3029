package ui

import (
	"io"
	"os"

	"github.com/redpencil/rpio/internal/errors"
	"golang.org/x/term"
)

// Console is the interactive side of rpio: it satisfies the operation
// package's Picker and Prompter on real terminal streams.
type Console struct {
	In  io.Reader
	Out io.Writer

	// Interactive reports whether In is a terminal. Without one every
	// question fails with a hint to pass the value as a flag.
	Interactive bool
}

// NewConsole binds a Console to stdin, drawing on stderr so stdout stays
// clean for command output.
func NewConsole() *Console {
	return &Console{
		In:          os.Stdin,
		Out:         os.Stderr,
		Interactive: IsTerminal(os.Stdin),
	}
}

// Pick shows the fuzzy line picker.
func (c *Console) Pick(title string, lines []string) (string, bool, error) {
	if !c.Interactive {
		return "", false, notInteractive(title)
	}
	return PickLine(title, lines, c.Out, c.In)
}

// Prompt asks for one value.
func (c *Console) Prompt(title string) (string, bool, error) {
	if !c.Interactive {
		return "", false, notInteractive(title)
	}
	return Prompt(title, c.Out, c.In)
}

func notInteractive(title string) error {
	return errors.New(errors.ErrResolve,
		"Can't ask for '"+title+"' without a terminal",
		"Pass the value as a flag, see rpio apps --help.")
}

// IsTerminal returns true if the file descriptor is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
