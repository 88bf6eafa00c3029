package ui

import (
	stderrors "errors"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/redpencil/rpio/internal/errors"
)

// Prompt asks for a single value on the given terminal streams. ok is false
// when the operator aborts with esc or ctrl+c.
func Prompt(title string, output io.Writer, input io.Reader) (string, bool, error) {
	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&value),
		),
	).WithOutput(output).WithInput(input).WithShowHelp(false)

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, errors.WrapWithCode(err, errors.ErrResolve,
			"Prompt failed", "Try running again or pass the value as a flag.")
	}
	return strings.TrimSpace(value), true, nil
}
