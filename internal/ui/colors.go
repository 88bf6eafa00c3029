package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// GradientColors is the spinner color cycle.
var GradientColors = []lipgloss.Color{
	"5",  // Magenta
	"13", // Bright magenta
	"4",  // Blue
	"6",  // Cyan
	"14", // Bright cyan
	"2",  // Green
}

// DisableColors switches the default renderer to plain text. Styled output
// keeps its layout but carries no escape sequences.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// SuccessStyle renders a positive status.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders a failure.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

// WarningStyle renders a warning.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning)
}

// PrintWarning writes a yellow warning line to w.
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", WarningStyle().Render(SymbolWarning), message)
}

// PrintHint writes a label followed by an indented command line, the way
// rpio suggests a non-interactive invocation.
func PrintHint(w io.Writer, label, command string) {
	fmt.Fprintln(w, MutedStyle().Render(label))
	fmt.Fprintf(w, "  %s\n", command)
}
