// Package ui provides the terminal pieces of rpio's CLI: the fuzzy line
// picker, port prompts, the discovery spinner and a few styled printers.
//
// # Components Overview
//
//	LinePicker    - Bubbles list over plain or styled lines, filterable with "/"
//	Prompt        - Single free-form value via a Huh input form
//	Console       - Picker and prompter bound to the process terminal
//	Spinner       - Animated status indicator for long-running operations
//	ProbeProgress - One spinner line per host during a discovery pass
//	HostTable     - Inventory summary per host
//
// # Color Scheme
//
// Colors are ANSI codes so they follow the operator's terminal theme:
//
//	ColorSuccess   (green)  - Hosts with applications
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings and empty hosts
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - Selection highlight
//
// Use DisableColors() to switch to monochrome output.
//
// # Spinner Usage
//
//	s := ui.NewSpinnerTo("Probing host1", os.Stderr, ui.IsTerminal(os.Stderr))
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail() or s.Skip()
package ui
