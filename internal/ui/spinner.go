package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState is where a spinner is in its lifecycle.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
	SpinnerSkipped
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const frameInterval = 80 * time.Millisecond

// Spinner is a one-line status indicator. A static spinner prints only its
// final line, so piped output carries no carriage returns.
type Spinner struct {
	mu       sync.Mutex
	w        io.Writer
	label    string
	state    SpinnerState
	animated bool
	frame    int
	started  time.Time
	drawn    int // visible width of the frame currently on screen

	stop chan struct{}
	done chan struct{}
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(label string, w io.Writer, animated bool) *Spinner {
	return &Spinner{w: w, label: label, animated: animated}
}

// Start marks the spinner in progress and, when animated, starts drawing
// frames until Stop or one of the finishers is called.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SpinnerInProgress {
		return
	}
	s.state = SpinnerInProgress
	s.started = time.Now()
	if !s.animated {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawFrame()
	go s.loop(s.stop, s.done)
}

// Stop halts the animation. The state is left as is.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Success finishes the line with the completion symbol.
func (s *Spinner) Success() { s.finish(SpinnerSuccess) }

// Fail finishes the line with the failure symbol.
func (s *Spinner) Fail() { s.finish(SpinnerFailed) }

// Skip finishes the line with the skipped symbol.
func (s *Spinner) Skip() { s.finish(SpinnerSkipped) }

// State returns the current state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetLabel replaces the label; the next frame or final line shows it.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawFrame()
			s.mu.Unlock()
		}
	}
}

// drawFrame and erase are called with s.mu held.
func (s *Spinner) drawFrame() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	line := fmt.Sprintf("%s %s...", lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]), s.label)
	s.erase()
	_, _ = io.WriteString(s.w, "\r"+line)
	s.drawn = lipgloss.Width(line)
}

func (s *Spinner) erase() {
	if s.drawn == 0 {
		return
	}
	_, _ = io.WriteString(s.w, "\r"+strings.Repeat(" ", s.drawn)+"\r")
	s.drawn = 0
}

func (s *Spinner) finish(state SpinnerState) {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	symbol, style := SymbolPending, MutedStyle()
	switch state {
	case SpinnerSuccess:
		symbol, style = SymbolComplete, SuccessStyle()
	case SpinnerFailed:
		symbol, style = SymbolFail, ErrorStyle()
	case SpinnerSkipped:
		symbol, style = SymbolSkipped, WarningStyle()
	}

	var elapsed time.Duration
	if !s.started.IsZero() {
		elapsed = time.Since(s.started)
	}

	s.erase()
	fmt.Fprintf(s.w, "%s %s %s\n", style.Render(symbol), s.label, MutedStyle().Render(formatDuration(elapsed)))
}

// formatDuration renders short durations with two decimals, longer ones
// with one ("0.05s", "1.2s").
func formatDuration(d time.Duration) string {
	if secs := d.Seconds(); secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
