package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpencil/rpio/internal/errors"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m LinePickerModel, msg tea.Msg) LinePickerModel {
	t.Helper()
	next, _ := m.Update(msg)
	picker, ok := next.(LinePickerModel)
	require.True(t, ok)
	return picker
}

func TestLineItem(t *testing.T) {
	styled := "app-a:\x1b[2mhost1\x1b[0m"
	item := lineItem(styled)

	assert.Equal(t, styled, item.Title(), "the line is shown as given")
	assert.Empty(t, item.Description())
	assert.Equal(t, "app-a:host1", item.FilterValue(), "filtering sees visible text only")
}

func TestLinePicker_EnterSelectsCurrent(t *testing.T) {
	m := NewLinePickerModel("Pick", []string{"app-a:host1", "app-b:host1"})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	line, ok := m.Selected()
	assert.True(t, ok)
	assert.Equal(t, "app-a:host1", line)
	assert.Empty(t, m.View())
}

func TestLinePicker_Cancel(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", runeKey('q')},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewLinePickerModel("Pick", []string{"app-a:host1"})
			m = update(t, m, tt.msg)

			line, ok := m.Selected()
			assert.False(t, ok)
			assert.Empty(t, line)
			assert.Empty(t, m.View())
		})
	}
}

func TestLinePicker_TypingQWhileFilteringDoesNotQuit(t *testing.T) {
	m := NewLinePickerModel("Pick", []string{"quay:host1", "app-b:host1"})

	m = update(t, m, runeKey('/'))
	require.Equal(t, list.Filtering, m.list.FilterState())

	m = update(t, m, runeKey('q'))

	_, ok := m.Selected()
	assert.False(t, ok)
	assert.False(t, m.quitting)
	assert.NotEmpty(t, m.View())
}

func TestLinePicker_WindowSize(t *testing.T) {
	m := NewLinePickerModel("Pick", []string{"a"})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.list.Width())
	assert.Equal(t, 38, m.list.Height())
}

func TestPickLine_NoLines(t *testing.T) {
	line, ok, err := PickLine("Pick", nil, &bytes.Buffer{}, strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, line)
}

func TestConsole_NotInteractive(t *testing.T) {
	c := &Console{In: strings.NewReader(""), Out: &bytes.Buffer{}}

	_, ok, err := c.Pick("Container", []string{"web"})
	assert.False(t, ok)
	assert.True(t, errors.IsCode(err, errors.ErrResolve))
	assert.Contains(t, err.Error(), "Container")

	_, ok, err = c.Prompt("Local port")
	assert.False(t, ok)
	assert.True(t, errors.IsCode(err, errors.ErrResolve))
	assert.Contains(t, err.Error(), "Local port")
}

func TestIsTerminal_File(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
}
