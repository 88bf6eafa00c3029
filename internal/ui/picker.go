package ui

import (
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/redpencil/rpio/internal/errors"
)

// lineItem implements list.Item for one picker line. The line may carry
// ANSI styling; filtering matches the visible text only.
type lineItem string

func (i lineItem) Title() string       { return string(i) }
func (i lineItem) Description() string { return "" }
func (i lineItem) FilterValue() string { return ansi.Strip(string(i)) }

// LinePickerModel is a Bubble Tea model for choosing one line.
type LinePickerModel struct {
	list     list.Model
	selected string
	picked   bool
	quitting bool
}

type linePickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
	Abort key.Binding
}

var linePickerKeys = linePickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc"),
		key.WithHelp("q/esc", "cancel"),
	),
	Abort: key.NewBinding(key.WithKeys("ctrl+c")),
}

// NewLinePickerModel creates a picker over lines, titled title.
func NewLinePickerModel(title string, lines []string) LinePickerModel {
	items := make([]list.Item, len(lines))
	for i, l := range lines {
		items[i] = lineItem(l)
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorSecondary)

	l := list.New(items, delegate, 80, 20)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{linePickerKeys.Enter, linePickerKeys.Quit}
	}

	return LinePickerModel{list: l}
}

// Init implements tea.Model.
func (m LinePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m LinePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, linePickerKeys.Abort) {
			m.quitting = true
			return m, tea.Quit
		}
		// While typing a filter, keys belong to the filter input.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, linePickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(lineItem); ok {
				m.selected = string(item)
				m.picked = true
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, linePickerKeys.Quit):
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m LinePickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the chosen line. ok is false if the picker was cancelled.
func (m LinePickerModel) Selected() (line string, ok bool) {
	return m.selected, m.picked
}

// PickLine runs the picker on the given terminal streams. The returned line
// is exactly one of lines, styling included.
func PickLine(title string, lines []string, output io.Writer, input io.Reader) (string, bool, error) {
	if len(lines) == 0 {
		return "", false, nil
	}

	p := tea.NewProgram(
		NewLinePickerModel(title, lines),
		tea.WithOutput(output),
		tea.WithInput(input),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", false, errors.WrapWithCode(err, errors.ErrResolve,
			"Picker failed", "Try running again or pass the value as a flag.")
	}

	if m, ok := finalModel.(LinePickerModel); ok {
		line, picked := m.Selected()
		return line, picked, nil
	}
	return "", false, nil
}
