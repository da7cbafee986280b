package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"peer-review-assigner/internal/prompt"
)

// inputModel reads one line of text.
type inputModel struct {
	styles      styles
	message     string
	input       textinput.Model
	done        bool
	interrupted bool
}

func newInputModel(s styles, message string) inputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Focus()

	return inputModel{styles: s, message: message, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.interrupted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return fmt.Sprintf("%s %s\n", m.styles.question.Render(m.message), m.input.Value())
	}
	return fmt.Sprintf("%s\n%s\n", m.styles.question.Render(m.message), m.input.View())
}

func (m inputModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// confirmModel asks a yes/no question; enter takes the default.
type confirmModel struct {
	styles      styles
	message     string
	defaultYes  bool
	answer      bool
	done        bool
	interrupted bool
}

func newConfirmModel(s styles, message string, defaultYes bool) confirmModel {
	return confirmModel{styles: s, message: message, defaultYes: defaultYes}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.interrupted = true
		return m, tea.Quit
	case "y", "Y":
		m.answer = true
	case "n", "N":
		m.answer = false
	case "enter":
		m.answer = m.defaultYes
	default:
		return m, nil
	}

	m.done = true
	return m, tea.Quit
}

func (m confirmModel) View() string {
	hint := "[y/N]"
	if m.defaultYes {
		hint = "[Y/n]"
	}

	if m.done {
		answer := "no"
		if m.answer {
			answer = "yes"
		}
		return fmt.Sprintf("%s %s %s\n", m.styles.question.Render(m.message), m.styles.hint.Render(hint), answer)
	}
	return fmt.Sprintf("%s %s ", m.styles.question.Render(m.message), m.styles.hint.Render(hint))
}

// choiceItem adapts a prompt.Choice to the list component.
type choiceItem struct {
	prompt.Choice
}

func (i choiceItem) FilterValue() string { return i.Label }

// checklistDelegate draws one row per choice with its checkbox. checked is
// shared with the owning selectModel.
type checklistDelegate struct {
	styles  styles
	checked map[int]bool
}

func (d checklistDelegate) Height() int                             { return 1 }
func (d checklistDelegate) Spacing() int                            { return 0 }
func (d checklistDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d checklistDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(choiceItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = d.styles.cursor.Render("> ")
	}
	box := "[ ]"
	label := c.Label
	if d.checked[index] {
		box = "[x]"
		label = d.styles.selected.Render(label)
	}
	fmt.Fprintf(w, "%s%s %s", cursor, box, label)
}

const (
	defaultListWidth  = 80
	defaultListRows   = 10
	listChromeHeight  = 4
	selectFooterLines = 3
	minListHeight     = 5
)

// selectModel is a paged checklist sized to the terminal. It does not finish
// while nothing is checked.
type selectModel struct {
	styles      styles
	message     string
	choices     []prompt.Choice
	list        list.Model
	checked     map[int]bool
	warning     string
	done        bool
	interrupted bool
}

func newSelectModel(s styles, message string, choices []prompt.Choice) selectModel {
	checked := make(map[int]bool)

	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = choiceItem{Choice: c}
	}

	l := list.New(items, checklistDelegate{styles: s, checked: checked}, defaultListWidth, min(len(choices), defaultListRows)+listChromeHeight)
	l.Title = message
	l.Styles.Title = s.question
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.KeyMap.ShowFullHelp.SetEnabled(false)

	return selectModel{styles: s, message: message, choices: choices, list: l, checked: checked}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, max(minListHeight, msg.Height-selectFooterLines))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.interrupted = true
			return m, tea.Quit
		case " ", "space", "x":
			if len(m.choices) > 0 {
				i := m.list.Index()
				m.checked[i] = !m.checked[i]
				m.warning = ""
			}
			return m, nil
		case "a":
			all := len(m.Selected()) == len(m.choices)
			for i := range m.choices {
				m.checked[i] = !all
			}
			m.warning = ""
			return m, nil
		case "enter":
			if len(m.Selected()) == 0 {
				m.warning = "Select at least one entry."
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() string {
	var b strings.Builder

	if m.done {
		labels := make([]string, 0, len(m.checked))
		for i, c := range m.choices {
			if m.checked[i] {
				labels = append(labels, c.Label)
			}
		}
		b.WriteString(m.styles.question.Render(m.message))
		b.WriteString("\n")
		b.WriteString(m.styles.selected.Render(strings.Join(labels, ", ")))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.styles.hint.Render("space: toggle, a: all, ←/→: page, enter: done"))
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(m.styles.warn.Render(m.warning))
		b.WriteString("\n")
	}

	return b.String()
}

// Selected returns the checked keys in choice order.
func (m selectModel) Selected() []string {
	keys := make([]string, 0, len(m.checked))
	for i, c := range m.choices {
		if m.checked[i] {
			keys = append(keys, c.Key)
		}
	}
	return keys
}
