// Package tui is the terminal front end of the workflow: prompts are small
// bubbletea programs, reports are lipgloss styled lines and tables.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"peer-review-assigner/internal/prompt"
)

type styles struct {
	question lipgloss.Style
	hint     lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	info     lipgloss.Style
	success  lipgloss.Style
	warn     lipgloss.Style
	err      lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	border   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		question: r.NewStyle().Bold(true),
		hint:     r.NewStyle().Foreground(lipgloss.Color("#888888")),
		cursor:   r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		selected: r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
		info:     r.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
		success:  r.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		warn:     r.NewStyle().Foreground(lipgloss.Color("#F7B801")),
		err:      r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		header:   r.NewStyle().Bold(true).Padding(0, 1),
		cell:     r.NewStyle().Padding(0, 1),
		border:   r.NewStyle().Foreground(lipgloss.Color("#999999")),
	}
}

// Terminal asks questions on in and writes everything to out.
type Terminal struct {
	in     io.Reader
	out    io.Writer
	styles styles

	// one program owns the terminal at a time
	mu sync.Mutex
}

var (
	_ prompt.Prompter = (*Terminal)(nil)
	_ prompt.Reporter = (*Terminal)(nil)
)

func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:     in,
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

func (t *Terminal) Input(ctx context.Context, message string) (string, error) {
	final, err := t.run(ctx, newInputModel(t.styles, message))
	if err != nil {
		return "", err
	}

	m := final.(inputModel)
	if m.interrupted {
		return "", prompt.ErrInterrupted
	}
	return m.Value(), nil
}

func (t *Terminal) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	final, err := t.run(ctx, newConfirmModel(t.styles, message, defaultYes))
	if err != nil {
		return false, err
	}

	m := final.(confirmModel)
	if m.interrupted {
		return false, prompt.ErrInterrupted
	}
	return m.answer, nil
}

func (t *Terminal) MultiSelect(ctx context.Context, message string, choices []prompt.Choice) ([]string, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("multi select %q: no choices", message)
	}

	final, err := t.run(ctx, newSelectModel(t.styles, message, choices))
	if err != nil {
		return nil, err
	}

	m := final.(selectModel)
	if m.interrupted {
		return nil, prompt.ErrInterrupted
	}
	return m.Selected(), nil
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)

	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, prompt.ErrInterrupted
		}
		return nil, fmt.Errorf("run prompt: %w", err)
	}

	return final, nil
}

func (t *Terminal) Info(message string)    { t.println(t.styles.info, message) }
func (t *Terminal) Success(message string) { t.println(t.styles.success, message) }
func (t *Terminal) Warn(message string)    { t.println(t.styles.warn, message) }
func (t *Terminal) Error(message string)   { t.println(t.styles.err, message) }

func (t *Terminal) Table(headers []string, rows [][]string) {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(t.styles.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.styles.header
			}
			return t.styles.cell
		})

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, tbl.Render())
}

func (t *Terminal) println(style lipgloss.Style, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, style.Render(message))
}
