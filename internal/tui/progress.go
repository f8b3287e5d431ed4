// Package tui renders transfer progress while the orchestrator runs.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"mms/internal/core"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	unitStyle   = lipgloss.NewStyle().Faint(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// EventMsg wraps an orchestrator progress event for the TUI.
type EventMsg struct {
	Event core.ProgressEvent
}

// DoneMsg signals that the transfer finished and carries the result.
type DoneMsg struct {
	Result *core.Result
	Err    error
}

// CancelMsg is emitted by the model when the user asks to abort.
type CancelMsg struct{}

// unitRow is the display state of one unit.
type unitRow struct {
	name       string
	kind       core.UnitKind
	state      core.UnitState
	attempt    int
	downloaded int64
	total      int64
	reason     string
}

// Model is a bubbletea model showing per-unit and total progress. Feed
// it EventMsg values via Program.Send from the orchestrator's event
// callback, then a DoneMsg; 'q' or ctrl+c requests cancellation via the
// cancel callback.
type Model struct {
	title      string
	totalBytes int64
	bar        progress.Model
	cancel     func()

	rows    map[string]*unitRow
	order   []string
	done    bool
	err     error
	result  *core.Result
	width   int
	written int64
}

// NewModel creates a progress model. totalBytes sizes the overall bar;
// cancel is invoked when the user aborts (may be nil).
func NewModel(title string, totalBytes int64, cancel func()) Model {
	return Model{
		title:      title,
		totalBytes: totalBytes,
		bar:        progress.New(progress.WithDefaultGradient()),
		cancel:     cancel,
		rows:       make(map[string]*unitRow),
		width:      80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.done {
				return m, tea.Quit
			}
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 10
		return m, nil

	case EventMsg:
		m.apply(msg.Event)
		return m, nil

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(ev core.ProgressEvent) {
	row, ok := m.rows[ev.Unit]
	if !ok {
		row = &unitRow{name: ev.Unit, kind: ev.Kind}
		m.rows[ev.Unit] = row
		m.order = append(m.order, ev.Unit)
		sort.Strings(m.order)
	}

	// Overall byte progress only tracks download units; archive bytes
	// are excluded since totalBytes is the sum of the plan's entries
	// and counting the bundle too would double-book them.
	if ev.Kind == core.UnitDownload && ev.Downloaded > row.downloaded {
		m.written += ev.Downloaded - row.downloaded
	}

	row.state = ev.State
	row.attempt = ev.Attempt
	row.reason = ev.Reason
	if ev.Downloaded > 0 {
		row.downloaded = ev.Downloaded
	}
	if ev.TotalBytes > 0 {
		row.total = ev.TotalBytes
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.totalBytes > 0 {
		ratio := float64(m.written) / float64(m.totalBytes)
		if ratio > 1 {
			ratio = 1
		}
		b.WriteString(m.bar.ViewAs(ratio))
		b.WriteString("\n\n")
	}

	for _, name := range m.order {
		row := m.rows[name]
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(failStyle.Render(fmt.Sprintf("finished with error: %v", m.err)))
		} else {
			b.WriteString(okStyle.Render("finished"))
		}
		b.WriteString(footerStyle.Render("  press q to close"))
	} else {
		b.WriteString(footerStyle.Render("\npress q to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

func renderRow(row *unitRow) string {
	label := fmt.Sprintf("%-8s %s", row.kind.String(), row.name)
	switch row.state {
	case core.StateSucceeded:
		return okStyle.Render("✓ ") + label
	case core.StateFailed:
		return failStyle.Render("✗ ") + label + unitStyle.Render(" ("+row.reason+")")
	case core.StateInProgress:
		if row.total > 0 {
			pct := float64(row.downloaded) / float64(row.total) * 100
			return "… " + label + unitStyle.Render(fmt.Sprintf(" %3.0f%%", pct))
		}
		return "… " + label
	default:
		if row.attempt > 1 {
			return "  " + label + unitStyle.Render(fmt.Sprintf(" (retry %d)", row.attempt))
		}
		return "  " + label
	}
}
