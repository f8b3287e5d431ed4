package tui_test

import (
	"errors"
	"strings"
	"testing"

	"mms/internal/core"
	"mms/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(m tea.Model, msg tea.Msg) tea.Model {
	next, _ := m.Update(msg)
	return next
}

func TestModel_TracksUnitStates(t *testing.T) {
	var m tea.Model = tui.NewModel("Syncing smp (main)", 100, nil)

	m = update(m, tui.EventMsg{Event: core.ProgressEvent{
		Unit: "a.jar", Kind: core.UnitDownload, State: core.StateQueued, Attempt: 1,
	}})
	m = update(m, tui.EventMsg{Event: core.ProgressEvent{
		Unit: "a.jar", Kind: core.UnitDownload, State: core.StateInProgress, Attempt: 1,
		Downloaded: 50, TotalBytes: 100,
	}})

	view := m.View()
	assert.Contains(t, view, "Syncing smp (main)")
	assert.Contains(t, view, "a.jar")
	assert.Contains(t, view, "50%")

	m = update(m, tui.EventMsg{Event: core.ProgressEvent{
		Unit: "a.jar", Kind: core.UnitDownload, State: core.StateSucceeded, Attempt: 1,
		Downloaded: 100,
	}})
	assert.Contains(t, m.View(), "✓")
}

func TestModel_ShowsFailureReason(t *testing.T) {
	var m tea.Model = tui.NewModel("sync", 0, nil)

	m = update(m, tui.EventMsg{Event: core.ProgressEvent{
		Unit: "bad.jar", Kind: core.UnitDownload, State: core.StateFailed, Attempt: 3,
		Reason: "HTTP error: 500",
	}})

	view := m.View()
	assert.Contains(t, view, "✗")
	assert.Contains(t, view, "HTTP error: 500")
}

func TestModel_DoneQuits(t *testing.T) {
	var m tea.Model = tui.NewModel("sync", 0, nil)

	next, cmd := m.Update(tui.DoneMsg{Result: &core.Result{}, Err: nil})
	require.NotNil(t, cmd)
	assert.Contains(t, next.View(), "finished")

	failed, _ := m.Update(tui.DoneMsg{Result: &core.Result{}, Err: errors.New("boom")})
	assert.Contains(t, failed.View(), "boom")
}

func TestModel_CancelKeyInvokesCallback(t *testing.T) {
	cancelled := false
	var m tea.Model = tui.NewModel("sync", 0, func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Nil(t, cmd)
	assert.True(t, cancelled)
}

func TestModel_QuitAfterDone(t *testing.T) {
	var m tea.Model = tui.NewModel("sync", 0, nil)
	m = update(m, tui.DoneMsg{Result: &core.Result{}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}

func TestModel_BulkBytesNotDoubleCounted(t *testing.T) {
	// 8 bytes of planned downloads, delivered as one 8-byte archive
	// that yields two members. The archive transfer itself must not
	// move the overall bar.
	var m tea.Model = tui.NewModel("sync", 8, nil)

	m = update(m, tui.EventMsg{Event: core.ProgressEvent{
		Unit: "main.zip", Kind: core.UnitArchive, State: core.StateInProgress, Attempt: 1,
		Downloaded: 8, TotalBytes: 8,
	}})
	m = update(m, tui.EventMsg{Event: core.ProgressEvent{
		Unit: "a.jar", Kind: core.UnitDownload, State: core.StateSucceeded, Attempt: 1,
		Downloaded: 5,
	}})

	// 5 of 8 bytes extracted so far: the bar sits at 62%, not 100%.
	assert.Contains(t, m.View(), "62%")

	m = update(m, tui.EventMsg{Event: core.ProgressEvent{
		Unit: "b.jar", Kind: core.UnitDownload, State: core.StateSucceeded, Attempt: 1,
		Downloaded: 3,
	}})
	assert.Contains(t, m.View(), "100%")
}

func TestModel_SortsUnitsByName(t *testing.T) {
	var m tea.Model = tui.NewModel("sync", 0, nil)

	for _, name := range []string{"z.jar", "a.jar", "m.jar"} {
		m = update(m, tui.EventMsg{Event: core.ProgressEvent{
			Unit: name, Kind: core.UnitDownload, State: core.StateQueued, Attempt: 1,
		}})
	}

	view := m.View()
	a := strings.Index(view, "a.jar")
	mid := strings.Index(view, "m.jar")
	z := strings.Index(view, "z.jar")
	assert.True(t, a < mid && mid < z, "rows should be sorted: %q", view)
}
