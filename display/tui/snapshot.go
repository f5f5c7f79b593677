package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// snapshotTimeLayout names exported snapshot files.
const snapshotTimeLayout = "20060102-150405"

// ansiEscape matches SGR color/style sequences.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// saveSnapshotCmd exports the currently rendered dashboard to a
// timestamped text file. Styling escapes are stripped so the export
// stays readable in editors and pastes cleanly into tickets.
func (m Model) saveSnapshotCmd() tea.Cmd {
	if m.snap == nil {
		return func() tea.Msg {
			return snapshotSavedMsg{err: fmt.Errorf("no samples to export yet")}
		}
	}

	view := stripANSI(m.View())
	dir := m.deps.SnapshotDir

	return func() tea.Msg {
		name := fmt.Sprintf("vitals-snapshot-%s.txt", time.Now().Format(snapshotTimeLayout))
		path := filepath.Join(dir, name)

		if err := os.WriteFile(path, []byte(view), 0o644); err != nil {
			return snapshotSavedMsg{err: err}
		}
		return snapshotSavedMsg{path: path}
	}
}

// stripANSI removes terminal styling sequences from rendered output.
func stripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}
