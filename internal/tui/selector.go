// Package tui hosts the interactive pieces of diskmark: the volume
// selector shown when no target path is given.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"diskmark/internal/tui/styles"
	"diskmark/internal/volumes"
)

// ErrSelectionCancelled means the user quit the selector without
// choosing a volume.
var ErrSelectionCancelled = errors.New("disk selection cancelled")

type selectorModel struct {
	table  table.Model
	vols   []volumes.Volume
	choice *volumes.Volume
}

func newSelectorModel(vols []volumes.Volume) selectorModel {
	columns := []table.Column{
		{Title: "Device", Width: 20},
		{Title: "Mount", Width: 24},
		{Title: "FS", Width: 8},
		{Title: "Size", Width: 10},
		{Title: "Used", Width: 6},
	}

	rows := make([]table.Row, len(vols))
	for i, v := range vols {
		rows[i] = table.Row{
			v.Device,
			v.Mountpoint,
			v.Fstype,
			formatSize(v.Total),
			fmt.Sprintf("%.0f%%", v.Percent),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(vols)+1, 12)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.ColorPrimary)
	s.Selected = s.Selected.
		Foreground(styles.ColorBg).
		Background(styles.ColorPrimary).
		Bold(true)
	t.SetStyles(s)

	return selectorModel{table: t, vols: vols}
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.vols) {
				m.choice = &m.vols[idx]
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	header := styles.Title.Render("Select a disk to test")
	footer := styles.Subtle.Render("↑/↓ move · enter select · q quit")
	return "\n" + header + "\n\n" + m.table.View() + "\n\n" + footer + "\n"
}

// SelectVolume runs the interactive selector and returns the chosen
// volume.
func SelectVolume(vols []volumes.Volume) (*volumes.Volume, error) {
	p := tea.NewProgram(newSelectorModel(vols))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := final.(selectorModel)
	if m.choice == nil {
		return nil, ErrSelectionCancelled
	}
	return m.choice, nil
}

func formatSize(bytes uint64) string {
	const gib = 1 << 30
	if bytes == 0 {
		return "?"
	}
	return fmt.Sprintf("%.1f GiB", float64(bytes)/gib)
}
