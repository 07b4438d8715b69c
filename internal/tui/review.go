// Package tui provides the interactive review screen for patchline.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/patchline/patchline/internal/patch"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// model drives the review screen: a selectable list of edit reports above a
// scrollable viewport showing the overall diff or the selected report's
// detail.
type model struct {
	summary patch.Summary
	reports []patch.EditReport
	diff    string

	cursor int // 0 = overall diff, 1..len(reports) = report detail
	vp     viewport.Model
	ready  bool
}

func newModel(specText string, outcome patch.Outcome, diff string) model {
	return model{
		summary: patch.ProgressSummary(specText, &outcome),
		reports: outcome.Reports,
		diff:    diff,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := len(m.reports) + 3
		vpHeight := msg.Height - headerHeight - 1
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = vpHeight
		}
		m.vp.SetContent(m.detail())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.vp.SetContent(m.detail())
				m.vp.GotoTop()
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.reports) {
				m.cursor++
				m.vp.SetContent(m.detail())
				m.vp.GotoTop()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("patchline review  %s %s", m.summary.Icon, m.summary.Text)))
	b.WriteString("\n")

	line := "  full diff"
	if m.cursor == 0 {
		line = selectedStyle.Render("> full diff")
	}
	b.WriteString(line + "\n")

	for i, r := range m.reports {
		status := okStyle.Render("applied")
		if !r.Applied {
			status = failStyle.Render("failed")
		}
		entry := fmt.Sprintf("  block %d: %s", i+1, status)
		if m.cursor == i+1 {
			entry = selectedStyle.Render(fmt.Sprintf("> block %d: ", i+1)) + status
		}
		b.WriteString(entry + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select block · pgup/pgdn scroll · q quit"))
	return b.String()
}

// detail returns the viewport content for the current selection.
func (m model) detail() string {
	if m.cursor == 0 {
		if m.diff == "" {
			return "(no changes)"
		}
		return m.diff
	}

	r := m.reports[m.cursor-1]
	if r.Applied {
		return fmt.Sprintf("applied at lines %d-%d (similarity %.0f%%, required %.0f%%)",
			r.MatchedRange.Start, r.MatchedRange.End, r.Similarity*100, r.RequiredThreshold*100)
	}

	var b strings.Builder
	b.WriteString(failStyle.Render(r.Error))
	b.WriteString("\n")
	if r.BestCandidateText != "" {
		b.WriteString(fmt.Sprintf("\nbest candidate (%.0f%%):\n%s\n", r.Similarity*100, r.BestCandidateText))
	}
	if r.Context != "" {
		b.WriteString("\nsurrounding content:\n" + r.Context + "\n")
	}
	return b.String()
}

// Review runs the interactive review screen for an apply outcome.
func Review(specText string, outcome patch.Outcome, diff string) error {
	p := tea.NewProgram(newModel(specText, outcome, diff), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
