// Package logview is the read-only bubbletea program behind `cmd/revel
// --log`: it lists action_log rows (origin, prompt, a diff of the DSL that
// ran against the DSL of the turn before it, timestamp), and its detail
// pane also shows the row's error text and its syntax-highlighted DSL.
// It is additive UI only — every byte it renders comes from
// store.ListActions, and nothing in the headless core depends on it.
//
// Structurally this follows the teacher's internal/tui Model (a single
// struct holding pre-built styles and a cursor, Init/Update/View on value
// and pointer receivers per bubbletea convention), generalized down to the
// much smaller surface a list-and-detail viewer needs.
package logview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/revel/internal/diffview"
	"github.com/xonecas/revel/internal/store"
)

// row is one action_log entry plus the diff of its DSL against the entry
// immediately before it in the log (older, since store.ListActions returns
// newest first).
type row struct {
	entry store.ActionLogEntry
	diff  string
}

// Model is the logview bubbletea program state.
type Model struct {
	rows   []row
	cursor int

	width, height int
	styles        styles
}

// New builds a Model from the entries returned by store.ListActions(0),
// newest first. The caller is responsible for loading them; logview never
// touches the store directly so it stays trivially testable.
func New(entries []store.ActionLogEntry) Model {
	rows := make([]row, len(entries))
	for i, e := range entries {
		before := ""
		if i+1 < len(entries) {
			before = entries[i+1].DSL
		}
		rows[i] = row{entry: e, diff: diffview.Unified(fmt.Sprintf("turn-%d", e.ID), before, e.DSL)}
	}
	return Model{rows: rows, styles: defaultStyles()}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			if len(m.rows) > 0 {
				m.cursor = len(m.rows) - 1
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return m.styles.muted.Render("no action log entries") + "\n"
	}

	listWidth := m.width / 3
	if listWidth < 24 {
		listWidth = 24
	}

	var list strings.Builder
	for i, r := range m.rows {
		list.WriteString(m.renderListLine(i, r, listWidth))
		list.WriteString("\n")
	}

	detail := m.renderDetail(m.rows[m.cursor])

	return list.String() + m.styles.border.Render(strings.Repeat("─", listWidth)) + "\n" + detail
}

func (m Model) renderListLine(i int, r row, width int) string {
	ts := r.entry.CreatedAt.Format("15:04:05")
	prompt := r.entry.Prompt
	if len(prompt) > width {
		prompt = prompt[:width-1] + "…"
	}
	line := fmt.Sprintf("%-4s %s  %s", r.entry.Origin, ts, prompt)
	if i == m.cursor {
		return m.styles.selected.Render("> " + line)
	}
	return m.styles.text.Render("  " + line)
}

func (m Model) renderDetail(r row) string {
	var b strings.Builder

	b.WriteString(m.styles.text.Render(fmt.Sprintf("#%d  %s  %s", r.entry.ID, r.entry.Origin, r.entry.CreatedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n\n")
	b.WriteString(m.styles.text.Render(r.entry.Prompt))
	b.WriteString("\n")

	if r.entry.Error != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.errText.Render("error: " + r.entry.Error))
		b.WriteString("\n")
	}

	if r.entry.DSL != "" {
		b.WriteString("\n")
		b.WriteString(highlightDSL(strings.TrimRight(r.entry.DSL, "\n")))
		b.WriteString("\n")
	}

	if r.diff == "" {
		return b.String()
	}

	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(r.diff, "\n"), "\n") {
		b.WriteString(m.renderDiffLine(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
		return m.styles.diffAdd.Render(line)
	case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
		return m.styles.diffDel.Render(line)
	default:
		return m.styles.diffOther.Render(line)
	}
}
