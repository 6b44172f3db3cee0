package logview

import "charm.land/lipgloss/v2"

// Palette mirrors the teacher's grayscale-plus-accent scheme (internal/tui's
// styles.go): a single highlight color, a muted/dim ramp for secondary text,
// and a dedicated error color. logview is read-only and much simpler than
// the canvas TUI, so it only needs a handful of these.
var (
	colorHighlight = lipgloss.Color("#00E5CC")
	colorFg        = lipgloss.Color("#c8c8c8")
	colorMuted     = lipgloss.Color("#6e6e6e")
	colorDim       = lipgloss.Color("#3f3f3f")
	colorBorder    = lipgloss.Color("#1c1c1c")
	colorError     = lipgloss.Color("#932e2e")
	colorAdd       = lipgloss.Color("#3f9f5f")
	colorDel       = lipgloss.Color("#932e2e")
)

// styles holds the pre-built lipgloss styles used by the viewer, constructed
// once in New and stored on the model.
type styles struct {
	text      lipgloss.Style
	muted     lipgloss.Style
	dim       lipgloss.Style
	errText   lipgloss.Style
	selected  lipgloss.Style
	border    lipgloss.Style
	diffAdd   lipgloss.Style
	diffDel   lipgloss.Style
	diffOther lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		text:      lipgloss.NewStyle().Foreground(colorFg),
		muted:     lipgloss.NewStyle().Foreground(colorMuted),
		dim:       lipgloss.NewStyle().Foreground(colorDim),
		errText:   lipgloss.NewStyle().Foreground(colorError),
		selected:  lipgloss.NewStyle().Foreground(colorHighlight).Bold(true),
		border:    lipgloss.NewStyle().Foreground(colorBorder),
		diffAdd:   lipgloss.NewStyle().Foreground(colorAdd),
		diffDel:   lipgloss.NewStyle().Foreground(colorDel),
		diffOther: lipgloss.NewStyle().Foreground(colorMuted),
	}
}
