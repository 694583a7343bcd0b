package tui

import "github.com/charmbracelet/lipgloss"

// palette is one color theme.
type palette struct {
	Primary   lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Fg        lipgloss.Color
	Subtle    lipgloss.Color
	Highlight lipgloss.Color
}

var themes = map[string]palette{
	"dark": {
		Primary:   "#6C63FF",
		Accent:    "#FF6B6B",
		Muted:     "#666666",
		Success:   "#2ECC71",
		Warning:   "#F39C12",
		Error:     "#E74C3C",
		Fg:        "#C0CAF5",
		Subtle:    "#414868",
		Highlight: "#7AA2F7",
	},
	"light": {
		Primary:   "#4F46E5",
		Accent:    "#DC2626",
		Muted:     "#6B7280",
		Success:   "#16A34A",
		Warning:   "#D97706",
		Error:     "#B91C1C",
		Fg:        "#1F2937",
		Subtle:    "#D1D5DB",
		Highlight: "#2563EB",
	},
}

var (
	colorPrimary   lipgloss.Color
	colorMuted     lipgloss.Color
	colorSuccess   lipgloss.Color
	colorWarning   lipgloss.Color
	colorSubtle    lipgloss.Color
	colorHighlight lipgloss.Color
)

// Styles
var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	timerStyle        lipgloss.Style
	timerRunningStyle lipgloss.Style
	titleStyle        lipgloss.Style
	accentStyle       lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
)

func init() {
	applyTheme("light")
}

// applyTheme rebuilds every style from the named palette. Unknown names
// fall back to light.
func applyTheme(name string) {
	p, ok := themes[name]
	if !ok {
		p = themes["light"]
	}
	colorPrimary = p.Primary
	colorMuted = p.Muted
	colorSuccess = p.Success
	colorWarning = p.Warning
	colorSubtle = p.Subtle
	colorHighlight = p.Highlight

	// Tabs
	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.Primary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Subtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)

	// Timer
	timerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		Align(lipgloss.Center)

	timerRunningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Success).
		Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Fg)
	accentStyle = lipgloss.NewStyle().Foreground(p.Accent)
	successStyle = lipgloss.NewStyle().Foreground(p.Success)
	warningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	errorStyle = lipgloss.NewStyle().Foreground(p.Error)
	mutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	highlightStyle = lipgloss.NewStyle().Foreground(p.Highlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(p.Fg)
}

// dot renders a project color marker.
func dot(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}
