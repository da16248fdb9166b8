package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors of the catalog browser.
type Theme struct {
	Name string

	Background string // behind the search bar
	Surface    string // header and command bar
	SurfaceAlt string // unfocused panes
	FocusBg    string // focused pane

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Warning string
	Danger  string

	// Server state badge colors, keyed by serverState values.
	StatusColors map[string]string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style

	statusColors map[string]string
	badgeText    string
	muted        string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	bar := func(c string) lipgloss.Style {
		return fg(c).Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	}
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),

		Header: bar(t.Text),
		Footer: bar(t.Muted),
		Logo:   fg(t.Warning).Bold(true),

		statusColors: t.StatusColors,
		badgeText:    t.Background,
		muted:        t.Muted,
	}
}

// StatusStyle returns the badge style for a server state.
func (s Styles) StatusStyle(state string) lipgloss.Style {
	color := s.statusColors[state]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.badgeText)).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

// WithBackground returns a copy of Styles with all text styles having the specified background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText, &out.WarningText, &out.DangerText,
		&out.Header, &out.Footer, &out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	// https://github.com/EdenEast/nightfox.nvim
	"Nightfox": {
		Name:       "Nightfox",
		Background: "#131a24", Surface: "#192330", SurfaceAlt: "#212e3f", FocusBg: "#29394f",
		SelectionBg: "#2b3b51", SelectionText: "#cdcecf",
		Border: "#39506d", BorderFocus: "#719cd6",
		Text: "#cdcecf", Muted: "#738091", Faint: "#71839b",
		Accent: "#719cd6", Warning: "#dbc074", Danger: "#c94f6d",
		StatusColors: map[string]string{
			stateConnecting:   "#738091",
			stateOnline:       "#81b29a",
			stateIncompatible: "#dbc074",
			stateRetrying:     "#f4a261",
			stateOffline:      "#c94f6d",
		},
	},
	// https://github.com/rebelot/kanagawa.nvim
	"Kanagawa": {
		Name:       "Kanagawa",
		Background: "#16161D", Surface: "#1F1F28", SurfaceAlt: "#2A2A37", FocusBg: "#363646",
		SelectionBg: "#2D4F67", SelectionText: "#DCD7BA",
		Border: "#54546D", BorderFocus: "#7E9CD8",
		Text: "#DCD7BA", Muted: "#C8C093", Faint: "#727169",
		Accent: "#7E9CD8", Warning: "#E6C384", Danger: "#E46876",
		StatusColors: map[string]string{
			stateConnecting:   "#727169",
			stateOnline:       "#98BB6C",
			stateIncompatible: "#E6C384",
			stateRetrying:     "#FFA066",
			stateOffline:      "#E46876",
		},
	},
	// Tailwind slate and sky
	"Slate": {
		Name:       "Slate",
		Background: "#020617", Surface: "#0f172a", SurfaceAlt: "#1e293b", FocusBg: "#283548",
		SelectionBg: "#0284c7", SelectionText: "#f8fafc",
		Border: "#334155", BorderFocus: "#38bdf8",
		Text: "#f1f5f9", Muted: "#94a3b8", Faint: "#64748b",
		Accent: "#38bdf8", Warning: "#f59e0b", Danger: "#ef4444",
		StatusColors: map[string]string{
			stateConnecting:   "#64748b",
			stateOnline:       "#22c55e",
			stateIncompatible: "#f59e0b",
			stateRetrying:     "#ea580c",
			stateOffline:      "#dc2626",
		},
	},
}

// GetTheme returns a theme by name, falling back to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["Nightfox"]
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}
