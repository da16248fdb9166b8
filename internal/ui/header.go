package ui

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Server states shown in the header badge. Theme StatusColors are keyed by
// these values.
const (
	stateConnecting   = "connecting"
	stateOnline       = "online"
	stateIncompatible = "incompatible"
	stateRetrying     = "retrying"
	stateOffline      = "offline"
)

// serverState classifies the latest keepalive snapshot.
func (m Model) serverState() string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		return stateOffline
	case snap.LastError != nil:
		return stateRetrying
	case !snap.HasStatus:
		return stateConnecting
	case !snap.Status.Compatible:
		return stateIncompatible
	default:
		return stateOnline
	}
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	st := m.serverState()
	parts := []string{
		bg.Render("cip", styles.Logo),
		styles.StatusStyle(st).Render(strings.ToUpper(st)),
	}

	if host := serverHost(m.target.Server); host != "" {
		parts = append(parts, bg.Render(host, styles.Text))
	}
	if m.target.Catalog != "" {
		where := m.target.Catalog
		if m.target.View != "" {
			where += "/" + m.target.View
		}
		parts = append(parts, bg.Render("Catalog:", styles.MutedText)+bg.Space()+bg.Render(where, styles.AccentText))
	}

	if m.snapshot.HasStatus {
		parts = append(parts, bg.Render("CIP", styles.MutedText)+bg.Space()+bg.Render(m.snapshot.Status.CIPVersion, styles.Text))
		if !compact {
			if others := componentSummary(m.snapshot.Status.Components); others != "" {
				parts = append(parts, bg.Render(others, styles.FaintText))
			}
		}
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if err := m.snapshot.LastError; err != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render(classifyConnectionError(err), styles.DangerText)+bg.Space()+
				bg.Render(truncate(err.Error(), maxErr), styles.DangerText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderSearchBar shows the quick-search box, or the active query.
func (m Model) renderSearchBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var line string
	switch {
	case m.editing:
		line = m.input.View()
	case m.query == "":
		line = bg.Render("/ "+m.input.Placeholder, styles.FaintText)
	default:
		line = bg.Render("/", styles.AccentText) + bg.Space() + bg.Render(m.query, styles.Text)
	}

	switch {
	case m.loading:
		line += bg.Spaces(2) + bg.Render("searching...", styles.WarningText)
	case m.searchErr != nil:
		line += bg.Spaces(2) + bg.Render(truncate(m.searchErr.Error(), max(m.width/2, 20)), styles.DangerText)
	}
	return bg.FillLine(line, m.width)
}

// renderCommandBar renders the key hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"/", "Search"},
		{"j/k", "Navigate"},
	}
	if m.start > 0 || m.hasNextPage() {
		commands = append(commands, cmd{"n/p", "Page"})
	}
	commands = append(commands,
		cmd{"Tab", "Focus"},
		cmd{"?", "More"},
	)

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// formatTimestamp formats the last keepalive time with a relative hint.
func (m Model) formatTimestamp() string {
	if m.snapshot.LastUpdated.IsZero() {
		return ""
	}
	at := m.snapshot.LastUpdated
	since := time.Since(at)
	s := at.Format("15:04:05")
	switch {
	case since < time.Minute:
		s += " (now)"
	case since < time.Hour:
		s += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	default:
		s += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return s
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "REFUSED"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "CIP Error"):
		return "SERVER ERROR"
	default:
		return "ERROR"
	}
}

// componentSummary lists non-CIP component versions, e.g. "cumulus 11.0".
func componentSummary(components map[string]string) string {
	names := make([]string, 0, len(components))
	for name := range components {
		if name != "cip" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+components[name])
	}
	return strings.Join(parts, ", ")
}

// serverHost strips the scheme from a server address for display.
func serverHost(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return ""
	}
	if u, err := url.Parse(server); err == nil && u.Host != "" {
		return u.Host + strings.TrimSuffix(u.Path, "/")
	}
	return server
}
