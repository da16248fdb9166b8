package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/NationalMuseumofDenmark/cip-go/cip/layout"
)

const (
	fieldLabelWidth = 22
	timeFormat      = "2006-01-02 15:04:05"
)

// initDetailViewport creates the field pane viewport.
func (m *Model) initDetailViewport() {
	m.detailViewport = viewport.New(1, 1)
	m.detailViewport.Style = lipgloss.NewStyle()
}

// updateDetailViewport resizes the field pane and fills it with the
// selected record.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	_, detailWidth := m.paneWidths()
	m.detailViewport.Width = max(detailWidth-2, 1)
	m.detailViewport.Height = max(m.contentHeight()-2, 1)

	item := m.selectedItem()
	if item == nil {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(m.renderFields(item, m.detailViewport.Width))
}

// detailTitle names the record shown in the field pane.
func (m Model) detailTitle() string {
	item := m.selectedItem()
	if item == nil {
		return "Fields"
	}
	return itemTitle(item)
}

// renderFields renders one "Label  value" block per field. Values wrap
// under their own column.
func (m Model) renderFields(item map[string]any, width int) string {
	bgColor := m.theme.SurfaceAlt
	if m.focusedPane == 1 {
		bgColor = m.theme.FocusBg
	}
	styles := m.theme.Styles().WithBackground(bgColor)

	labelWidth := min(fieldLabelWidth, max(width/3, 8))
	valueWidth := max(width-labelWidth-2, 8)
	labelStyle := styles.MutedText.Width(labelWidth).MarginRight(1).MarginBackground(lipgloss.Color(bgColor))
	valueStyle := styles.Text.Width(valueWidth)
	unresolved := styles.FaintText.Width(valueWidth)

	keys := sortedFieldKeys(item)
	blocks := make([]string, 0, len(keys))
	for _, k := range keys {
		value := formatValue(item[k])
		if value == "" {
			continue
		}
		label := truncate(fieldLabel(k), labelWidth)
		vs := valueStyle
		if layout.IsFieldUUID(k) {
			vs = unresolved
		}
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), vs.Render(value)))
	}
	if len(blocks) == 0 {
		return styles.MutedText.Render("No field values")
	}
	return strings.Join(blocks, "\n")
}

// fieldLabel turns a record key into a column label. Keys that are still
// UUIDs have no layout entry and are shown as they are.
func fieldLabel(key string) string {
	if key == "id" {
		return "ID"
	}
	if layout.IsFieldUUID(key) {
		return key
	}
	return titleCase(key)
}

// sortedFieldKeys orders keys as id, named fields alphabetically, then
// unresolved UUIDs.
func sortedFieldKeys(item map[string]any) []string {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	rank := func(k string) int {
		switch {
		case k == "id":
			return 0
		case layout.IsFieldUUID(k):
			return 2
		default:
			return 1
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// formatValue renders a decoded field value for display.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(timeFormat)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s := formatValue(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		// Enum and link values carry a display string next to their id.
		for _, k := range []string{"displaystring", "name", "value"} {
			if s := formatValue(x[k]); s != "" {
				return s
			}
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+formatValue(x[k]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(x)
	}
}
