package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// titleKeys are the field names tried, in order, for a record's list title.
var titleKeys = []string{"record_name", "title", "name", "filename"}

// contentHeight is the height left for the result and field panes.
func (m Model) contentHeight() int {
	return max(m.height-3, 3) // header + search bar + command bar
}

// resultRows is the number of result rows visible in the list pane.
func (m Model) resultRows() int {
	return max(m.contentHeight()-2, 1)
}

// paneWidths splits the screen between the result list and the field pane.
func (m Model) paneWidths() (list, detail int) {
	if m.width >= LayoutExtraWideWidth {
		list = m.width * 30 / 100
	} else {
		list = m.width * 40 / 100
	}
	return list, m.width - list
}

// selectedItem returns the highlighted record, or nil.
func (m Model) selectedItem() map[string]any {
	if m.selectedRow < 0 || m.selectedRow >= len(m.items) {
		return nil
	}
	return m.items[m.selectedRow]
}

// renderResults renders the split result list and field pane.
func (m Model) renderResults() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if len(m.items) == 0 {
		msg := "Press / to search the catalog"
		switch {
		case m.loading:
			msg = "Searching..."
		case m.query != "" && m.searchErr == nil:
			msg = fmt.Sprintf("No records match %q", m.query)
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}

	listWidth, detailWidth := m.paneWidths()

	listFocused := m.focusedPane == 0
	listBg := m.theme.SurfaceAlt
	if listFocused {
		listBg = m.theme.FocusBg
	}
	list := m.renderTitledBox(m.resultsTitle(), m.renderResultList(listWidth-2, listBg), listWidth, height, listFocused)

	detailFocused := m.focusedPane == 1
	detail := m.renderTitledBox(m.detailTitle(), m.detailViewport.View(), detailWidth, height, detailFocused)

	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// renderResultList renders the visible window of result rows.
func (m Model) renderResultList(width int, bgColor string) string {
	rows := m.resultRows()
	offset := max(m.selectedRow-rows+1, 0)
	end := min(offset+rows, len(m.items))

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		selected := i == m.selectedRow
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatResultRow(m.items[i], m.start+i+1, width, rowBg, selected)
		lines = append(lines, NewBgStyle(rowBg).FillLine(content, width))
	}
	return strings.Join(lines, "\n")
}

// formatResultRow formats one record as "N  Title · #id".
func (m Model) formatResultRow(item map[string]any, position, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	pos := fmt.Sprintf("%d", position)
	id := ""
	if v, ok := item["id"]; ok {
		id = "#" + formatValue(v)
	}
	titleWidth := max(width-len(pos)-len(id)-5, 8)

	var posStyle, titleStyle, idStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		posStyle, titleStyle, idStyle = selText, selText.Bold(true), selText
	} else {
		styles := m.theme.Styles()
		posStyle, titleStyle, idStyle = styles.FaintText, styles.Text, styles.MutedText
	}

	row := bg.Render(padRight(pos, 3), posStyle) + bg.Space() + bg.Render(truncate(itemTitle(item), titleWidth), titleStyle)
	if id != "" {
		row += bg.Render(" · ", idStyle) + bg.Render(id, idStyle)
	}
	return row
}

// itemTitle picks a human title for a record.
func itemTitle(item map[string]any) string {
	for _, k := range titleKeys {
		if s := strings.TrimSpace(formatValue(item[k])); s != "" {
			return s
		}
	}
	if v, ok := item["id"]; ok {
		return "Record " + formatValue(v)
	}
	return "Record"
}

// resultsTitle shows the window of the result set on screen.
func (m Model) resultsTitle() string {
	if len(m.items) == 0 {
		return "Results"
	}
	first := m.start + 1
	last := m.start + len(m.items)
	return fmt.Sprintf("Results %d-%d of %d", first, last, m.total)
}

// renderTitledBox draws content inside a border with the title set into
// the top edge: ┌── Title ──┐.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	edge := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	inner := max(width-2, 0)
	title = truncate(title, max(inner-4, 1))
	left := max((inner-lipgloss.Width(title)-2)/2, 0)
	right := max(inner-lipgloss.Width(title)-2-left, 0)

	var b strings.Builder
	b.WriteString(bg.Render("┌"+strings.Repeat("─", left), edge))
	b.WriteString(bg.Render(" "+title+" ", titleStyle))
	b.WriteString(bg.Render(strings.Repeat("─", right)+"┐", edge))

	lines := strings.Split(content, "\n")
	body := lipgloss.NewStyle().Width(inner).MaxWidth(inner).Background(lipgloss.Color(bgColor))
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		b.WriteString("\n")
		b.WriteString(bg.Render("│", edge) + body.Render(line) + bg.Render("│", edge))
	}
	b.WriteString("\n")
	b.WriteString(bg.Render("└"+strings.Repeat("─", inner)+"┘", edge))
	return b.String()
}
