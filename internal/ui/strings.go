package ui

import "strings"

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// titleCase turns a normalized field name like "record_name" into
// "Record Name".
func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Split(value, "_")
	out := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		r := []rune(part)
		out = append(out, strings.ToUpper(string(r[:1]))+string(r[1:]))
	}
	return strings.Join(out, " ")
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if width <= 0 || n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
