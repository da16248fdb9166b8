package ui

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"plain", "plain"},
		{json.Number("42"), "42"},
		{time.Date(2011, 10, 16, 16, 17, 56, 0, time.UTC), "2011-10-16 16:17:56"},
		{true, "yes"},
		{[]any{"a", nil, json.Number("2")}, "a, 2"},
		{map[string]any{"id": json.Number("3"), "displaystring": "Colour"}, "Colour"},
		{map[string]any{"b": "2", "a": "1"}, "a: 1; b: 2"},
	}
	for _, tc := range cases {
		if got := formatValue(tc.in); got != tc.want {
			t.Fatalf("formatValue(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSortedFieldKeys(t *testing.T) {
	uuid := "{af4b2e00-5f6a-11d2-8f20-0000c0e166dc}"
	item := map[string]any{uuid: 1, "title": 1, "id": 1, "filename": 1}
	got := sortedFieldKeys(item)
	want := []string{"id", "filename", "title", uuid}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sortedFieldKeys = %v, want %v", got, want)
	}
}

func TestFieldLabel(t *testing.T) {
	if got := fieldLabel("record_name"); got != "Record Name" {
		t.Fatalf("fieldLabel(record_name) = %q", got)
	}
	if got := fieldLabel("id"); got != "ID" {
		t.Fatalf("fieldLabel(id) = %q", got)
	}
	uuid := "{af4b2e00-5f6a-11d2-8f20-0000c0e166dc}"
	if got := fieldLabel(uuid); got != uuid {
		t.Fatalf("fieldLabel(uuid) = %q, want it unchanged", got)
	}
}

func TestItemTitle(t *testing.T) {
	if got := itemTitle(map[string]any{"filename": "a.tif", "record_name": "Harbour"}); got != "Harbour" {
		t.Fatalf("itemTitle = %q, want Harbour", got)
	}
	if got := itemTitle(map[string]any{"filename": "a.tif"}); got != "a.tif" {
		t.Fatalf("itemTitle = %q, want a.tif", got)
	}
	if got := itemTitle(map[string]any{"id": json.Number("7")}); got != "Record 7" {
		t.Fatalf("itemTitle = %q, want Record 7", got)
	}
}

func TestStrings(t *testing.T) {
	if got := truncate("  abcdefghij ", 6); got != "abc..." {
		t.Fatalf("truncate = %q, want abc...", got)
	}
	if got := titleCase("modified__date_"); got != "Modified Date" {
		t.Fatalf("titleCase = %q, want Modified Date", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
}

func TestHeaderHelpers(t *testing.T) {
	if got := classifyConnectionError(errors.New("dial tcp: connection refused")); got != "REFUSED" {
		t.Fatalf("classifyConnectionError = %q", got)
	}
	if got := classifyConnectionError(errors.New("context deadline exceeded")); got != "TIMEOUT" {
		t.Fatalf("classifyConnectionError = %q", got)
	}
	if got := componentSummary(map[string]string{"cip": "9.0", "cumulus": "11.0", "archive": "2"}); got != "archive 2, cumulus 11.0" {
		t.Fatalf("componentSummary = %q", got)
	}
	if got := serverHost("https://dam.example.org/"); got != "dam.example.org" {
		t.Fatalf("serverHost = %q", got)
	}
}
