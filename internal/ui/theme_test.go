package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestGetTheme_FallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestThemesColorEveryServerState(t *testing.T) {
	states := []string{stateConnecting, stateOnline, stateIncompatible, stateRetrying, stateOffline}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, st := range states {
			if th.StatusColors[st] == "" {
				t.Fatalf("theme %s has no color for %q", name, st)
			}
		}
	}
}
