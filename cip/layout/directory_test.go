package layout

import (
	"errors"
	"reflect"
	"testing"
)

const (
	filenameUUID = "{af4b2e00-5f6a-11d2-8f20-0000c0e166dc}"
	titleUUID    = "{7bd1a2c0-1d2e-11d3-8f21-0000c0e166dc}"
)

func TestNormalizeDisplayName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Filename", "filename"},
		{"Record Name", "record_name"},
		{"Date-Time  Original", "date_time_original"},
		{"Første Ændring", "foerste_aendring"},
		{"ÅRSTAL", "aarstal"},
		{"Blå bog", "blaa_bog"},
		{"Size (KB)", "size_kb"},
		{"a _!_ b", "a_b"},
		{"tab\tseparated", "tab_separated"},
		{"already_normal", "already_normal"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDisplayName(tc.in); got != tc.want {
			t.Fatalf("NormalizeDisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDisplayName_DecomposedNordic(t *testing.T) {
	// "a" followed by COMBINING RING ABOVE composes to "å".
	if got := NormalizeDisplayName("Bla\u030a"); got != "blaa" {
		t.Fatalf("NormalizeDisplayName(decomposed) = %q, want blaa", got)
	}
}

func TestIsFieldUUID(t *testing.T) {
	cases := map[string]bool{
		filenameUUID:                             true,
		"{AF4B2E00-5F6A-11D2-8F20-0000C0E166DC}": true,
		"af4b2e00-5f6a-11d2-8f20-0000c0e166dc":   false,
		"{af4b2e00-5f6a-11d2-8f20-0000c0e166dc":  false,
		"{zf4b2e00-5f6a-11d2-8f20-0000c0e166dc}": false,
		"plainkey":                               false,
		"":                                       false,
	}
	for key, want := range cases {
		if got := IsFieldUUID(key); got != want {
			t.Fatalf("IsFieldUUID(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestDirectory_RegisterAndResolve(t *testing.T) {
	var d Directory
	d.Register(filenameUUID, "Filename")
	d.Register(titleUUID, "Record Name")

	if got, err := d.UUIDToName(filenameUUID); err != nil || got != "filename" {
		t.Fatalf("UUIDToName = %q, %v; want filename", got, err)
	}
	if got, err := d.UUIDToDisplayName(titleUUID); err != nil || got != "Record Name" {
		t.Fatalf("UUIDToDisplayName = %q, %v; want Record Name", got, err)
	}
	if got, err := d.NameToUUID("record_name"); err != nil || got != titleUUID {
		t.Fatalf("NameToUUID = %q, %v; want %q", got, err, titleUUID)
	}
	if got, err := d.NameToDisplayName("record_name"); err != nil || got != "Record Name" {
		t.Fatalf("NameToDisplayName = %q, %v; want Record Name", got, err)
	}
	if got, err := d.DisplayNameToUUID("Filename"); err != nil || got != filenameUUID {
		t.Fatalf("DisplayNameToUUID = %q, %v; want %q", got, err, filenameUUID)
	}
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
}

func TestDirectory_NotFound(t *testing.T) {
	d := NewDirectory()
	_, err := d.NameToUUID("no_such_field")
	if !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("NameToUUID error = %v, want ErrFieldNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "name" || nf.Key != "no_such_field" {
		t.Fatalf("NameToUUID error = %#v, want NotFoundError{name no_such_field}", err)
	}

	for name, fn := range map[string]func() error{
		"UUIDToName":        func() error { _, err := d.UUIDToName(filenameUUID); return err },
		"UUIDToDisplayName": func() error { _, err := d.UUIDToDisplayName(filenameUUID); return err },
		"NameToDisplayName": func() error { _, err := d.NameToDisplayName("filename"); return err },
		"DisplayNameToUUID": func() error { _, err := d.DisplayNameToUUID("Filename"); return err },
	} {
		if err := fn(); !errors.Is(err, ErrFieldNotFound) {
			t.Fatalf("%s error = %v, want ErrFieldNotFound", name, err)
		}
	}
}

func TestDirectory_LastWriteWins(t *testing.T) {
	var d Directory
	d.Register(filenameUUID, "Filename")
	d.Register(filenameUUID, "Original Name")

	if got, _ := d.UUIDToDisplayName(filenameUUID); got != "Original Name" {
		t.Fatalf("UUIDToDisplayName = %q, want Original Name", got)
	}
	if _, err := d.NameToUUID("filename"); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("stale name still resolves: %v", err)
	}
	if got, _ := d.NameToUUID("original_name"); got != filenameUUID {
		t.Fatalf("NameToUUID(original_name) = %q, want %q", got, filenameUUID)
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
}

func TestDirectory_SharedNameKeepsLatestUUID(t *testing.T) {
	var d Directory
	d.Register(filenameUUID, "Name")
	d.Register(titleUUID, "name")

	if got, _ := d.NameToUUID("name"); got != titleUUID {
		t.Fatalf("NameToUUID = %q, want %q", got, titleUUID)
	}
	// The first field keeps its own display name.
	if got, _ := d.UUIDToName(filenameUUID); got != "name" {
		t.Fatalf("UUIDToName = %q, want name", got)
	}
}

func TestDirectory_Fields(t *testing.T) {
	var d Directory
	d.Register(titleUUID, "Record Name")
	d.Register(filenameUUID, "Filename")

	want := []Field{
		{UUID: filenameUUID, DisplayName: "Filename", Name: "filename"},
		{UUID: titleUUID, DisplayName: "Record Name", Name: "record_name"},
	}
	if got := d.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields = %#v, want %#v", got, want)
	}
}

func TestDirectory_RegisterLayout(t *testing.T) {
	tree := map[string]any{
		"fields": []any{
			map[string]any{"id": filenameUUID, "name": "Filename", "type": "String"},
			map[string]any{"id": "not-a-uuid", "name": "Broken"},
			map[string]any{"id": titleUUID},
			"junk",
		},
	}
	var d Directory
	if n := d.RegisterLayout(tree); n != 1 {
		t.Fatalf("RegisterLayout = %d, want 1", n)
	}
	if got, _ := d.UUIDToName(filenameUUID); got != "filename" {
		t.Fatalf("UUIDToName = %q, want filename", got)
	}
	if n := d.RegisterLayout([]any{}); n != 0 {
		t.Fatalf("RegisterLayout(non-object) = %d, want 0", n)
	}
}
