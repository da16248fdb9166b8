package layout

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const fieldUUIDLength = 38

var nordicLetters = strings.NewReplacer(
	"æ", "ae", "Æ", "ae",
	"ø", "oe", "Ø", "oe",
	"å", "aa", "Å", "aa",
)

// NormalizeDisplayName derives the machine-safe field name for a display
// label: "Record Name" becomes "record_name" and "Første Ændring" becomes
// "foerste_aendring".
//
// Nordic letters are transliterated before lower-casing. Whitespace, hyphens
// and underscores become a single underscore, and anything outside
// [a-z0-9_] is dropped. Dropped characters never split an underscore run, so
// the result is stable under repeated normalization.
func NormalizeDisplayName(displayName string) string {
	s := nordicLetters.Replace(norm.NFC.String(displayName))
	s = cases.Lower(language.Und).String(s)

	var b strings.Builder
	b.Grow(len(s))
	underscore := false
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			if !underscore {
				b.WriteByte('_')
				underscore = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			underscore = false
		}
	}
	return b.String()
}

// IsFieldUUID reports whether key has the shape of a field identifier: a
// 38-character, brace-delimited UUID such as
// "{af4b2e00-5f6a-11d2-8f20-0000c0e166dc}".
func IsFieldUUID(key string) bool {
	if len(key) != fieldUUIDLength || key[0] != '{' || key[fieldUUIDLength-1] != '}' {
		return false
	}
	_, err := uuid.Parse(key)
	return err == nil
}
